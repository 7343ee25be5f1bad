package generate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubo/internal/generate"
)

func TestParseBatchPlain(t *testing.T) {
	batch, err := generate.ParseBatch(`{"Felice": ["sorridi", "che bella giornata"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"sorridi", "che bella giornata"}, batch["Felice"])
}

func TestParseBatchStripsFences(t *testing.T) {
	raw := "```json\n{\"Pensiero\": [\"ti penso\"]}\n```"
	batch, err := generate.ParseBatch(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"ti penso"}, batch["Pensiero"])
}

func TestParseBatchTrimsWrapperText(t *testing.T) {
	raw := "Ecco il risultato richiesto:\n{\"Triste\": [\"ti abbraccio\"]}\nSpero vada bene!"
	batch, err := generate.ParseBatch(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"ti abbraccio"}, batch["Triste"])
}

func TestParseBatchNormalizesCurlyQuotes(t *testing.T) {
	raw := "{“Felice”: [“sei il mio sole”]}"
	batch, err := generate.ParseBatch(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"sei il mio sole"}, batch["Felice"])
}

func TestParseBatchRejectsGarbage(t *testing.T) {
	_, err := generate.ParseBatch("non sono json")
	assert.Error(t, err)

	_, err = generate.ParseBatch("")
	assert.Error(t, err)

	_, err = generate.ParseBatch("{}")
	assert.Error(t, err)
}
