package pdfextract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_Empty(t *testing.T) {
	text, err := ExtractText(nil, 100)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractText_NotPDF(t *testing.T) {
	_, err := ExtractText([]byte("plain text"), 0)
	assert.True(t, errors.Is(err, ErrNotPDF))
}

func TestExtractText_BrokenPDF(t *testing.T) {
	_, err := ExtractText([]byte("%PDF-1.4\ngarbage"), 0)
	assert.Error(t, err)
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b\nc", normalizeSpace("  a   b \n\n  c  \n"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "hi", truncateRunes("hi", 4))
}
