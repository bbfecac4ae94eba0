package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLPassesThroughCleanInput(t *testing.T) {
	assert.Equal(t, "https://example.com/a?b=c", URL("https://example.com/a?b=c"))
}

func TestURLDropsInvalidUTF8(t *testing.T) {
	raw := "https://example.com/\xff\xfebroken"
	got := URL(raw)
	assert.Equal(t, "https://example.com/broken", got)
}

func TestURLNormalizesToNFC(t *testing.T) {
	// "e" + combining acute accent (NFD) should collapse to the precomposed "é" (NFC).
	decomposed := "café.com"
	assert.Equal(t, "café.com", URL(decomposed))
}
