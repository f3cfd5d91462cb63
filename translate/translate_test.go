package translate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	Use(FALLBACK)
	assert.Equal("r2 = 10", From("r%d = %d", 2, 10))
	assert.Equal("plain", From("plain"))
}

func TestFprintf(t *testing.T) {
	assert := assert.New(t)

	Use(FALLBACK)
	buf := &bytes.Buffer{}
	n, err := Fprintf(buf, "PC: %#x (%d)\n", 3, 3)
	assert.NoError(err)
	assert.Equal("PC: 0x3 (3)\n", buf.String())
	assert.Equal(buf.Len(), n)
}

func TestUse(t *testing.T) {
	assert := assert.New(t)
	defer Use(FALLBACK)

	Use()
	assert.Equal("ticks 7", From("ticks %d", 7))

	Use("xx-invalid", FALLBACK)
	assert.Equal("ticks 7", From("ticks %d", 7))
}
