package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLocales("en-US")

	assert.Equal("stack empty", From("stack empty"))
	assert.Equal("bad opcode 0x00ee at 0x200", From("bad opcode 0x%04x at 0x%03x", 0x00ee, 0x200))
}

func TestSetLocales_Empty(t *testing.T) {
	assert := assert.New(t)

	SetLocales()
	assert.NotNil(printer)
	assert.Equal("key 16", From("key %d", 16))
}
