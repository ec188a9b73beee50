package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Words: []string{"ld", "v1", "0x20"}, Bytes: []byte{0x61, 0x20}},
			{LineNo: 4, Addr: 0x204, Words: []string{".byte", "1", "2", "3"}, Bytes: []byte{1, 2, 3}},
		},
	}

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x206)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	assert.Equal(2, prog.LineNo(0x202))
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"cls"}, Bytes: []byte{0x00, 0xe0}},
		},
	}

	dbg := prog.Debug(0x202)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x1fe)
	assert.Nil(dbg.Opcode)

	assert.Equal(0, prog.LineNo(0x300))
}

func TestProgram_Debug_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	assert.Nil(prog.Debug(0x200).Opcode)
	assert.Nil(prog.Binary())
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x100, Bytes: []byte{0xee}},
			{LineNo: 2, Addr: 0x200, Bytes: []byte{0x12, 0x06}},
			{LineNo: 3, Addr: 0x206, Bytes: []byte{0xaa}},
		},
	}

	assert.Equal([]byte{0x12, 0x06, 0, 0, 0, 0, 0xaa}, prog.Binary())
}

func TestProgram_Bytes(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Bytes: []byte{0x12, 0x34}},
			{LineNo: 2, Addr: 0x202, Bytes: []byte{0x56}},
		},
	}

	addrs := []uint16{}
	values := []byte{}
	for addr, value := range prog.Bytes() {
		addrs = append(addrs, addr)
		values = append(values, value)
	}
	assert.Equal([]uint16{0x200, 0x201, 0x202}, addrs)
	assert.Equal([]byte{0x12, 0x34, 0x56}, values)

	// Early exit.
	count := 0
	for range prog.Bytes() {
		count++
		break
	}
	assert.Equal(1, count)
}
