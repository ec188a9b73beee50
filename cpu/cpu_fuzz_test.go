package cpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for rv := range 0x10 {
		f.Add(uint16(rv<<12), uint8(rv*17), uint8(0xff-rv), uint16(0xffe), rv&1 == 1)
		f.Add(uint16(rv<<12|0xfff), uint8(0), uint8(rv), uint16(0), rv&2 == 2)
	}

	f.Fuzz(func(t *testing.T, opcode uint16, vx uint8, vy uint8, index uint16, stack bool) {
		assert := assert.New(t)

		cpu := NewCpu(nil, nil, nil)
		cpu.Rand = rand.New(rand.NewSource(int64(opcode)))

		code := Code(opcode)
		for n := range cpu.V {
			cpu.V[n] = uint8(n * 0x11)
		}
		cpu.V[code.X()] = vx
		if code.Y() != code.X() {
			cpu.V[code.Y()] = vy
		}
		cpu.V[REG_VF] = 0xa5
		if code.X() == REG_VF {
			cpu.V[REG_VF] = vx
		}
		cpu.I = index & ADDR_MASK
		cpu.PC = 0x300
		cpu.Memory[0x300] = uint8(opcode >> 8)
		cpu.Memory[0x301] = uint8(opcode)
		if stack {
			cpu.Stack.Push(0x222)
		}

		ins, decode_err := Decode(code)
		err := cpu.Step()

		if decode_err != nil {
			assert.ErrorIs(err, ErrOpcodeUnknown)
		}

		if err != nil {
			var eo ErrOpcode
			assert.True(errors.As(err, &eo))
			assert.Equal(uint16(0x300), eo.Addr)
			assert.Equal(code, eo.Code)
			assert.Equal(uint16(0x300), cpu.PC)
			assert.Equal(0, cpu.Cycles)
			return
		}

		assert.Equal(1, cpu.Cycles)

		if ins.Op.Flags() {
			assert.LessOrEqual(cpu.V[REG_VF], uint8(1))
		}

		switch ins.Op {
		case OP_JP:
			assert.Equal(code.NNN(), cpu.PC)
		case OP_CALL:
			assert.Equal(code.NNN(), cpu.PC)
			top, _ := cpu.Stack.Peek()
			assert.Equal(uint16(0x302), top)
		case OP_RET:
			assert.Equal(uint16(0x222), cpu.PC)
		case OP_JP_V0:
			assert.Equal((code.NNN()+uint16(cpu.V[0]))&ADDR_MASK, cpu.PC)
		case OP_LD_KEY:
			assert.True(cpu.Paused())
			assert.Equal(uint16(0x302), cpu.PC)
		default:
			assert.Contains([]uint16{0x302, 0x304}, cpu.PC)
		}

		assert.LessOrEqual(cpu.PC, uint16(ADDR_MASK))
	})
}
