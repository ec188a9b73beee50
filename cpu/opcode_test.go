package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Fields(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xd3a7)
	assert.Equal(uint8(0x3), code.X())
	assert.Equal(uint8(0xa), code.Y())
	assert.Equal(uint8(0x7), code.N())
	assert.Equal(uint8(0xa7), code.KK())
	assert.Equal(uint16(0x3a7), code.NNN())
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		op   Op
		text string
	}){
		{0x00e0, OP_CLS, "cls"},
		{0x00ee, OP_RET, "ret"},
		{0x1234, OP_JP, "jp 0x234"},
		{0x2345, OP_CALL, "call 0x345"},
		{0x3a42, OP_SE_BYTE, "se.byte va 0x42"},
		{0x4b42, OP_SNE_BYTE, "sne.byte vb 0x42"},
		{0x5120, OP_SE_REG, "se.reg v1 v2"},
		{0x6cff, OP_LD_BYTE, "ld.byte vc 0xff"},
		{0x7d01, OP_ADD_BYTE, "add.byte vd 0x01"},
		{0x8120, OP_LD_REG, "ld.reg v1 v2"},
		{0x8121, OP_OR, "or v1 v2"},
		{0x8122, OP_AND, "and v1 v2"},
		{0x8123, OP_XOR, "xor v1 v2"},
		{0x8124, OP_ADD_REG, "add.reg v1 v2"},
		{0x8125, OP_SUB, "sub v1 v2"},
		{0x8126, OP_SHR, "shr v1 v2"},
		{0x8127, OP_SUBN, "subn v1 v2"},
		{0x812e, OP_SHL, "shl v1 v2"},
		{0x9120, OP_SNE_REG, "sne.reg v1 v2"},
		{0xa123, OP_LD_I, "ld.i 0x123"},
		{0xb300, OP_JP_V0, "jp.v0 0x300"},
		{0xc10f, OP_RND, "rnd v1 0x0f"},
		{0xd125, OP_DRW, "drw v1 v2 5"},
		{0xe19e, OP_SKP, "skp v1"},
		{0xe1a1, OP_SKNP, "sknp v1"},
		{0xf107, OP_LD_VX_DT, "ld.vx.dt v1"},
		{0xf10a, OP_LD_KEY, "ld.key v1"},
		{0xf115, OP_LD_DT, "ld.dt v1"},
		{0xf118, OP_LD_ST, "ld.st v1"},
		{0xf11e, OP_ADD_I, "add.i v1"},
		{0xf129, OP_LD_FONT, "ld.f v1"},
		{0xf133, OP_LD_BCD, "ld.b v1"},
		{0xf155, OP_STORE, "ld.store v1"},
		{0xf165, OP_LOAD, "ld.load v1"},
	}

	for _, entry := range table {
		ins, err := Decode(entry.code)
		assert.NoError(err, "%04x", uint16(entry.code))
		assert.Equal(entry.op, ins.Op, "%04x", uint16(entry.code))
		assert.Equal(entry.code, ins.Code)
		assert.Equal(entry.text, ins.String())
	}
}

func TestDecode_Unknown(t *testing.T) {
	assert := assert.New(t)

	unknown := []Code{
		0x0000, 0x0123, 0x00e1, 0x00ff,
		0x5121, 0x512f,
		0x8128, 0x8129, 0x812d, 0x812f,
		0x9121, 0x912f,
		0xe100, 0xe19f,
		0xf100, 0xf1ff, 0xf156,
	}

	for _, code := range unknown {
		_, err := Decode(code)
		assert.ErrorIs(err, ErrOpcodeUnknown, "%04x", uint16(code))
	}
}

func TestOp_Flags(t *testing.T) {
	assert := assert.New(t)

	flags := map[Op]bool{
		OP_ADD_REG: true,
		OP_SUB:     true,
		OP_SHR:     true,
		OP_SUBN:    true,
		OP_SHL:     true,
		OP_DRW:     true,
	}

	for op := OP_CLS; op <= OP_LOAD; op++ {
		assert.Equal(flags[op], op.Flags(), op.String())
	}
}
