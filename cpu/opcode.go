package cpu

import (
	"fmt"
)

// Code is a two byte instruction word, fetched big-endian.
type Code uint16

// X returns the register index in bits 8-11.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the register index in bits 4-7.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// KK returns the low byte.
func (code Code) KK() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the low 12 bits, an absolute address.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Op identifies one member of the closed instruction set.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_CLS      = Op(0)  // cls
	OP_RET      = Op(1)  // ret
	OP_JP       = Op(2)  // jp
	OP_CALL     = Op(3)  // call
	OP_SE_BYTE  = Op(4)  // se.byte
	OP_SNE_BYTE = Op(5)  // sne.byte
	OP_SE_REG   = Op(6)  // se.reg
	OP_LD_BYTE  = Op(7)  // ld.byte
	OP_ADD_BYTE = Op(8)  // add.byte
	OP_LD_REG   = Op(9)  // ld.reg
	OP_OR       = Op(10) // or
	OP_AND      = Op(11) // and
	OP_XOR      = Op(12) // xor
	OP_ADD_REG  = Op(13) // add.reg
	OP_SUB      = Op(14) // sub
	OP_SHR      = Op(15) // shr
	OP_SUBN     = Op(16) // subn
	OP_SHL      = Op(17) // shl
	OP_SNE_REG  = Op(18) // sne.reg
	OP_LD_I     = Op(19) // ld.i
	OP_JP_V0    = Op(20) // jp.v0
	OP_RND      = Op(21) // rnd
	OP_DRW      = Op(22) // drw
	OP_SKP      = Op(23) // skp
	OP_SKNP     = Op(24) // sknp
	OP_LD_VX_DT = Op(25) // ld.vx.dt
	OP_LD_KEY   = Op(26) // ld.key
	OP_LD_DT    = Op(27) // ld.dt
	OP_LD_ST    = Op(28) // ld.st
	OP_ADD_I    = Op(29) // add.i
	OP_LD_FONT  = Op(30) // ld.f
	OP_LD_BCD   = Op(31) // ld.b
	OP_STORE    = Op(32) // ld.store
	OP_LOAD     = Op(33) // ld.load
)

// Flags returns true if the operation defines VF.
func (op Op) Flags() bool {
	switch op {
	case OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL, OP_DRW:
		return true
	}
	return false
}

// Instruction is a decoded opcode.
type Instruction struct {
	Op   Op
	Code Code
}

// Decode selects the operation by the top nibble, then by the secondary
// field where the top nibble is shared.
func Decode(code Code) (ins Instruction, err error) {
	ins.Code = code

	switch code >> 12 {
	case 0x0:
		switch code {
		case 0x00e0:
			ins.Op = OP_CLS
		case 0x00ee:
			ins.Op = OP_RET
		default:
			err = ErrOpcodeUnknown
		}
	case 0x1:
		ins.Op = OP_JP
	case 0x2:
		ins.Op = OP_CALL
	case 0x3:
		ins.Op = OP_SE_BYTE
	case 0x4:
		ins.Op = OP_SNE_BYTE
	case 0x5:
		if code.N() != 0 {
			err = ErrOpcodeUnknown
			break
		}
		ins.Op = OP_SE_REG
	case 0x6:
		ins.Op = OP_LD_BYTE
	case 0x7:
		ins.Op = OP_ADD_BYTE
	case 0x8:
		switch code.N() {
		case 0x0:
			ins.Op = OP_LD_REG
		case 0x1:
			ins.Op = OP_OR
		case 0x2:
			ins.Op = OP_AND
		case 0x3:
			ins.Op = OP_XOR
		case 0x4:
			ins.Op = OP_ADD_REG
		case 0x5:
			ins.Op = OP_SUB
		case 0x6:
			ins.Op = OP_SHR
		case 0x7:
			ins.Op = OP_SUBN
		case 0xe:
			ins.Op = OP_SHL
		default:
			err = ErrOpcodeUnknown
		}
	case 0x9:
		if code.N() != 0 {
			err = ErrOpcodeUnknown
			break
		}
		ins.Op = OP_SNE_REG
	case 0xa:
		ins.Op = OP_LD_I
	case 0xb:
		ins.Op = OP_JP_V0
	case 0xc:
		ins.Op = OP_RND
	case 0xd:
		ins.Op = OP_DRW
	case 0xe:
		switch code.KK() {
		case 0x9e:
			ins.Op = OP_SKP
		case 0xa1:
			ins.Op = OP_SKNP
		default:
			err = ErrOpcodeUnknown
		}
	case 0xf:
		switch code.KK() {
		case 0x07:
			ins.Op = OP_LD_VX_DT
		case 0x0a:
			ins.Op = OP_LD_KEY
		case 0x15:
			ins.Op = OP_LD_DT
		case 0x18:
			ins.Op = OP_LD_ST
		case 0x1e:
			ins.Op = OP_ADD_I
		case 0x29:
			ins.Op = OP_LD_FONT
		case 0x33:
			ins.Op = OP_LD_BCD
		case 0x55:
			ins.Op = OP_STORE
		case 0x65:
			ins.Op = OP_LOAD
		default:
			err = ErrOpcodeUnknown
		}
	}

	return
}

// String returns the operation name and its operands.
func (ins Instruction) String() string {
	code := ins.Code
	switch ins.Op {
	case OP_CLS, OP_RET:
		return ins.Op.String()
	case OP_JP, OP_CALL, OP_LD_I, OP_JP_V0:
		return fmt.Sprintf("%v 0x%03x", ins.Op, code.NNN())
	case OP_SE_BYTE, OP_SNE_BYTE, OP_LD_BYTE, OP_ADD_BYTE, OP_RND:
		return fmt.Sprintf("%v v%x 0x%02x", ins.Op, code.X(), code.KK())
	case OP_DRW:
		return fmt.Sprintf("%v v%x v%x %d", ins.Op, code.X(), code.Y(), code.N())
	case OP_SKP, OP_SKNP, OP_LD_VX_DT, OP_LD_KEY, OP_LD_DT, OP_LD_ST,
		OP_ADD_I, OP_LD_FONT, OP_LD_BCD, OP_STORE, OP_LOAD:
		return fmt.Sprintf("%v v%x", ins.Op, code.X())
	}
	return fmt.Sprintf("%v v%x v%x", ins.Op, code.X(), code.Y())
}
