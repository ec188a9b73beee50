package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrLoadOverflow   = errors.New(f("program exceeds memory"))
	ErrStackUnderflow = errors.New(f("stack empty"))
	ErrStackOverflow  = errors.New(f("stack full"))
	ErrKeyInvalid     = errors.New(f("key invalid"))

	// Instruction decode errors
	ErrOpcodeUnknown = errors.New(f("opcode unknown"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("operand missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode locates a faulting instruction.
type ErrOpcode struct {
	Addr uint16
	Code Code
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x at 0x%03x", uint16(eo.Code), eo.Addr)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrProgramSize reports the size of a program that does not fit in memory.
type ErrProgramSize int

func (ep ErrProgramSize) Error() string {
	return f("program size %#x exceeds %#x", int(ep), MEMORY_SIZE-PROGRAM_START)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrOperandRange reports an operand too wide for its instruction field.
type ErrOperandRange struct {
	Word  string
	Value int
	Limit int
}

func (err ErrOperandRange) Error() string {
	return f("'%v' (%#x) exceeds %#x", err.Word, err.Value, err.Limit)
}
