package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode covering addr, and the byte offset within it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// LineNo returns the source line of the opcode covering addr, or 0.
func (prog *Program) LineNo(addr uint16) int {
	dbg := prog.Debug(addr)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the memory image to load at PROGRAM_START.
func (prog *Program) Binary() (bin []byte) {
	for addr, value := range prog.Bytes() {
		offset := int(addr) - PROGRAM_START
		if offset < 0 {
			continue
		}
		for len(bin) <= offset {
			bin = append(bin, 0)
		}
		bin[offset] = value
	}

	return
}

// Bytes iterates over every assembled byte and its address.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(uint16(op.Addr+n), value) {
					return
				}
			}
		}
	}
}
