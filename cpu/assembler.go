// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates: the cpu defines, plus LINENO.
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

// Assembler is a single pass assembler for the CHIP-8 instruction set.
//
// Syntax, one statement per line, ';' starts a comment:
//
//	label: mnemonic operand, operand ...
//	.equ NAME VALUE
//	.byte VALUE ...
//
// Operands are registers (v0-vf), the special operands i, [i], dt, st, k,
// f and b, numbers in Go literal syntax, labels, equates, or compile-time
// $(expression) evaluations.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil || v64 < 0 {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine splits a line into words, applying expressions, equates and labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return
}

// currentAddr gets the address of the next generated byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(strings.Split(text, ";")[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if addr > ADDR_MASK {
			err = ErrOperandRange{Word: label, Value: addr, Limit: ADDR_MASK}
			return
		}
		code := binary.BigEndian.Uint16(op.Bytes) | uint16(addr)
		binary.BigEndian.PutUint16(op.Bytes, code)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// register decodes a v0-vf register name.
func register(word string) (reg uint8, ok bool) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		return
	}
	value, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}
	reg = uint8(value)
	ok = true
	return
}

// number decodes a value no larger than limit.
func (asm *Assembler) number(word string, limit int) (value int, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}
	if value > limit {
		err = ErrOperandRange{Word: word, Value: value, Limit: limit}
		return
	}
	return
}

// address decodes an address operand, or a label to link later.
func (asm *Assembler) address(word string) (addr uint16, label string, err error) {
	value, err := asm.number(word, ADDR_MASK)
	if _, is_num := err.(ErrParseNumber); is_num {
		if _, is_reg := register(word); is_reg {
			err = ErrRegisterInvalid
			return
		}
		label = word
		err = nil
		return
	}
	addr = uint16(value)
	return
}

// operands checks the operand count.
func operands(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// makeNNN encodes an address instruction.
func makeNNN(top uint16, nnn uint16) Code {
	return Code(top<<12 | (nnn & 0xfff))
}

// makeXKK encodes a register and byte instruction.
func makeXKK(top uint16, x uint8, kk uint8) Code {
	return Code(top<<12 | uint16(x&0xf)<<8 | uint16(kk))
}

// makeXYN encodes a two register and nibble instruction.
func makeXYN(top uint16, x, y, n uint8) Code {
	return Code(top<<12 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(n&0xf))
}

// aluMap maps 8XYn opcode names to their n.
var aluMap = map[string]uint8{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xe,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || (len(codes) == 0 && len(data) == 0) {
			return
		}
		for _, code := range codes {
			data = binary.BigEndian.AppendUint16(data, uint16(code))
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// Special operands are case insensitive.
	special := make([]string, len(args))
	for n, arg := range args {
		special[n] = strings.ToLower(arg)
	}

	// Register operands
	var x, y uint8
	var x_ok, y_ok bool
	if len(args) > 0 {
		x, x_ok = register(args[0])
	}
	if len(args) > 1 {
		y, y_ok = register(args[1])
	}

	switch mnemonic {
	case ".byte":
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		for _, arg := range args {
			var value int
			value, err = asm.number(arg, 0xff)
			if err != nil {
				return
			}
			data = append(data, byte(value))
		}
	case "cls", "ret":
		err = operands(args, 0)
		if err != nil {
			return
		}
		if mnemonic == "cls" {
			codes = append(codes, 0x00e0)
		} else {
			codes = append(codes, 0x00ee)
		}
	case "jp", "call":
		var top uint16 = 0x1
		if mnemonic == "call" {
			top = 0x2
		}
		if mnemonic == "jp" && len(args) == 2 {
			if !x_ok || x != 0 {
				err = ErrRegisterInvalid
				return
			}
			args = args[1:]
			top = 0xb
		}
		err = operands(args, 1)
		if err != nil {
			return
		}
		var addr uint16
		addr, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		codes = append(codes, makeNNN(top, addr))
	case "se", "sne":
		err = operands(args, 2)
		if err != nil {
			return
		}
		if !x_ok {
			err = ErrRegisterInvalid
			return
		}
		if y_ok {
			var top uint16 = 0x5
			if mnemonic == "sne" {
				top = 0x9
			}
			codes = append(codes, makeXYN(top, x, y, 0))
			break
		}
		var kk int
		kk, err = asm.number(args[1], 0xff)
		if err != nil {
			return
		}
		var top uint16 = 0x3
		if mnemonic == "sne" {
			top = 0x4
		}
		codes = append(codes, makeXKK(top, x, uint8(kk)))
	case "add":
		err = operands(args, 2)
		if err != nil {
			return
		}
		switch {
		case special[0] == "i" && y_ok:
			codes = append(codes, makeXKK(0xf, y, 0x1e))
		case x_ok && y_ok:
			codes = append(codes, makeXYN(0x8, x, y, 0x4))
		case x_ok:
			var kk int
			kk, err = asm.number(args[1], 0xff)
			if err != nil {
				return
			}
			codes = append(codes, makeXKK(0x7, x, uint8(kk)))
		default:
			err = ErrRegisterInvalid
			return
		}
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		n := aluMap[mnemonic]
		if (mnemonic == "shr" || mnemonic == "shl") && len(args) == 1 {
			args = append(args, "v0")
			y, y_ok = 0, true
		}
		err = operands(args, 2)
		if err != nil {
			return
		}
		if !x_ok || !y_ok {
			err = ErrRegisterInvalid
			return
		}
		codes = append(codes, makeXYN(0x8, x, y, n))
	case "rnd":
		err = operands(args, 2)
		if err != nil {
			return
		}
		if !x_ok {
			err = ErrRegisterInvalid
			return
		}
		var kk int
		kk, err = asm.number(args[1], 0xff)
		if err != nil {
			return
		}
		codes = append(codes, makeXKK(0xc, x, uint8(kk)))
	case "drw":
		err = operands(args, 3)
		if err != nil {
			return
		}
		if !x_ok || !y_ok {
			err = ErrRegisterInvalid
			return
		}
		var n int
		n, err = asm.number(args[2], 0xf)
		if err != nil {
			return
		}
		codes = append(codes, makeXYN(0xd, x, y, uint8(n)))
	case "skp", "sknp":
		err = operands(args, 1)
		if err != nil {
			return
		}
		if !x_ok {
			err = ErrRegisterInvalid
			return
		}
		var kk uint8 = 0x9e
		if mnemonic == "sknp" {
			kk = 0xa1
		}
		codes = append(codes, makeXKK(0xe, x, kk))
	case "ld":
		err = operands(args, 2)
		if err != nil {
			return
		}
		var code Code
		code, label, err = asm.parseLoad(args, special)
		if err != nil {
			return
		}
		codes = append(codes, code)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}

// parseLoad encodes the many forms of 'ld'.
func (asm *Assembler) parseLoad(args []string, special []string) (code Code, label string, err error) {
	x, x_ok := register(args[0])
	y, y_ok := register(args[1])

	// Special destinations, register source.
	fxMap := map[string]uint8{
		"dt":  0x15,
		"st":  0x18,
		"f":   0x29,
		"b":   0x33,
		"[i]": 0x55,
	}
	if kk, ok := fxMap[special[0]]; ok {
		if !y_ok {
			err = ErrRegisterInvalid
			return
		}
		code = makeXKK(0xf, y, kk)
		return
	}

	if special[0] == "i" {
		var addr uint16
		addr, label, err = asm.address(args[1])
		code = makeNNN(0xa, addr)
		return
	}

	if !x_ok {
		err = ErrRegisterInvalid
		return
	}

	switch {
	case y_ok:
		code = makeXYN(0x8, x, y, 0x0)
	case special[1] == "dt":
		code = makeXKK(0xf, x, 0x07)
	case special[1] == "k":
		code = makeXKK(0xf, x, 0x0a)
	case special[1] == "[i]":
		code = makeXKK(0xf, x, 0x65)
	default:
		var kk int
		kk, err = asm.number(args[1], 0xff)
		if err != nil {
			return
		}
		code = makeXKK(0x6, x, uint8(kk))
	}

	return
}
