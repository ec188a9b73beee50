// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
	"sync"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/keypad"
	"github.com/ezrec/chip8/tone"
)

const (
	MEMORY_SIZE    = 0x1000 // 4KB of memory.
	ADDR_MASK      = 0x0fff // Memory addresses wrap at 4KB.
	PROGRAM_START  = 0x200  // Load address and initial PC.
	REGISTER_COUNT = 16     // V0-VF.
	REG_VF         = 0xf    // Flag register.
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"FONT_BASE":     fmt.Sprintf("%#x", FONT_BASE),
	"FONT_SIZE":     fmt.Sprintf("%v", FONT_SIZE),
}

// Screen is the display capability: draw, clear and present.
type Screen interface {
	Clear()
	SetPixel(x, y int) (collision bool)
	Present()
}

// Keyboard is the input capability: key state and the key-wait request.
// A key press with a wait pending delivers the key to the registered callback.
type Keyboard interface {
	IsPressed(key keypad.Key) bool
	SetPressed(key keypad.Key, down bool) (fulfilled bool)
	RegisterWait(register uint8, deliver func(req keypad.Request, key keypad.Key))
	Clear()
}

// Speaker is the tone capability.
type Speaker interface {
	Play()
	Stop()
}

var _ Screen = (*display.Display)(nil)
var _ Keyboard = (*keypad.Keypad)(nil)
var _ Speaker = (*tone.Tone)(nil)

// Cpu is the simulation context for the CHIP-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Screen   Screen   // Display surface.
	Keyboard Keyboard // Input device.
	Speaker  Speaker  // Tone generator.

	Rand *rand.Rand // Random source for RND; nil uses the global source.

	V          [REGISTER_COUNT]uint8 // Register bank.
	I          uint16                // Index register.
	PC         uint16                // Program counter.
	Stack      Stack                 // Call stack.
	Memory     [MEMORY_SIZE]uint8    // Main memory.
	DelayTimer uint8                 // Delay timer countdown.
	SoundTimer uint8                 // Sound timer countdown.

	Ticks  int // Ticks since reset.
	Cycles int // Instructions executed since reset.

	mutex  sync.Mutex
	paused bool
	waits  uint64 // Key-wait generation; stale deliveries are dropped.
}

// NewCpu creates a CPU attached to its collaborators. A nil collaborator is
// replaced by the default implementation.
func NewCpu(screen Screen, keyboard Keyboard, speaker Speaker) (cpu *Cpu) {
	if screen == nil {
		screen = &display.Display{}
	}
	if keyboard == nil {
		keyboard = &keypad.Keypad{}
	}
	if speaker == nil {
		speaker = tone.NewTone()
	}

	cpu = &Cpu{
		Screen:   screen,
		Keyboard: keyboard,
		Speaker:  speaker,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %03X\n", cpu.PC)
	text += fmt.Sprintf("    i: %03X\n", cpu.I)
	for n, val := range cpu.V {
		text += fmt.Sprintf("   v%X: %02X\n", n, val)
	}
	strval := "---"
	val, ok := cpu.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%03X", val)
	}
	text += fmt.Sprintf("stack: %v (%d)\n", strval, len(cpu.Stack.Data))
	text += fmt.Sprintf("   dt: %02X\n", cpu.DelayTimer)
	text += fmt.Sprintf("   st: %02X\n", cpu.SoundTimer)
	if cpu.paused {
		text += "paused\n"
	}

	return
}

// Reset the CPU state.
// - Clears the registers, memory, stack, timers and counters.
// - Clears the display, releases all keys and stops the tone.
// - Installs the font at FONT_BASE.
// - Sets PC to PROGRAM_START and resumes execution.
func (cpu *Cpu) Reset() {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.V[:])
	clear(cpu.Memory[:])
	cpu.Stack.Reset()
	cpu.I = 0
	cpu.PC = PROGRAM_START
	cpu.DelayTimer = 0
	cpu.SoundTimer = 0
	cpu.Ticks = 0
	cpu.Cycles = 0
	cpu.waits++

	cpu.Screen.Clear()
	cpu.Keyboard.Clear()
	cpu.Speaker.Stop()

	copy(cpu.Memory[FONT_BASE:], fontset[:])

	cpu.paused = false
}

// LoadProgram copies program into memory at PROGRAM_START.
// A program that does not fit fails with ErrLoadOverflow and leaves memory
// untouched.
func (cpu *Cpu) LoadProgram(program []byte) (err error) {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	if len(program) > MEMORY_SIZE-PROGRAM_START {
		err = errors.Join(ErrLoadOverflow, ErrProgramSize(len(program)))
		return
	}

	copy(cpu.Memory[PROGRAM_START:], program)

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes", len(program))
	}

	return
}

// Paused returns true while execution waits for a key press.
func (cpu *Cpu) Paused() bool {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	return cpu.paused
}

// Tick executes up to count instructions, stopping early if execution
// pauses for a key or faults. If not paused, both timers then count down
// once. The speaker always follows the sound timer, and the screen is
// always presented.
func (cpu *Cpu) Tick(count int) (err error) {
	sound, err := cpu.tick(count)

	if sound {
		cpu.Speaker.Play()
	} else {
		cpu.Speaker.Stop()
	}

	cpu.Screen.Present()

	return
}

func (cpu *Cpu) tick(count int) (sound bool, err error) {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	defer func() {
		sound = cpu.SoundTimer > 0
	}()

	cpu.Ticks++

	for n := 0; n < count && !cpu.paused; n++ {
		err = cpu.step()
		if err != nil {
			return
		}
	}

	if !cpu.paused {
		if cpu.DelayTimer > 0 {
			cpu.DelayTimer--
		}
		if cpu.SoundTimer > 0 {
			cpu.SoundTimer--
		}
	}

	return
}

// Step executes a single instruction, unless paused.
func (cpu *Cpu) Step() (err error) {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	if cpu.paused {
		return
	}

	err = cpu.step()
	return
}

// KeyDown presses a key. A pending key-wait request receives the key in its
// register, and execution resumes on the next tick.
func (cpu *Cpu) KeyDown(key keypad.Key) (err error) {
	if !key.Valid() {
		err = ErrKeyInvalid
		return
	}

	cpu.Keyboard.SetPressed(key, true)
	return
}

// resume is the key-wait callback registered by FX0A.
func (cpu *Cpu) resume(wait uint64, req keypad.Request, key keypad.Key) {
	cpu.mutex.Lock()
	defer cpu.mutex.Unlock()

	if !cpu.paused || wait != cpu.waits {
		return
	}

	cpu.V[req.Register&0xf] = uint8(key)
	cpu.paused = false

	if cpu.Verbose {
		log.Printf("cpu: key %v -> v%x, resumed", key, req.Register)
	}
}

// KeyUp releases a key.
func (cpu *Cpu) KeyUp(key keypad.Key) (err error) {
	if !key.Valid() {
		err = ErrKeyInvalid
		return
	}

	cpu.Keyboard.SetPressed(key, false)
	return
}

// read returns the byte at addr, wrapping at MEMORY_SIZE.
func (cpu *Cpu) read(addr uint16) uint8 {
	return cpu.Memory[addr&ADDR_MASK]
}

// write stores a byte at addr, wrapping at MEMORY_SIZE.
func (cpu *Cpu) write(addr uint16, value uint8) {
	cpu.Memory[addr&ADDR_MASK] = value
}

// Fetch returns the instruction word at addr.
func (cpu *Cpu) Fetch(addr uint16) Code {
	return Code(uint16(cpu.read(addr))<<8 | uint16(cpu.read(addr+1)))
}

// step fetches, advances PC and executes. On a fault PC is left at the
// faulting instruction.
func (cpu *Cpu) step() (err error) {
	addr := cpu.PC & ADDR_MASK
	code := cpu.Fetch(addr)

	defer func() {
		if err != nil {
			cpu.PC = addr
			err = errors.Join(ErrOpcode{Addr: addr, Code: code}, err)
			if cpu.Verbose {
				log.Printf("cpu: %v", err)
			}
		}
	}()

	ins, err := Decode(code)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03x: %04x %v", addr, uint16(code), ins)
	}

	cpu.PC = (addr + 2) & ADDR_MASK

	err = cpu.Execute(ins)
	if err != nil {
		return
	}

	cpu.PC &= ADDR_MASK

	cpu.Cycles++

	return
}

// flag converts a condition to a VF value.
func flag(cond bool) uint8 {
	if cond {
		return 1
	}
	return 0
}

// random returns a uniformly distributed byte.
func (cpu *Cpu) random() uint8 {
	if cpu.Rand != nil {
		return uint8(cpu.Rand.Intn(0x100))
	}
	return uint8(rand.Intn(0x100))
}

// Execute executes a single decoded instruction. PC must already point past
// the instruction. Jumps may leave PC above ADDR_MASK; step masks it.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	code := ins.Code
	x := code.X()
	y := code.Y()
	kk := code.KK()
	nnn := code.NNN()
	v := &cpu.V

	switch ins.Op {
	case OP_CLS:
		cpu.Screen.Clear()
	case OP_RET:
		pc, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		cpu.PC = pc
	case OP_JP:
		cpu.PC = nnn
	case OP_CALL:
		if !cpu.Stack.Push(cpu.PC) {
			err = ErrStackOverflow
			return
		}
		cpu.PC = nnn
	case OP_SE_BYTE:
		if v[x] == kk {
			cpu.PC += 2
		}
	case OP_SNE_BYTE:
		if v[x] != kk {
			cpu.PC += 2
		}
	case OP_SE_REG:
		if v[x] == v[y] {
			cpu.PC += 2
		}
	case OP_LD_BYTE:
		v[x] = kk
	case OP_ADD_BYTE:
		v[x] += kk
	case OP_LD_REG:
		v[x] = v[y]
	case OP_OR:
		v[x] |= v[y]
	case OP_AND:
		v[x] &= v[y]
	case OP_XOR:
		v[x] ^= v[y]
	case OP_ADD_REG:
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = uint8(sum)
		v[REG_VF] = flag(sum > 0xff)
	case OP_SUB:
		vx, vy := v[x], v[y]
		v[x] = vx - vy
		v[REG_VF] = flag(vx > vy)
	case OP_SHR:
		vx := v[x]
		v[x] = vx >> 1
		v[REG_VF] = vx & 0x1
	case OP_SUBN:
		vx, vy := v[x], v[y]
		v[x] = vy - vx
		v[REG_VF] = flag(vy > vx)
	case OP_SHL:
		vx := v[x]
		v[x] = vx << 1
		v[REG_VF] = vx >> 7
	case OP_SNE_REG:
		if v[x] != v[y] {
			cpu.PC += 2
		}
	case OP_LD_I:
		cpu.I = nnn
	case OP_JP_V0:
		cpu.PC = nnn + uint16(v[0])
	case OP_RND:
		v[x] = cpu.random() & kk
	case OP_DRW:
		v[REG_VF] = flag(cpu.draw(int(v[x]), int(v[y]), code.N()))
	case OP_SKP:
		if cpu.Keyboard.IsPressed(keypad.Key(v[x])) {
			cpu.PC += 2
		}
	case OP_SKNP:
		if !cpu.Keyboard.IsPressed(keypad.Key(v[x])) {
			cpu.PC += 2
		}
	case OP_LD_VX_DT:
		v[x] = cpu.DelayTimer
	case OP_LD_KEY:
		cpu.paused = true
		cpu.waits++
		wait := cpu.waits
		cpu.Keyboard.RegisterWait(x, func(req keypad.Request, key keypad.Key) {
			cpu.resume(wait, req, key)
		})
		if cpu.Verbose {
			log.Printf("cpu: paused for key -> v%x", x)
		}
	case OP_LD_DT:
		cpu.DelayTimer = v[x]
	case OP_LD_ST:
		cpu.SoundTimer = v[x]
	case OP_ADD_I:
		cpu.I += uint16(v[x])
	case OP_LD_FONT:
		cpu.I = FONT_BASE + uint16(v[x])*FONT_SIZE
	case OP_LD_BCD:
		vx := v[x]
		cpu.write(cpu.I, vx/100)
		cpu.write(cpu.I+1, (vx/10)%10)
		cpu.write(cpu.I+2, vx%10)
	case OP_STORE:
		for n := range uint16(x) + 1 {
			cpu.write(cpu.I+n, v[n])
		}
	case OP_LOAD:
		for n := range uint16(x) + 1 {
			v[n] = cpu.read(cpu.I + n)
		}
	default:
		err = ErrOpcodeUnknown
		return
	}

	return
}

// draw XORs an 8 x rows sprite from memory at I onto the screen at (x, y).
// Returns true if any set pixel was cleared.
func (cpu *Cpu) draw(x, y int, rows uint8) (collision bool) {
	for row := range int(rows) {
		sprite := cpu.read(cpu.I + uint16(row))
		for col := range 8 {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			if cpu.Screen.SetPixel(x+col, y+row) {
				collision = true
			}
		}
	}

	return
}
