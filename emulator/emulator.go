// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/keypad"
	"github.com/ezrec/chip8/tone"
)

const (
	INSTRUCTIONS_PER_TICK = 10               // Instructions executed per frame.
	CADENCE               = time.Second / 60 // Frame period.
)

var _emulator_defines = map[string]string{
	"DISPLAY_WIDTH":  fmt.Sprintf("%v", display.WIDTH),
	"DISPLAY_HEIGHT": fmt.Sprintf("%v", display.HEIGHT),
	"KEY_COUNT":      fmt.Sprintf("%v", keypad.KEY_COUNT),
}

// Emulator state. CPU + display + keypad + tone.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Display display.Display // Display surface.
	Keypad  keypad.Keypad   // Input device.
	Tone    *tone.Tone      // Tone generator.

	InstructionsPerTick int           // Instructions per frame.
	Cadence             time.Duration // Frame period for Run; zero runs unpaced.

	Halted error // First fault since the last reset, if any.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program:             &cpu.Program{},
		Tone:                tone.NewTone(),
		InstructionsPerTick: INSTRUCTIONS_PER_TICK,
		Cadence:             CADENCE,
	}

	emu.Cpu = cpu.NewCpu(&emu.Display, &emu.Keypad, emu.Tone)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses a program listing, with the emulator defines available as
// equates, then resets the emulator to run it.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog

	err = emu.Reset()
	return
}

// Load a raw program image, then reset the emulator to run it.
func (emu *Emulator) Load(rom []byte) (err error) {
	prog := &cpu.Program{
		Opcodes: []cpu.Opcode{
			{Addr: cpu.PROGRAM_START, Bytes: rom},
		},
	}

	if len(rom) > cpu.MEMORY_SIZE-cpu.PROGRAM_START {
		err = errors.Join(cpu.ErrLoadOverflow, cpu.ErrProgramSize(len(rom)))
		return
	}

	emu.Program = prog

	err = emu.Reset()
	return
}

// Reset the machine, and reload the current program.
func (emu *Emulator) Reset() (err error) {
	emu.Halted = nil
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Cpu.LoadProgram(emu.Program.Binary())
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.PC)
}

// Bitmap returns a snapshot of the display.
func (emu *Emulator) Bitmap() display.Bitmap {
	return emu.Display.Snapshot()
}

// Tick performs a single frame of the emulator. Once a fault occurs, the
// tone is silenced and the emulator stays halted until reset.
func (emu *Emulator) Tick() (err error) {
	if emu.Halted != nil {
		err = emu.Halted
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Tick(emu.InstructionsPerTick)
	if err != nil {
		var eo cpu.ErrOpcode
		errors.As(err, &eo)
		err = &ErrRuntime{Addr: eo.Addr, LineNo: emu.Program.LineNo(eo.Addr), Err: err}
		emu.Halted = err
		// The timers stop with the CPU, so the tone must too.
		emu.Cpu.Speaker.Stop()
		if emu.Verbose {
			log.Printf("emulator: halted: %v", err)
			log.Print(emu.Cpu.String())
		}
	}

	return
}

// Run ticks the emulator at its cadence for the given number of frames, or
// forever if frames is not positive. Stops at the first fault or when the
// context is done.
func (emu *Emulator) Run(ctx context.Context, frames int) (err error) {
	var cadence <-chan time.Time
	if emu.Cadence > 0 {
		ticker := time.NewTicker(emu.Cadence)
		defer ticker.Stop()
		cadence = ticker.C
	}

	for frame := 0; frames <= 0 || frame < frames; frame++ {
		if cadence != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-cadence:
			}
		} else {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
