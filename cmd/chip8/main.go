// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/keypad"
)

func main() {
	var compile string
	var rom string
	var frames int
	var ipt int
	var keys string
	var pace bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble and run")
	flag.StringVar(&rom, "r", "", "Program image to run")
	flag.IntVar(&frames, "n", 60, "Frames to run (0 runs until interrupted)")
	flag.IntVar(&ipt, "i", emulator.INSTRUCTIONS_PER_TICK, "Instructions per frame")
	flag.StringVar(&keys, "k", "", "Host keys held down for the whole run")
	flag.BoolVar(&pace, "p", false, "Pace frames at 60Hz")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(rom) == 0) {
		log.Fatalf("%v: exactly one of -c or -r is required", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.InstructionsPerTick = ipt
	if !pace {
		emu.Cadence = 0
	}

	// Assemble a new program listing.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a program image.
	if len(rom) != 0 {
		data, err := os.ReadFile(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}

		err = emu.Load(data)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	}

	for _, key := range keypad.TranslateString(keys) {
		err := emu.KeyDown(key)
		if err != nil {
			log.Fatalf("-k %v: %v", keys, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := emu.Run(ctx, frames)

	fmt.Print(emu.Bitmap().String())

	if err != nil && ctx.Err() == nil {
		log.Print(emu.Cpu.String())
		log.Fatal(err)
	}
}
