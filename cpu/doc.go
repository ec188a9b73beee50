// Package cpu implements the central processing unit of the CHIP-8 system.
//
// The CPU has sixteen 8-bit registers (V0-VF, with VF doubling as the carry,
// borrow and collision flag), a 16-bit index register (I), a program counter
// starting at 0x200, 4KB of memory with the hexadecimal font at 0x000, a
// bounded call stack, and two 60Hz countdown timers. The display, keypad and
// tone generator are injected as narrow interfaces.
//
// The package also provides a small assembler for the CHIP-8 instruction set,
// supporting labels, equates, raw data bytes and compile-time expression
// evaluation, used to build test programs and listings for debugging.
package cpu
