package cpu

const (
	FONT_BASE  = 0x000 // Address of the glyph for digit 0.
	FONT_SIZE  = 5     // Bytes per glyph.
	FONT_COUNT = 16    // Glyphs, one per hexadecimal digit.
)

// fontset holds the 4x5 hexadecimal glyphs, one byte per row, high nibble.
var fontset = [FONT_COUNT * FONT_SIZE]uint8{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

// Glyph returns the font sprite for a hexadecimal digit.
func Glyph(digit uint8) []uint8 {
	digit &= 0xf
	return fontset[int(digit)*FONT_SIZE : int(digit+1)*FONT_SIZE]
}
