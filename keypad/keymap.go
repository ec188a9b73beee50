package keypad

import (
	"unicode"
)

// Host keyboard layout. The left four columns of a QWERTY keyboard map onto
// the hexadecimal keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  =>  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var hostMap = map[rune]Key{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Translate maps a host key to its logical key. Letters are case-insensitive.
func Translate(r rune) (key Key, ok bool) {
	key, ok = hostMap[unicode.ToLower(r)]
	return
}

// TranslateString maps every host key in text, skipping unmapped runes.
func TranslateString(text string) (keys []Key) {
	for _, r := range text {
		key, ok := Translate(r)
		if ok {
			keys = append(keys, key)
		}
	}
	return
}
