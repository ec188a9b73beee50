// Package display implements the monochrome framebuffer of the CHIP-8 system.
//
// The display is a fixed WIDTH x HEIGHT grid of pixels that the CPU mutates
// only through Clear and SetPixel. Presentation is pull based: after each
// tick the CPU calls Present, and the attached Presenter (if any) receives a
// snapshot of the bitmap whenever it changed.
package display

import (
	"strings"
	"sync"
)

const (
	WIDTH  = 64 // Pixel columns.
	HEIGHT = 32 // Pixel rows.
)

// Bitmap is a snapshot of the display, indexed [y][x].
type Bitmap [HEIGHT][WIDTH]bool

// Presenter receives the bitmap when the display is presented.
type Presenter interface {
	Present(bitmap Bitmap)
}

// PresenterFunc adapts a function to a Presenter.
type PresenterFunc func(bitmap Bitmap)

func (pf PresenterFunc) Present(bitmap Bitmap) {
	pf(bitmap)
}

// Display is the framebuffer owned by the CPU.
type Display struct {
	Presenter Presenter // Optional presentation hook.

	Frames  int  // Number of Present calls.
	Changed bool // Set by Clear and SetPixel, cleared by Present.

	mutex  sync.Mutex
	bitmap Bitmap
}

// Clear all pixels.
func (dp *Display) Clear() {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()

	dp.bitmap = Bitmap{}
	dp.Changed = true
}

// wrap reduces a coordinate modulo size, including negative values.
func wrap(value, size int) int {
	value %= size
	if value < 0 {
		value += size
	}
	return value
}

// SetPixel toggles the pixel at (x, y), wrapping both axes.
// Returns true when the pixel went from set to clear (a collision).
func (dp *Display) SetPixel(x, y int) (collision bool) {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()

	x = wrap(x, WIDTH)
	y = wrap(y, HEIGHT)

	pixel := !dp.bitmap[y][x]
	dp.bitmap[y][x] = pixel
	dp.Changed = true

	collision = !pixel
	return
}

// Pixel returns the state of the pixel at (x, y), wrapping both axes.
func (dp *Display) Pixel(x, y int) bool {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()

	return dp.bitmap[wrap(y, HEIGHT)][wrap(x, WIDTH)]
}

// Snapshot returns a copy of the current bitmap.
func (dp *Display) Snapshot() (bitmap Bitmap) {
	dp.mutex.Lock()
	defer dp.mutex.Unlock()

	bitmap = dp.bitmap
	return
}

// Present hands the current bitmap to the Presenter, if the display
// changed since the last Present. The first frame is always presented.
func (dp *Display) Present() {
	dp.mutex.Lock()
	bitmap := dp.bitmap
	presenter := dp.Presenter
	if !dp.Changed && dp.Frames > 0 {
		presenter = nil
	}
	dp.Frames++
	dp.Changed = false
	dp.mutex.Unlock()

	if presenter != nil {
		presenter.Present(bitmap)
	}
}

// Lit returns the number of set pixels.
func (bm Bitmap) Lit() (count int) {
	for y := range bm {
		for x := range bm[y] {
			if bm[y][x] {
				count++
			}
		}
	}
	return
}

// String renders the bitmap as text, one line per row.
// Set pixels are '#', clear pixels are '.'.
func (bm Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(HEIGHT * (WIDTH + 1))
	for y := range bm {
		for x := range bm[y] {
			if bm[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
