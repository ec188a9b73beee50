// Package keypad implements the 16 key hexadecimal input device.
//
// The keypad tracks which logical keys 0x0-0xF are held, and holds at most
// one pending key-wait request. A request names the register that receives
// the next pressed key; pressing a key delivers it to the request's callback
// and clears the request.
package keypad

import (
	"fmt"
	"sync"
)

// KEY_COUNT is the number of logical keys.
const KEY_COUNT = 16

// Key is a logical key code, 0x0 to 0xF.
type Key uint8

// Valid returns true for key codes 0x0 to 0xF.
func (key Key) Valid() bool {
	return key < KEY_COUNT
}

func (key Key) String() string {
	if !key.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(key))
	}
	return fmt.Sprintf("%X", uint8(key))
}

// Request is a pending key-wait request.
type Request struct {
	Register uint8 // Target register index.
}

// Keypad is safe for use from a host input goroutine concurrently with the
// CPU tick loop.
type Keypad struct {
	mutex   sync.Mutex
	pressed [KEY_COUNT]bool
	pending *Request
	deliver func(req Request, key Key)
}

// IsPressed returns true if the key is held. Invalid keys are never pressed.
func (kp *Keypad) IsPressed(key Key) bool {
	if !key.Valid() {
		return false
	}

	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	return kp.pressed[key]
}

// SetPressed updates the state of a key. Invalid keys are ignored.
// When a key goes down with a request pending, the request is cleared and
// the key is delivered to its callback, outside the keypad lock.
func (kp *Keypad) SetPressed(key Key, down bool) (fulfilled bool) {
	if !key.Valid() {
		return
	}

	var req Request
	var deliver func(req Request, key Key)

	kp.mutex.Lock()
	kp.pressed[key] = down
	if down && kp.pending != nil {
		req, deliver = *kp.pending, kp.deliver
		kp.pending, kp.deliver = nil, nil
		fulfilled = true
	}
	kp.mutex.Unlock()

	if deliver != nil {
		deliver(req, key)
	}

	return
}

// RegisterWait installs a key-wait request, replacing any pending one.
// deliver, if not nil, receives the request and the next pressed key.
func (kp *Keypad) RegisterWait(register uint8, deliver func(req Request, key Key)) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.pending = &Request{Register: register}
	kp.deliver = deliver
}

// Pending returns the outstanding key-wait request, if any.
func (kp *Keypad) Pending() (req Request, ok bool) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	if kp.pending != nil {
		req = *kp.pending
		ok = true
	}
	return
}

// Clear releases all keys and drops any pending request.
func (kp *Keypad) Clear() {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	clear(kp.pressed[:])
	kp.pending = nil
	kp.deliver = nil
}

// Held returns the keys currently held, in ascending order.
func (kp *Keypad) Held() (keys []Key) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	for n, down := range kp.pressed {
		if down {
			keys = append(keys, Key(n))
		}
	}
	return
}
