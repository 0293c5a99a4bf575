// Package memory implements the flat 64 KiB address space seen by the CPU.
package memory

import (
	"errors"
	"fmt"
)

// Size is the number of addressable cells.
const Size = 0x10000

// ErrImageTooLarge indicates a boot image does not fit in the address space.
var ErrImageTooLarge = errors.New("image exceeds 64 KiB address space")

// AddressSpace represents the 64 KiB of byte cells addressed by the CPU.
//
// Every cell is writable, including the range the boot image is copied into.
// Addresses are uint16, so all addressing wraps modulo 65536.
type AddressSpace struct {
	cells [Size]uint8
}

// New creates a new, zeroed address space.
func New() *AddressSpace {
	return &AddressSpace{}
}

// Read reads a byte from the address space.
func (a *AddressSpace) Read(addr uint16) uint8 {
	return a.cells[addr]
}

// Write writes a byte to the address space.
func (a *AddressSpace) Write(addr uint16, value uint8) {
	a.cells[addr] = value
}

// ReadN reads n consecutive bytes starting at addr. Reads that run past
// 0xFFFF continue from 0x0000.
func (a *AddressSpace) ReadN(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = a.cells[addr+uint16(i)] //nolint:gosec // G115: wraparound is the addressing model
	}
	return out
}

// Load copies image into the address space starting at address 0.
func (a *AddressSpace) Load(image []byte) error {
	if len(image) > Size {
		return fmt.Errorf("%w: got %d bytes", ErrImageTooLarge, len(image))
	}

	copy(a.cells[:], image)
	return nil
}

// Reset clears every cell to zero.
func (a *AddressSpace) Reset() {
	clear(a.cells[:])
}
