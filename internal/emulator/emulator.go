// Package emulator provides the machine that ties together the address
// space, the CPU and a boot image.
package emulator

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/richardwooding/dmgcore/internal/bootimage"
	"github.com/richardwooding/dmgcore/internal/cpu"
	"github.com/richardwooding/dmgcore/internal/memory"
)

// ErrNoImage indicates the emulator was created without a boot image.
var ErrNoImage = errors.New("no boot image")

// Option configures an Emulator.
type Option func(e *Emulator)

// WithLogger sets the logger used by the emulator and its CPU.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Emulator) {
		e.log = log
	}
}

// WithWindowLimit stops the CPU once n interrupt windows have elapsed.
// Zero means no limit.
func WithWindowLimit(n uint64) Option {
	return func(e *Emulator) {
		e.windowLimit = n
	}
}

// WithServicer installs an additional handler run at every interrupt window,
// before the window limit is checked.
func WithServicer(s cpu.InterruptServicer) Option {
	return func(e *Emulator) {
		e.servicer = s
	}
}

// Emulator represents a Game Boy CPU core with its address space.
type Emulator struct {
	CPU    *cpu.CPU
	Memory *memory.AddressSpace
	Image  *bootimage.Image

	log         logrus.FieldLogger
	windowLimit uint64
	windows     uint64
	servicer    cpu.InterruptServicer
}

// New creates a new emulator instance and resets it with image.
func New(image *bootimage.Image, opts ...Option) (*Emulator, error) {
	if image == nil {
		return nil, ErrNoImage
	}

	mem := memory.New()
	e := &Emulator{
		CPU:    cpu.New(mem),
		Memory: mem,
		Image:  image,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.CPU.SetLogger(e.log)
	e.CPU.SetInterruptServicer(cpu.InterruptServicerFunc(e.serviceInterrupts))

	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset zeroes the machine and reloads the boot image.
func (e *Emulator) Reset() error {
	if err := e.CPU.Reset(e.Image.Bytes()); err != nil {
		return fmt.Errorf("failed to load boot image: %w", err)
	}
	e.windows = 0

	e.log.WithFields(logrus.Fields{
		"size":        e.Image.Len(),
		"fingerprint": e.Image.FingerprintString(),
	}).Info("Boot image loaded")

	return nil
}

// Step executes one CPU instruction and returns the number of cycles taken.
func (e *Emulator) Step() (uint8, error) {
	return e.CPU.Step()
}

// Run runs the CPU until it is stopped or decodes an unsupported opcode.
func (e *Emulator) Run() error {
	return e.CPU.Run()
}

// Windows returns the number of interrupt windows elapsed since reset.
func (e *Emulator) Windows() uint64 {
	return e.windows
}

// Dump returns the current register state.
func (e *Emulator) Dump() cpu.Dump {
	return e.CPU.Dump()
}

// serviceInterrupts runs once per interrupt window.
func (e *Emulator) serviceInterrupts(c *cpu.CPU) {
	e.windows++
	e.log.WithField("window", e.windows).Debug("Interrupt window")

	if e.servicer != nil {
		e.servicer.ServiceInterrupts(c)
	}

	if e.windowLimit > 0 && e.windows >= e.windowLimit {
		c.Stop()
	}
}
