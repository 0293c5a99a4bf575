// Package cpu implements the Sharp SM83 instruction core for the Game Boy.
package cpu

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/richardwooding/dmgcore/internal/memory"
)

// InterruptPeriod is the number of cycles between interrupt checks.
const InterruptPeriod = 1000

// Memory interface for CPU to access the address space.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	ReadN(addr uint16, n int) []byte
}

// Loader is implemented by memories that can clear and seed themselves in
// one operation. Reset falls back to byte-wise writes otherwise.
type Loader interface {
	Reset()
	Load(image []byte) error
}

// InterruptServicer is called once every InterruptPeriod cycles. It may stop
// the CPU; Run returns once the servicer has cleared the running flag.
type InterruptServicer interface {
	ServiceInterrupts(c *CPU)
}

// InterruptServicerFunc adapts a function to InterruptServicer.
type InterruptServicerFunc func(c *CPU)

// ServiceInterrupts calls f(c).
func (f InterruptServicerFunc) ServiceInterrupts(c *CPU) {
	f(c)
}

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	Registers *Registers
	Memory    Memory

	// Cycles elapsed since the last interrupt window
	Cycles uint32

	running  bool
	servicer InterruptServicer
	log      logrus.FieldLogger
}

// New creates a new CPU instance.
func New(mem Memory) *CPU {
	return &CPU{
		Registers: NewRegisters(),
		Memory:    mem,
		log:       logrus.StandardLogger(),
	}
}

// SetLogger sets the logger that receives decode diagnostics.
func (c *CPU) SetLogger(log logrus.FieldLogger) {
	c.log = log
}

// SetInterruptServicer installs the handler called at each interrupt window.
// A nil servicer disables interrupt servicing.
func (c *CPU) SetInterruptServicer(s InterruptServicer) {
	c.servicer = s
}

// Reset zeroes the registers, cycle counter and running flag, clears memory
// and copies image into it starting at address 0.
func (c *CPU) Reset(image []byte) error {
	c.Registers.Reset()
	c.Cycles = 0
	c.running = false

	if l, ok := c.Memory.(Loader); ok {
		l.Reset()
		return l.Load(image)
	}

	if len(image) > memory.Size {
		return memory.ErrImageTooLarge
	}
	for addr := 0; addr < memory.Size; addr++ {
		var value uint8
		if addr < len(image) {
			value = image[addr]
		}
		c.Memory.Write(uint16(addr), value) //nolint:gosec // G115: addr < 0x10000
	}
	return nil
}

// Running reports whether Run is executing and has not been stopped.
func (c *CPU) Running() bool {
	return c.running
}

// Stop clears the running flag. Run notices it at the next interrupt window.
func (c *CPU) Stop() {
	c.running = false
}

// Step executes one instruction and returns cycles taken.
//
// An unsupported opcode returns an *UnsupportedOpcodeError. PC is left one
// past the failing byte and nothing else is modified.
func (c *CPU) Step() (uint8, error) {
	addr := c.Registers.PC
	opcode := Opcode(c.fetchByte())

	cycles, err := c.execute(opcode, addr)
	if err != nil {
		return 0, err
	}

	c.Cycles += uint32(cycles)
	return cycles, nil
}

// Run executes instructions until the running flag is observed clear at an
// interrupt window, or until an unsupported opcode is decoded. A decode
// failure is logged and returned.
func (c *CPU) Run() error {
	c.running = true

	for {
		if _, err := c.Step(); err != nil {
			c.running = false
			c.logFault(err)
			return err
		}

		if c.Cycles >= InterruptPeriod {
			c.Cycles -= InterruptPeriod

			c.serviceInterrupts()

			if !c.running {
				return nil
			}
		}
	}
}

// serviceInterrupts is the once-per-window interrupt check. Interrupt
// delivery is not emulated; the servicer only gets a chance to stop the CPU.
func (c *CPU) serviceInterrupts() {
	if c.servicer != nil {
		c.servicer.ServiceInterrupts(c)
	}
}

func (c *CPU) logFault(err error) {
	var opErr *UnsupportedOpcodeError
	if !errors.As(err, &opErr) {
		c.log.Error(err)
		return
	}

	if opErr.Extended {
		c.log.WithFields(logrus.Fields{
			"opcode": opErr.Opcode,
			"addr":   opErr.Addr,
		}).Errorf("Opcode 0x%04X at 0x%04X not supported!", opErr.Opcode, opErr.Addr)
		return
	}

	c.log.WithFields(logrus.Fields{
		"opcode": opErr.Opcode,
		"addr":   opErr.Addr,
	}).Errorf("Opcode 0x%02X at 0x%04X not supported!", opErr.Opcode, opErr.Addr)
}

// fetchByte fetches the next byte from memory and increments PC.
func (c *CPU) fetchByte() uint8 {
	value := c.Memory.Read(c.Registers.PC)
	c.Registers.PC++
	return value
}

// fetchWord fetches the next little-endian word and advances PC past it.
func (c *CPU) fetchWord() uint16 {
	b := c.Memory.ReadN(c.Registers.PC, 2)
	c.Registers.PC += 2
	return uint16(b[1])<<8 | uint16(b[0])
}
