package cpu

import (
	"fmt"
	"strings"
)

// Dump is a snapshot of the register file taken for diagnostics.
type Dump struct {
	AF, BC, DE, HL uint16
	SP, PC         uint16

	Zero      bool
	Subtract  bool
	HalfCarry bool
	Carry     bool
}

// Dump returns the current register state. It does not modify the CPU.
func (c *CPU) Dump() Dump {
	r := c.Registers
	return Dump{
		AF:        r.AF(),
		BC:        r.BC(),
		DE:        r.DE(),
		HL:        r.HL(),
		SP:        r.SP,
		PC:        r.PC,
		Zero:      r.ZeroFlag(),
		Subtract:  r.SubtractFlag(),
		HalfCarry: r.HalfCarryFlag(),
		Carry:     r.CarryFlag(),
	}
}

// Flags returns the four flags as "ZNHC", with '-' for each clear flag.
func (d Dump) Flags() string {
	var sb strings.Builder
	for _, f := range []struct {
		set  bool
		name Flag
	}{
		{d.Zero, FlagZ},
		{d.Subtract, FlagN},
		{d.HalfCarry, FlagH},
		{d.Carry, FlagC},
	} {
		if f.set {
			sb.WriteString(f.name.String())
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func (d Dump) String() string {
	return fmt.Sprintf("AF = 0x%04X, Flags = %s\nBC = 0x%04X\nDE = 0x%04X\nHL = 0x%04X\nSP = 0x%04X\nPC = 0x%04X",
		d.AF, d.Flags(), d.BC, d.DE, d.HL, d.SP, d.PC)
}
