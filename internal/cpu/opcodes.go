package cpu

import "fmt"

// Opcode is a base (unprefixed) instruction byte.
type Opcode uint8

// Supported base opcodes.
const (
	OpNOP      Opcode = 0x00 // NOP
	OpJRNZ     Opcode = 0x20 // JR NZ,r8
	OpLDHLd16  Opcode = 0x21 // LD HL,d16
	OpLDSPd16  Opcode = 0x31 // LD SP,d16
	OpLDHLDecA Opcode = 0x32 // LD (HL-),A
	OpXORA     Opcode = 0xAF // XOR A
	OpPrefixCB Opcode = 0xCB // PREFIX CB
)

// String returns the mnemonic of a supported opcode, or its hex value.
func (o Opcode) String() string {
	switch o {
	case OpNOP:
		return "NOP"
	case OpJRNZ:
		return "JR NZ,r8"
	case OpLDHLd16:
		return "LD HL,d16"
	case OpLDSPd16:
		return "LD SP,d16"
	case OpLDHLDecA:
		return "LD (HL-),A"
	case OpXORA:
		return "XOR A"
	case OpPrefixCB:
		return "PREFIX CB"
	}
	return fmt.Sprintf("0x%02X", uint8(o))
}

// execute executes a base opcode fetched from addr and returns the number of
// cycles taken. Immediate operands are consumed from PC as they are read.
func (c *CPU) execute(opcode Opcode, addr uint16) (uint8, error) {
	switch opcode {
	case OpNOP:
		return 4, nil

	case OpLDSPd16:
		c.Registers.SP = c.fetchWord()
		return 12, nil

	case OpLDHLd16:
		c.Registers.SetHL(c.fetchWord())
		return 12, nil

	case OpLDHLDecA:
		hl := c.Registers.HL()
		c.Memory.Write(hl, c.Registers.A)
		c.Registers.SetHL(hl - 1)
		return 8, nil

	case OpXORA:
		c.Registers.A ^= c.Registers.A
		c.Registers.ClearFlags()
		c.Registers.SetFlag(FlagZ)
		return 4, nil

	case OpJRNZ:
		offset := int8(c.fetchByte()) //nolint:gosec // G115: Intentional signed conversion for relative jump
		if !c.Registers.ZeroFlag() {
			c.Registers.PC = uint16(int32(c.Registers.PC) + int32(offset)) //nolint:gosec // G115: Intentional for address calculation
			return 12, nil
		}
		return 8, nil

	case OpPrefixCB:
		cycles, err := c.executeExtended(c.fetchByte())
		if err != nil {
			return 0, err
		}
		return 4 + cycles, nil
	}

	return 0, &UnsupportedOpcodeError{Opcode: uint16(opcode), Addr: addr}
}
