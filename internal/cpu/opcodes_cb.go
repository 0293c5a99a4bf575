package cpu

import (
	"fmt"
	"math/bits"
)

// ExtendedOp identifies a micro-operation in the CB-prefixed opcode space.
type ExtendedOp uint8

// Extended micro-operations.
const (
	OpRLC  ExtendedOp = iota // Rotate left
	OpRL                     // Rotate left through carry
	OpSLA                    // Shift left
	OpSWAP                   // Swap nibbles
	OpBIT                    // Test bit n
	OpRES                    // Reset bit n
	OpSET                    // Set bit n
	OpRRC                    // Rotate right
	OpRR                     // Rotate right through carry
	OpSRA                    // Shift right, keep sign
	OpSRL                    // Shift right logical
)

var extendedOpNames = [...]string{
	OpRLC:  "RLC",
	OpRL:   "RL",
	OpSLA:  "SLA",
	OpSWAP: "SWAP",
	OpBIT:  "BIT",
	OpRES:  "RES",
	OpSET:  "SET",
	OpRRC:  "RRC",
	OpRR:   "RR",
	OpSRA:  "SRA",
	OpSRL:  "SRL",
}

func (o ExtendedOp) String() string {
	if int(o) < len(extendedOpNames) {
		return extendedOpNames[o]
	}
	return fmt.Sprintf("ExtendedOp(%d)", uint8(o))
}

// extendedOps holds one row per half of the low nibble (0-7, 8-F), indexed
// by the high nibble.
var extendedOps = [2][16]ExtendedOp{
	{OpRLC, OpRL, OpSLA, OpSWAP, OpBIT, OpBIT, OpBIT, OpBIT, OpRES, OpRES, OpRES, OpRES, OpSET, OpSET, OpSET, OpSET},
	{OpRRC, OpRR, OpSRA, OpSRL, OpBIT, OpBIT, OpBIT, OpBIT, OpRES, OpRES, OpRES, OpRES, OpSET, OpSET, OpSET, OpSET},
}

// extendedOp maps a row (0 or 1) and column (high nibble, 0-15) onto its
// micro-operation.
func extendedOp(row, column uint8) ExtendedOp {
	return extendedOps[row&1][column&0x0F]
}

// Operand selects the 8-bit location an extended instruction acts on.
type Operand uint8

// Operands in encoding order. OperandHL is the memory cell addressed by HL.
const (
	OperandB Operand = iota
	OperandC
	OperandD
	OperandE
	OperandH
	OperandL
	OperandHL
	OperandA
)

var operandNames = [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

func (o Operand) String() string {
	return operandNames[o&7]
}

// ExtendedInstruction is a decoded CB-prefixed opcode.
type ExtendedInstruction struct {
	Opcode  uint8
	Op      ExtendedOp
	Operand Operand
	Bit     uint8 // only meaningful for BIT, RES and SET
}

// DecodeExtended splits a CB-prefixed opcode into operation, operand and bit
// index.
func DecodeExtended(opcode uint8) ExtendedInstruction {
	high := opcode >> 4
	low := opcode & 0x0F

	return ExtendedInstruction{
		Opcode:  opcode,
		Op:      extendedOp(low>>3, high),
		Operand: Operand(low & 7),
		Bit:     2*(high&3) + low>>3,
	}
}

// Cycles returns the cost on top of the 4 cycles charged for the prefix.
func (i ExtendedInstruction) Cycles() uint8 {
	if i.Operand == OperandHL {
		return 8
	}
	return 4
}

// Supported reports whether the micro-operation is implemented.
func (i ExtendedInstruction) Supported() bool {
	return i.Op != OpRES && i.Op != OpSET
}

// String returns the assembler form, e.g. "BIT 7,H" or "SWAP (HL)".
func (i ExtendedInstruction) String() string {
	switch i.Op {
	case OpBIT, OpRES, OpSET:
		return fmt.Sprintf("%s %d,%s", i.Op, i.Bit, i.Operand)
	}
	return fmt.Sprintf("%s %s", i.Op, i.Operand)
}

// readOperand returns the current value of an operand.
func (c *CPU) readOperand(o Operand) uint8 {
	switch o {
	case OperandB:
		return c.Registers.B
	case OperandC:
		return c.Registers.C
	case OperandD:
		return c.Registers.D
	case OperandE:
		return c.Registers.E
	case OperandH:
		return c.Registers.H
	case OperandL:
		return c.Registers.L
	case OperandHL:
		return c.Memory.Read(c.Registers.HL())
	}
	return c.Registers.A
}

// writeOperand stores value into an operand.
func (c *CPU) writeOperand(o Operand, value uint8) {
	switch o {
	case OperandB:
		c.Registers.B = value
	case OperandC:
		c.Registers.C = value
	case OperandD:
		c.Registers.D = value
	case OperandE:
		c.Registers.E = value
	case OperandH:
		c.Registers.H = value
	case OperandL:
		c.Registers.L = value
	case OperandHL:
		c.Memory.Write(c.Registers.HL(), value)
	default:
		c.Registers.A = value
	}
}

// executeExtended executes a CB-prefixed opcode and returns the number of
// cycles taken, excluding the prefix.
func (c *CPU) executeExtended(opcode uint8) (uint8, error) {
	in := DecodeExtended(opcode)
	if !in.Supported() {
		return 0, &UnsupportedOpcodeError{
			Opcode:   uint16(OpPrefixCB)<<8 | uint16(opcode),
			Addr:     c.Registers.PC - 1,
			Extended: true,
			Mnemonic: in.String(),
		}
	}

	value := c.readOperand(in.Operand)

	switch in.Op {
	case OpBIT:
		c.bit(value, in.Bit)
		return in.Cycles(), nil
	case OpRLC:
		value = c.rlc(value)
	case OpRL:
		value = c.rl(value)
	case OpSLA:
		value = c.sla(value)
	case OpSWAP:
		value = c.swap(value)
	case OpRRC:
		value = c.rrc(value)
	case OpRR:
		value = c.rr(value)
	case OpSRA:
		value = c.sra(value)
	case OpSRL:
		value = c.srl(value)
	}

	c.writeOperand(in.Operand, value)
	return in.Cycles(), nil
}

// Rotate and shift helpers. Each starts from a fully cleared F register.

// carryIn returns the Carry flag as a 0/1 value.
func (c *CPU) carryIn() uint8 {
	return c.Registers.F >> FlagC & 1
}

// rlc rotates left circularly.
func (c *CPU) rlc(value uint8) uint8 {
	result := bits.RotateLeft8(value, 1)

	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, result&1)
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// rl rotates left through carry.
func (c *CPU) rl(value uint8) uint8 {
	carry := c.carryIn()

	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, value>>7)
	result := value<<1 | carry
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// sla shifts left arithmetic.
func (c *CPU) sla(value uint8) uint8 {
	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, value>>7)
	result := value << 1
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// swap swaps upper and lower nibbles.
func (c *CPU) swap(value uint8) uint8 {
	c.Registers.ClearFlags()
	result := value>>4 | value<<4
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// bit tests a bit. Carry survives, the unused low bits of F do not.
func (c *CPU) bit(value uint8, n uint8) {
	c.Registers.F &= FlagC.mask()
	c.Registers.SetFlag(FlagH)
	c.Registers.SetFlagIf(FlagZ, ^value>>n&1)
}

// rrc rotates right circularly.
func (c *CPU) rrc(value uint8) uint8 {
	result := bits.RotateLeft8(value, -1)

	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, result>>7)
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// rr rotates right through carry.
func (c *CPU) rr(value uint8) uint8 {
	carry := c.carryIn()

	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, value&1)
	result := value>>1 | carry<<7
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// sra shifts right keeping bit 7. Carry is not set from the shifted-out bit.
func (c *CPU) sra(value uint8) uint8 {
	c.Registers.ClearFlags()
	result := (value&0x7F)>>1 | value&0x80
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}

// srl shifts right logical.
func (c *CPU) srl(value uint8) uint8 {
	c.Registers.ClearFlags()
	c.Registers.SetFlagIf(FlagC, value&1)
	result := value >> 1
	c.Registers.SetFlagIf(FlagZ, bit(result == 0))

	return result
}
