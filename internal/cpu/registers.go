package cpu

// Flag is the bit position of a flag within the F register.
type Flag uint8

// Flag bit positions. Bits 0-3 of F are unused.
const (
	FlagC Flag = 4 // Carry flag
	FlagH Flag = 5 // Half-carry flag
	FlagN Flag = 6 // Subtraction flag
	FlagZ Flag = 7 // Zero flag
)

// mask returns the F register bit mask for the flag.
func (f Flag) mask() uint8 {
	return 1 << f
}

// String returns the single-letter name of the flag.
func (f Flag) String() string {
	switch f {
	case FlagZ:
		return "Z"
	case FlagN:
		return "N"
	case FlagH:
		return "H"
	case FlagC:
		return "C"
	}
	return "?"
}

// Registers represents the SM83 CPU registers.
//
// The 16-bit pairs AF, BC, DE and HL are not stored separately; they are
// computed from, and written through to, the 8-bit registers.
type Registers struct {
	A  uint8  // Accumulator
	F  uint8  // Flags (only upper 4 bits meaningful)
	B  uint8  // General purpose
	C  uint8  // General purpose
	D  uint8  // General purpose
	E  uint8  // General purpose
	H  uint8  // General purpose (high byte of HL pointer)
	L  uint8  // General purpose (low byte of HL pointer)
	SP uint16 // Stack pointer
	PC uint16 // Program counter
}

// NewRegisters creates a new Registers instance with every register zeroed.
func NewRegisters() *Registers {
	return &Registers{}
}

// Reset zeroes every register.
func (r *Registers) Reset() {
	*r = Registers{}
}

// 16-bit register pair getters

// AF returns the 16-bit AF register pair.
func (r *Registers) AF() uint16 {
	return uint16(r.A)<<8 | uint16(r.F)
}

// BC returns the 16-bit BC register pair.
func (r *Registers) BC() uint16 {
	return uint16(r.B)<<8 | uint16(r.C)
}

// DE returns the 16-bit DE register pair.
func (r *Registers) DE() uint16 {
	return uint16(r.D)<<8 | uint16(r.E)
}

// HL returns the 16-bit HL register pair.
func (r *Registers) HL() uint16 {
	return uint16(r.H)<<8 | uint16(r.L)
}

// 16-bit register pair setters

// SetAF sets the 16-bit AF register pair. All eight bits of F are stored.
func (r *Registers) SetAF(value uint16) {
	r.A = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.F = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetBC sets the 16-bit BC register pair.
func (r *Registers) SetBC(value uint16) {
	r.B = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.C = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetDE sets the 16-bit DE register pair.
func (r *Registers) SetDE(value uint16) {
	r.D = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.E = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// SetHL sets the 16-bit HL register pair.
func (r *Registers) SetHL(value uint16) {
	r.H = uint8(value >> 8) //nolint:gosec // G115: Intentional byte extraction from 16-bit register
	r.L = uint8(value)      //nolint:gosec // G115: Intentional byte extraction from 16-bit register
}

// Flag operations

// IsSet checks if a flag is set.
func (r *Registers) IsSet(flag Flag) bool {
	return r.F&flag.mask() != 0
}

// SetFlag sets a flag to 1.
func (r *Registers) SetFlag(flag Flag) {
	r.F |= flag.mask()
}

// SetFlagIf sets a flag when the least significant bit of value is 1.
// A zero LSB leaves the flag as it was; it is never cleared here.
func (r *Registers) SetFlagIf(flag Flag, value uint8) {
	r.F |= (value & 1) << flag
}

// ClearFlag sets a flag to 0.
func (r *Registers) ClearFlag(flag Flag) {
	r.F &^= flag.mask()
}

// ClearFlags clears the whole F register, unused low bits included.
func (r *Registers) ClearFlags() {
	r.F = 0
}

// Individual flag getters

// ZeroFlag returns the Zero flag state.
func (r *Registers) ZeroFlag() bool {
	return r.IsSet(FlagZ)
}

// SubtractFlag returns the Subtract flag state.
func (r *Registers) SubtractFlag() bool {
	return r.IsSet(FlagN)
}

// HalfCarryFlag returns the Half-carry flag state.
func (r *Registers) HalfCarryFlag() bool {
	return r.IsSet(FlagH)
}

// CarryFlag returns the Carry flag state.
func (r *Registers) CarryFlag() bool {
	return r.IsSet(FlagC)
}

// bit converts a boolean into the 0/1 form taken by SetFlagIf.
func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
