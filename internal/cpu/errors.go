package cpu

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOpcode indicates the decoder met an opcode it cannot execute.
var ErrUnsupportedOpcode = errors.New("unsupported opcode")

// UnsupportedOpcodeError reports an opcode the CPU cannot execute and the
// address it was fetched from. Extended opcodes carry the 0xCB prefix in the
// high byte of Opcode.
type UnsupportedOpcodeError struct {
	Opcode   uint16
	Addr     uint16
	Extended bool
	Mnemonic string
}

func (e *UnsupportedOpcodeError) Error() string {
	if e.Extended {
		return fmt.Sprintf("opcode 0x%04X (%s) at 0x%04X not supported", e.Opcode, e.Mnemonic, e.Addr)
	}
	return fmt.Sprintf("opcode 0x%02X at 0x%04X not supported", e.Opcode, e.Addr)
}

// Unwrap allows errors.Is(err, ErrUnsupportedOpcode).
func (e *UnsupportedOpcodeError) Unwrap() error {
	return ErrUnsupportedOpcode
}
