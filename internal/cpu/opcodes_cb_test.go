package cpu

import (
	"errors"
	"testing"
)

func TestDecodeExtended(t *testing.T) {
	tests := []struct {
		opcode  uint8
		op      ExtendedOp
		operand Operand
		bit     uint8
		text    string
	}{
		{0x00, OpRLC, OperandB, 0, "RLC B"},
		{0x08, OpRRC, OperandB, 1, "RRC B"},
		{0x11, OpRL, OperandC, 2, "RL C"},
		{0x1E, OpRR, OperandHL, 3, "RR (HL)"},
		{0x27, OpSLA, OperandA, 4, "SLA A"},
		{0x2F, OpSRA, OperandA, 5, "SRA A"},
		{0x37, OpSWAP, OperandA, 6, "SWAP A"},
		{0x3F, OpSRL, OperandA, 7, "SRL A"},
		{0x40, OpBIT, OperandB, 0, "BIT 0,B"},
		{0x48, OpBIT, OperandB, 1, "BIT 1,B"},
		{0x7C, OpBIT, OperandH, 7, "BIT 7,H"},
		{0x7E, OpBIT, OperandHL, 7, "BIT 7,(HL)"},
		{0x86, OpRES, OperandHL, 0, "RES 0,(HL)"},
		{0xD5, OpSET, OperandL, 2, "SET 2,L"},
		{0xFF, OpSET, OperandA, 7, "SET 7,A"},
	}

	for _, tt := range tests {
		in := DecodeExtended(tt.opcode)
		if in.Op != tt.op || in.Operand != tt.operand || in.Bit != tt.bit {
			t.Errorf("DecodeExtended(0x%02X) = %v %v bit %d, want %v %v bit %d",
				tt.opcode, in.Op, in.Operand, in.Bit, tt.op, tt.operand, tt.bit)
		}
		if in.String() != tt.text {
			t.Errorf("DecodeExtended(0x%02X).String() = %q, want %q", tt.opcode, in.String(), tt.text)
		}
	}
}

func TestDecodeExtendedCoversOpcodeSpace(t *testing.T) {
	rotates := [8]ExtendedOp{OpRLC, OpRRC, OpRL, OpRR, OpSLA, OpSRA, OpSWAP, OpSRL}

	for i := 0; i < 256; i++ {
		opcode := uint8(i)
		in := DecodeExtended(opcode)

		var want ExtendedOp
		switch {
		case opcode < 0x40:
			want = rotates[opcode>>3]
		case opcode < 0x80:
			want = OpBIT
		case opcode < 0xC0:
			want = OpRES
		default:
			want = OpSET
		}

		if in.Op != want {
			t.Errorf("DecodeExtended(0x%02X).Op = %v, want %v", opcode, in.Op, want)
		}
		if in.Operand != Operand(opcode&7) {
			t.Errorf("DecodeExtended(0x%02X).Operand = %v, want %v", opcode, in.Operand, Operand(opcode&7))
		}
		if opcode >= 0x40 && in.Bit != (opcode>>3)&7 {
			t.Errorf("DecodeExtended(0x%02X).Bit = %d, want %d", opcode, in.Bit, (opcode>>3)&7)
		}
		if in.Supported() != (opcode < 0x80) {
			t.Errorf("DecodeExtended(0x%02X).Supported() = %v", opcode, in.Supported())
		}
	}
}

func TestExtendedOpTable(t *testing.T) {
	if got := extendedOp(0, 3); got != OpSWAP {
		t.Errorf("extendedOp(0, 3) = %v, want SWAP", got)
	}
	if got := extendedOp(1, 3); got != OpSRL {
		t.Errorf("extendedOp(1, 3) = %v, want SRL", got)
	}
	if got := ExtendedOp(42).String(); got != "ExtendedOp(42)" {
		t.Errorf("ExtendedOp(42).String() = %q", got)
	}
}

func TestCBOperations(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint8
		value  uint8
		flags  uint8
		want   uint8
		wantF  uint8
	}{
		{"RLC carry out", 0x07, 0x85, 0x00, 0x0B, 0x10},
		{"RLC zero", 0x07, 0x00, 0xF0, 0x00, 0x80},
		{"RL carry out", 0x17, 0x80, 0x00, 0x00, 0x90},
		{"RL carry in", 0x17, 0x01, 0x10, 0x03, 0x00},
		{"SLA", 0x27, 0xC0, 0x00, 0x80, 0x10},
		{"SLA zero", 0x27, 0x80, 0x00, 0x00, 0x90},
		{"SWAP", 0x37, 0x1F, 0xF0, 0xF1, 0x00},
		{"SWAP zero", 0x37, 0x00, 0x00, 0x00, 0x80},
		{"SWAP clears unused bits", 0x37, 0x12, 0x0F, 0x21, 0x00},
		{"RRC carry out", 0x0F, 0x01, 0x00, 0x80, 0x10},
		{"RRC no carry", 0x0F, 0x02, 0x10, 0x01, 0x00},
		{"RR carry out", 0x1F, 0x01, 0x00, 0x00, 0x90},
		{"RR carry in", 0x1F, 0x02, 0x10, 0x81, 0x00},
		{"SRA keeps sign", 0x2F, 0x81, 0x00, 0x80, 0x00},
		{"SRA bit 6", 0x2F, 0xC0, 0x00, 0xA0, 0x00},
		{"SRA zero", 0x2F, 0x01, 0x10, 0x00, 0x80},
		{"SRL carry out", 0x3F, 0x01, 0x00, 0x00, 0x90},
		{"SRL", 0x3F, 0x80, 0xF0, 0x40, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := setupCPU(t, 0xCB, tt.opcode)
			cpu.Registers.A = tt.value
			cpu.Registers.F = tt.flags

			cycles, err := cpu.Step()
			if err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			if cycles != 8 {
				t.Errorf("cycles = %d, want 8", cycles)
			}
			if cpu.Registers.A != tt.want {
				t.Errorf("A = %02X, want %02X", cpu.Registers.A, tt.want)
			}
			if cpu.Registers.F != tt.wantF {
				t.Errorf("F = %02X, want %02X", cpu.Registers.F, tt.wantF)
			}
			if cpu.Registers.PC != 0x0002 {
				t.Errorf("PC = %04X, want 0x0002", cpu.Registers.PC)
			}
		})
	}
}

func TestCBSwapNibbles(t *testing.T) {
	cpu, _ := setupCPU(t, 0xCB, 0x37) // SWAP A
	cpu.Registers.A = 0x1F

	if _, err := cpu.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if cpu.Registers.A != 0xF1 {
		t.Errorf("A = %02X, want 0xF1", cpu.Registers.A)
	}
	if cpu.Registers.ZeroFlag() {
		t.Error("Zero flag should be clear")
	}
	if cpu.Registers.CarryFlag() {
		t.Error("Carry flag should be clear")
	}
}

func TestCBBit(t *testing.T) {
	tests := []struct {
		name     string
		value    uint8
		carry    bool
		wantZero bool
	}{
		{"bit clear", 0x00, false, true},
		{"bit clear with carry", 0x00, true, true},
		{"bit set", 0x80, false, false},
		{"bit set with carry", 0x80, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := setupCPU(t, 0xCB, 0x7C) // BIT 7,H
			cpu.Registers.H = tt.value
			cpu.Registers.F = 0x4F // N and unused bits
			if tt.carry {
				cpu.Registers.SetFlag(FlagC)
			}
			if !tt.wantZero {
				cpu.Registers.SetFlag(FlagZ)
			}

			cycles, err := cpu.Step()
			if err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			if cycles != 8 {
				t.Errorf("BIT cycles = %d, want 8", cycles)
			}
			if cpu.Registers.H != tt.value {
				t.Errorf("H = %02X, want %02X (unchanged)", cpu.Registers.H, tt.value)
			}
			if cpu.Registers.ZeroFlag() != tt.wantZero {
				t.Errorf("Zero flag = %v, want %v", cpu.Registers.ZeroFlag(), tt.wantZero)
			}
			if !cpu.Registers.HalfCarryFlag() {
				t.Error("Half-carry flag should be set")
			}
			if cpu.Registers.SubtractFlag() {
				t.Error("Subtract flag should be clear")
			}
			if cpu.Registers.CarryFlag() != tt.carry {
				t.Errorf("Carry flag = %v, want %v (unchanged)", cpu.Registers.CarryFlag(), tt.carry)
			}
			if cpu.Registers.F&0x0F != 0 {
				t.Errorf("F = %02X, unused bits should be clear", cpu.Registers.F)
			}
		})
	}
}

func TestCBBitIndex(t *testing.T) {
	for n := uint8(0); n < 8; n++ {
		opcode := 0x40 | n<<3 | uint8(OperandB)
		cpu, _ := setupCPU(t, 0xCB, opcode)
		cpu.Registers.B = 1 << n

		if _, err := cpu.Step(); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if cpu.Registers.ZeroFlag() {
			t.Errorf("BIT %d,B with B = %02X set Zero", n, cpu.Registers.B)
		}
	}
}

func TestCBMemoryOperand(t *testing.T) {
	cpu, mem := setupCPU(t, 0xCB, 0x36, 0xCB, 0x7E) // SWAP (HL); BIT 7,(HL)
	cpu.Registers.SetHL(0xC000)
	mem.data[0xC000] = 0x1F

	cycles, err := cpu.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if cycles != 12 {
		t.Errorf("SWAP (HL) cycles = %d, want 12", cycles)
	}
	if mem.data[0xC000] != 0xF1 {
		t.Errorf("mem[0xC000] = %02X, want 0xF1", mem.data[0xC000])
	}
	if cpu.Registers.H != 0xC0 || cpu.Registers.L != 0x00 {
		t.Errorf("HL registers modified: H = %02X, L = %02X", cpu.Registers.H, cpu.Registers.L)
	}

	cycles, err = cpu.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if cycles != 12 {
		t.Errorf("BIT 7,(HL) cycles = %d, want 12", cycles)
	}
	if cpu.Registers.ZeroFlag() {
		t.Error("Zero flag should be clear, bit 7 of 0xF1 is set")
	}
	if mem.data[0xC000] != 0xF1 {
		t.Errorf("mem[0xC000] = %02X, want 0xF1 (unchanged)", mem.data[0xC000])
	}
	if cpu.Cycles != 24 {
		t.Errorf("Cycles = %d, want 24", cpu.Cycles)
	}
}

func TestCBRegisterOperands(t *testing.T) {
	regs := []struct {
		operand Operand
		ptr     func(*Registers) *uint8
	}{
		{OperandB, func(r *Registers) *uint8 { return &r.B }},
		{OperandC, func(r *Registers) *uint8 { return &r.C }},
		{OperandD, func(r *Registers) *uint8 { return &r.D }},
		{OperandE, func(r *Registers) *uint8 { return &r.E }},
		{OperandH, func(r *Registers) *uint8 { return &r.H }},
		{OperandL, func(r *Registers) *uint8 { return &r.L }},
		{OperandA, func(r *Registers) *uint8 { return &r.A }},
	}

	for _, reg := range regs {
		t.Run(reg.operand.String(), func(t *testing.T) {
			cpu, _ := setupCPU(t, 0xCB, 0x30|uint8(reg.operand)) // SWAP r
			*reg.ptr(cpu.Registers) = 0xAB

			if _, err := cpu.Step(); err != nil {
				t.Fatalf("Step() error = %v", err)
			}
			if got := *reg.ptr(cpu.Registers); got != 0xBA {
				t.Errorf("%s = %02X, want 0xBA", reg.operand, got)
			}
		})
	}
}

func TestCBUnsupported(t *testing.T) {
	for _, opcode := range []uint8{0x80, 0xBE, 0xC7, 0xFF} {
		cpu, mem := setupCPU(t, 0xCB, opcode)
		cpu.Registers.SetBC(0x1234)
		cpu.Registers.A = 0x56
		cpu.Registers.SetHL(0xC000)
		mem.data[0xC000] = 0x78
		before := *cpu.Registers

		_, err := cpu.Step()

		var opErr *UnsupportedOpcodeError
		if !errors.As(err, &opErr) {
			t.Fatalf("CB %02X: error = %v, want *UnsupportedOpcodeError", opcode, err)
		}
		if !opErr.Extended || opErr.Opcode != 0xCB00|uint16(opcode) || opErr.Addr != 0x0001 {
			t.Errorf("CB %02X: error = %+v", opcode, *opErr)
		}
		if cpu.Cycles != 0 {
			t.Errorf("CB %02X: Cycles = %d, want 0", opcode, cpu.Cycles)
		}

		want := before
		want.PC = 0x0002
		if *cpu.Registers != want {
			t.Errorf("CB %02X: registers = %+v, want %+v", opcode, *cpu.Registers, want)
		}
		if mem.data[0xC000] != 0x78 {
			t.Errorf("CB %02X: mem[0xC000] = %02X, want 0x78", opcode, mem.data[0xC000])
		}
	}

	cpu, _ := setupCPU(t, 0xCB, 0x80)
	_, err := cpu.Step()
	if err == nil || err.Error() != "opcode 0xCB80 (RES 0,B) at 0x0001 not supported" {
		t.Errorf("Error() = %v", err)
	}
}

func TestRotationLaws(t *testing.T) {
	cpu := New(newMockMemory())

	for i := 0; i < 256; i++ {
		v := uint8(i)

		left, right := v, v
		for i := 0; i < 8; i++ {
			left = cpu.rlc(left)
			right = cpu.rrc(right)
		}
		if left != v {
			t.Errorf("8 x RLC(%02X) = %02X, want %02X", v, left, v)
		}
		if right != v {
			t.Errorf("8 x RRC(%02X) = %02X, want %02X", v, right, v)
		}

		if got := cpu.rrc(cpu.rlc(v)); got != v {
			t.Errorf("RRC(RLC(%02X)) = %02X", v, got)
		}

		twice := cpu.rlc(cpu.rlc(v))
		if want := v<<2 | v>>6; twice != want {
			t.Errorf("RLC(RLC(%02X)) = %02X, want %02X", v, twice, want)
		}
	}
}

func TestRotateThroughCarryCycle(t *testing.T) {
	// RL through carry is a 9-bit rotation
	cpu := New(newMockMemory())
	cpu.Registers.ClearFlags()

	v := uint8(0xA5)
	for i := 0; i < 9; i++ {
		v = cpu.rl(v)
	}
	if v != 0xA5 || cpu.Registers.CarryFlag() {
		t.Errorf("9 x RL(0xA5) = %02X carry %v, want 0xA5 carry false", v, cpu.Registers.CarryFlag())
	}

	for i := 0; i < 9; i++ {
		v = cpu.rr(v)
	}
	if v != 0xA5 || cpu.Registers.CarryFlag() {
		t.Errorf("9 x RR(0xA5) = %02X carry %v, want 0xA5 carry false", v, cpu.Registers.CarryFlag())
	}
}
