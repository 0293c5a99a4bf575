package bootimage

import (
	"fmt"

	"github.com/pkg/errors"
)

// Header holds the cartridge header fields (0x0134-0x014D) of an image that
// is large enough to carry one. The core never banks ROM; the header is only
// reported.
type Header struct {
	// Title (0x0134-0x0143), NUL padded
	Title [16]byte

	// CGB flag (0x0143)
	CGBFlag byte

	// SGB flag (0x0146)
	SGBFlag byte

	// Cartridge type (0x0147)
	CartridgeType CartridgeType

	// ROM size code (0x0148), 32 KiB << n
	ROMSize byte

	// RAM size code (0x0149)
	RAMSize byte

	// Header checksum (0x014D)
	HeaderChecksum byte
}

// CartridgeType is the memory bank controller code at 0x0147.
type CartridgeType byte

// Cartridge types that fit in a 64 KiB image, plus the common MBCs.
const (
	TypeROMOnly       CartridgeType = 0x00
	TypeMBC1          CartridgeType = 0x01
	TypeMBC1RAM       CartridgeType = 0x02
	TypeMBC1RAMBatt   CartridgeType = 0x03
	TypeROMRAM        CartridgeType = 0x08
	TypeROMRAMBattery CartridgeType = 0x09
	TypeMBC3          CartridgeType = 0x11
	TypeMBC5          CartridgeType = 0x19
)

// String returns a human-readable name for the cartridge type.
func (t CartridgeType) String() string {
	switch t {
	case TypeROMOnly:
		return "ROM ONLY"
	case TypeMBC1:
		return "MBC1"
	case TypeMBC1RAM:
		return "MBC1+RAM"
	case TypeMBC1RAMBatt:
		return "MBC1+RAM+BATTERY"
	case TypeROMRAM:
		return "ROM+RAM"
	case TypeROMRAMBattery:
		return "ROM+RAM+BATTERY"
	case TypeMBC3:
		return "MBC3"
	case TypeMBC5:
		return "MBC5"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", byte(t))
	}
}

const headerEnd = 0x0150

var (
	// ErrNoHeader indicates the image is too short to contain a header.
	ErrNoHeader = errors.New("image too small for a cartridge header (0x0150 bytes)")

	// ErrInvalidHeaderChecksum indicates the header checksum is invalid.
	ErrInvalidHeaderChecksum = errors.New("invalid header checksum")
)

// ParseHeader parses the cartridge header from image data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < headerEnd {
		return nil, errors.Wrapf(ErrNoHeader, "got %d bytes", len(data))
	}

	h := &Header{
		CGBFlag:        data[0x0143],
		SGBFlag:        data[0x0146],
		CartridgeType:  CartridgeType(data[0x0147]),
		ROMSize:        data[0x0148],
		RAMSize:        data[0x0149],
		HeaderChecksum: data[0x014D],
	}
	copy(h.Title[:], data[0x0134:0x0144])

	if !h.VerifyHeaderChecksum(data) {
		return nil, ErrInvalidHeaderChecksum
	}

	return h, nil
}

// VerifyHeaderChecksum verifies the checksum over bytes 0x0134-0x014C.
// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
func (h *Header) VerifyHeaderChecksum(data []byte) bool {
	return headerChecksum(data) == h.HeaderChecksum
}

func headerChecksum(data []byte) byte {
	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - data[addr] - 1
	}
	return checksum
}

// GetTitle returns the title trimmed at the first NUL byte.
func (h *Header) GetTitle() string {
	end := len(h.Title)
	for i, b := range h.Title {
		if b == 0 {
			end = i
			break
		}
	}
	return string(h.Title[:end])
}

// GetROMSizeBytes returns the ROM size declared by the header.
func (h *Header) GetROMSizeBytes() int {
	if h.ROMSize > 0x08 {
		return 0
	}
	return 32 * 1024 << h.ROMSize
}
