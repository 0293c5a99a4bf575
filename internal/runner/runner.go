// Package runner loads a boot image, runs it and reports how the run ended.
package runner

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/richardwooding/dmgcore/internal/bootimage"
	"github.com/richardwooding/dmgcore/internal/cpu"
	"github.com/richardwooding/dmgcore/internal/emulator"
)

// Result represents the result of running a boot image.
type Result struct {
	Fingerprint string
	Windows     uint64
	Dump        cpu.Dump

	// Fault is the decode failure that halted the CPU, if any
	Fault *cpu.UnsupportedOpcodeError

	// Error reports a failure to load or start the image
	Error error
}

// Run executes the image at path for at most windows interrupt windows
// (zero means until a decode failure) and returns the result.
func Run(path string, windows uint64, log logrus.FieldLogger) *Result {
	result := &Result{}

	img, err := bootimage.Load(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read boot image: %w", err)
		return result
	}
	result.Fingerprint = img.FingerprintString()

	emu, err := emulator.New(img, emulator.WithLogger(log), emulator.WithWindowLimit(windows))
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		return result
	}

	err = emu.Run()
	result.Windows = emu.Windows()
	result.Dump = emu.Dump()

	if err != nil {
		var opErr *cpu.UnsupportedOpcodeError
		if !errors.As(err, &opErr) {
			result.Error = err
			return result
		}
		result.Fault = opErr
	}

	return result
}

// String returns a human-readable representation of the result.
func (r *Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("ERROR: %v", r.Error)
	}

	if r.Fault != nil {
		return fmt.Sprintf("HALTED: %v", r.Fault)
	}

	return fmt.Sprintf("STOPPED after %d interrupt windows", r.Windows)
}

// IsSuccess returns true if the image was loaded and executed. A decode
// failure ends the run but is not an error of the run itself.
func (r *Result) IsSuccess() bool {
	return r.Error == nil
}
