// Package main provides the dmgcore CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/richardwooding/dmgcore/internal/bootimage"
	"github.com/richardwooding/dmgcore/internal/runner"
)

// DefaultWindows bounds a run that never decodes an unsupported opcode.
// 10000 windows is ten million cycles.
const DefaultWindows = 10000

// CLI represents the command-line interface structure.
type CLI struct {
	LogLevel string `help:"Log level (trace, debug, info, warn, error)." default:"info" env:"DMGCORE_LOG_LEVEL"`

	Info InfoCmd `cmd:"" help:"Display boot image information."`
	Run  RunCmd  `cmd:"" help:"Run a boot image and dump the registers."`
}

// Globals carries state shared by every command.
type Globals struct {
	Log *logrus.Logger
	Out io.Writer
}

// InfoCmd displays boot image information.
type InfoCmd struct {
	Image string `arg:"" type:"existingfile" help:"Path to boot image (.bin, .gz, .zip or .7z)."`
}

// Run executes the info command.
func (c *InfoCmd) Run(g *Globals) error {
	img, err := bootimage.Load(c.Image)
	if err != nil {
		return fmt.Errorf("failed to read boot image: %w", err)
	}

	fmt.Fprintf(g.Out, "Image Information:\n")
	fmt.Fprintf(g.Out, "  Size:           %d bytes\n", img.Len())
	fmt.Fprintf(g.Out, "  Fingerprint:    %s\n", img.FingerprintString())

	header, err := img.Header()
	if err != nil {
		if !errors.Is(err, bootimage.ErrNoHeader) {
			fmt.Fprintf(g.Out, "  Header:         %v\n", err)
		}
		return nil
	}

	fmt.Fprintf(g.Out, "  Title:          %s\n", header.GetTitle())
	fmt.Fprintf(g.Out, "  Cartridge Type: %s (0x%02X)\n", header.CartridgeType, byte(header.CartridgeType))
	fmt.Fprintf(g.Out, "  ROM Size:       %d KiB\n", header.GetROMSizeBytes()/1024)
	fmt.Fprintf(g.Out, "  CGB Flag:       0x%02X\n", header.CGBFlag)
	fmt.Fprintf(g.Out, "  SGB Flag:       0x%02X\n", header.SGBFlag)

	return nil
}

// RunCmd runs a boot image.
type RunCmd struct {
	Image   string `arg:"" type:"existingfile" help:"Path to boot image (.bin, .gz, .zip or .7z)."`
	Windows uint64 `help:"Stop after this many interrupt windows of 1000 cycles (0 runs until an unsupported opcode, which may be never)." default:"${default_windows}" env:"DMGCORE_WINDOWS"`
}

// Run executes the run command.
func (c *RunCmd) Run(g *Globals) error {
	result := runner.Run(c.Image, c.Windows, g.Log)
	if !result.IsSuccess() {
		return result.Error
	}

	fmt.Fprintf(g.Out, "Result: %s\n", result)
	fmt.Fprintf(g.Out, "%s\n", result.Dump)

	return nil
}

// newLogger builds a logger writing plain text lines to out at level, with
// colours when out is a terminal.
func newLogger(out *os.File, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	colors := term.IsTerminal(int(out.Fd())) //nolint:gosec // G115: fd fits in int

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.Formatter = &logrus.TextFormatter{
		ForceColors:      colors,
		DisableColors:    !colors,
		DisableTimestamp: true,
		DisableQuote:     true,
	}
	return l, nil
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name("dmgcore"),
		kong.Description("A Game Boy (DMG) CPU core that runs boot images."),
		kong.UsageOnError(),
		kong.Vars{"default_windows": strconv.Itoa(DefaultWindows)},
	}
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli, parserOptions()...)

	log, err := newLogger(os.Stderr, cli.LogLevel)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&Globals{Log: log, Out: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
