// Package opts holds state shared by the docfill commands.
package opts

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/tsawler/docfill/config"
)

// RootOpts is filled by the root command before any subcommand runs.
type RootOpts struct {
	ConfigFile string
	Debug      bool

	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	User   *UserLogger
}

// UserLogger prints human oriented status lines.
type UserLogger struct {
	out io.Writer
}

// NewUserLogger returns a UserLogger writing to out.
func NewUserLogger(out io.Writer) *UserLogger {
	return &UserLogger{out: out}
}

// Success reports a completed step.
func (u *UserLogger) Success(format string, args ...any) {
	u.line(color.FgGreen, "✓", format, args...)
}

// Warn reports something the user should look at.
func (u *UserLogger) Warn(format string, args ...any) {
	u.line(color.FgYellow, "!", format, args...)
}

// Fail reports a failed step.
func (u *UserLogger) Fail(format string, args ...any) {
	u.line(color.FgRed, "✗", format, args...)
}

func (u *UserLogger) line(attr color.Attribute, symbol, format string, args ...any) {
	c := color.New(attr)
	fmt.Fprintf(u.out, "%s %s\n", c.Sprint(symbol), fmt.Sprintf(format, args...))
}

// Table renders rows with a header line.
func (u *UserLogger) Table(header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(u.out, s)
	return err
}
