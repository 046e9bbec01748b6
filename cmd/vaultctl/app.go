// Package main implements vaultctl, the command-line front end for the
// vault engine.
package main

import (
	"io"
	"os"

	"vaultengine/internal/vaultconfig"

	"golang.org/x/term"
)

// App holds state shared across vaultctl's commands.
type App struct {
	Root        string
	ConfigStore vaultconfig.Store
	ConfigDir   string
	Values      vaultconfig.Values
	Out         io.Writer
	Err         io.Writer
	JSON        bool
}

// IsColor reports whether colored output should be used: enabled when
// stdout is a TTY or CLICOLOR_FORCE=1 is set, disabled when NO_COLOR is
// set.
func (a *App) IsColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") == "1" {
		return true
	}
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return true
	}
	return false
}

// Colorize wraps s in the given ANSI code if color is enabled.
func (a *App) Colorize(s, code string) string {
	if !a.IsColor() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// SuccessColor wraps s in green if color is enabled.
func (a *App) SuccessColor(s string) string { return a.Colorize(s, "32") }

// WarnColor wraps s in orange if color is enabled.
func (a *App) WarnColor(s string) string { return a.Colorize(s, "38;5;214") }

// FaultColor wraps s in red if color is enabled.
func (a *App) FaultColor(s string) string { return a.Colorize(s, "31") }
