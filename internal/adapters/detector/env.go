// Package detector picks the log format from the terminal and CI environment.
package detector

import (
	"os"

	"go.trai.ch/monorun/internal/adapters/logger" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// FlagAuto selects the format by environment detection.
const FlagAuto = "auto"

// DetectLogFormat returns the pretty format when stderr is a terminal outside CI, JSON otherwise.
func DetectLogFormat() logger.Format {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv("CI")) //nolint:gosec // Fd fits in int
}

func detect(isTTY bool, ci string) logger.Format {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return logger.FormatJSON
	}
	return logger.FormatPretty
}

// ResolveLogFormat applies the user flag to the auto-detected format.
// flag is one of "auto", "pretty", "json", or empty.
func ResolveLogFormat(autoDetected logger.Format, flag string) (logger.Format, error) {
	switch flag {
	case FlagAuto, "":
		return autoDetected, nil
	case string(logger.FormatPretty):
		return logger.FormatPretty, nil
	case string(logger.FormatJSON):
		return logger.FormatJSON, nil
	default:
		return "", zerr.With(domain.ErrInvalidLogFormat, "format", flag)
	}
}
