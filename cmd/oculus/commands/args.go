package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oculus/oculus/internal/tracker"
)

var negativeNumber = regexp.MustCompile(`^-[0-9]+$`)

// valueFlags take a separate value argument
var valueFlags = map[string]bool{
	"--dir":       true,
	"--backend":   true,
	"--log-level": true,
	"--port":      true,
}

// normalizeArgs lets "oculus -1" through the flag parser by ending flag
// parsing right before the first bare negative number
func normalizeArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if !negativeNumber.MatchString(arg) {
			continue
		}
		if i > 0 && valueFlags[args[i-1]] {
			continue
		}

		out := make([]string, 0, len(args)+1)
		out = append(out, args[:i]...)
		out = append(out, "--")
		return append(out, args[i:]...)
	}
	return args
}

// parseWindowID accepts a decimal id, a 0x-prefixed hex id, or -1 / "none"
// for no window
func parseWindowID(arg string) (int64, error) {
	s := strings.TrimSpace(arg)
	if strings.EqualFold(s, "none") {
		return tracker.NoWindow, nil
	}

	var id int64
	var err error
	if hex := strings.TrimPrefix(strings.ToLower(s), "0x"); hex != strings.ToLower(s) {
		id, err = strconv.ParseInt(hex, 16, 64)
	} else {
		id, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, &usageError{err: fmt.Errorf("invalid window id %q: expected an integer, or -1 for no window", arg)}
	}

	if id < tracker.NoWindow {
		return 0, &usageError{err: fmt.Errorf("invalid window id %d: must be non-negative, or -1 for no window", id)}
	}
	return id, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// noArgs is cobra.NoArgs reporting a usage error
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}
