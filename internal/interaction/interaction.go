// Where: internal/interaction/interaction.go
// What: TTY detection for interactive prompting decisions.
// Why: Password input must only prompt when stdin is a real terminal.
package interaction

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
