// Where: cmd/fvtt-publish/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"os"

	"github.com/foundry-tools/fvtt-publish/internal/app"
	"github.com/foundry-tools/fvtt-publish/internal/interaction"
)

var stdin = os.Stdin

// buildDependencies constructs all runtime dependencies required by the
// CLI: output streams, the interactive password prompt, and the default
// portal and storage client constructors.
func buildDependencies() app.Dependencies {
	return app.Dependencies{
		Out:            os.Stdout,
		Stdin:          stdin,
		Interactive:    interaction.IsTerminal(stdin),
		PasswordPrompt: app.HuhPasswordPrompt,
	}
}
