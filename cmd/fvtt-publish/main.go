// Where: cmd/fvtt-publish/main.go
// What: CLI entrypoint.
// Why: Execute publish commands with configured dependencies.
package main

import (
	"os"

	"github.com/foundry-tools/fvtt-publish/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
