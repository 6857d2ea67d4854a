// Where: internal/app/config_cmd.go
// What: Config command implementation.
// Why: Persist per-user defaults so repeat publishes need fewer flags.
package app

import (
	"fmt"
	"io"

	"github.com/foundry-tools/fvtt-publish/internal/config"
	"github.com/foundry-tools/fvtt-publish/internal/ui"
)

// ConfigCmd groups the defaults-file subcommands.
type ConfigCmd struct {
	Set  ConfigSetCmd  `cmd:"" help:"Set a default value"`
	Show ConfigShowCmd `cmd:"" help:"Show stored defaults"`
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key (username, package_id, portal_url, bucket, region, endpoint, public_base_url)"`
	Value string `arg:"" help:"Value to store"`
}

type ConfigShowCmd struct{}

func runConfigSet(cli CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)

	path, err := config.Path()
	if err != nil {
		console.Error("", err)
		return 1
	}
	cfg, err := config.Load(path)
	if err != nil {
		console.Error("", err)
		return 1
	}
	if err := cfg.Set(cli.Config.Set.Key, cli.Config.Set.Value); err != nil {
		console.Error("", err)
		return 1
	}
	if err := config.Save(path, cfg); err != nil {
		console.Error("", err)
		return 1
	}

	console.Success(fmt.Sprintf("Set %s", cli.Config.Set.Key))
	return 0
}

func runConfigShow(_ CLI, _ Dependencies, out io.Writer) int {
	console := ui.New(out)

	path, err := config.Path()
	if err != nil {
		console.Error("", err)
		return 1
	}
	cfg, err := config.Load(path)
	if err != nil {
		console.Error("", err)
		return 1
	}

	console.Header("🔧", fmt.Sprintf("Defaults (%s)", path))
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		if value == "" {
			value = "(unset)"
		}
		console.Item(key, value)
	}
	return 0
}
