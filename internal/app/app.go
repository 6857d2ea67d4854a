// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/foundry-tools/fvtt-publish/internal/artifact"
	"github.com/foundry-tools/fvtt-publish/internal/credentials"
	"github.com/foundry-tools/fvtt-publish/internal/portal"
	"github.com/foundry-tools/fvtt-publish/internal/version"
	"github.com/joho/godotenv"
)

// PortalClient is the portal session surface the publish command needs.
// *portal.Client implements it; tests may substitute fakes.
type PortalClient interface {
	Login(ctx context.Context, username, password string) error
	UseSession(token string)
	Publish(ctx context.Context, packageID string, fields portal.VersionFields) (*portal.Result, error)
}

// Dependencies holds all injected dependencies required for CLI command
// execution. This structure enables dependency injection for testing and
// allows swapping implementations of the portal and storage clients.
type Dependencies struct {
	Out             io.Writer
	Stdin           io.Reader
	Interactive     bool
	PasswordPrompt  credentials.PromptFunc
	NewPortalClient func(baseURL string) (PortalClient, error)
	NewS3Client     func(ctx context.Context, region, endpoint string) (artifact.S3API, error)
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	EnvFile string `name:"env-file" help:"Path to .env file"`

	Publish    PublishCmd    `cmd:"" help:"Publish a new package version to the portal"`
	Upload     UploadCmd     `cmd:"" help:"Upload release artifacts to an S3-compatible bucket"`
	Config     ConfigCmd     `cmd:"" name:"config" help:"Manage per-user defaults"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completion script"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.NewPortalClient == nil {
		deps.NewPortalClient = defaultPortalClient
	}
	if deps.NewS3Client == nil {
		deps.NewS3Client = artifact.NewS3Client
	}

	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: fvtt-publish <command> [flags]")
		fmt.Fprintln(out, "Run 'fvtt-publish --help' for available commands.")
		return 1
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else {
		// Default to .env in current directory
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
			}
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"publish":         runPublish,
		"upload <archive>": runUpload,
		"config show":     runConfigShow,
		"completion bash": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionBash(cli, out) },
		"completion zsh":  func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionZsh(cli, out) },
		"completion fish": func(_ CLI, _ Dependencies, out io.Writer) int { return runCompletionFish(cli, out) },
		"version":         func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(cli, out) },
	}

	if handler, ok := exactHandlers[command]; ok {
		return handler(cli, deps, out), true
	}

	if strings.HasPrefix(command, "config set") {
		return runConfigSet(cli, deps, out), true
	}

	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(_ CLI, out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}

func defaultPortalClient(baseURL string) (PortalClient, error) {
	return portal.NewClient(baseURL)
}

// firstNonEmpty returns the first non-empty string, used to layer CLI
// flags over stored config defaults.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
