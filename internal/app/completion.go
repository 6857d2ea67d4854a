// Where: internal/app/completion.go
// What: Shell completion command implementation.
// Why: Provide tab completion for bash, zsh, and fish.
package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
)

// CompletionCmd defines the structure for the completion command.
type CompletionCmd struct {
	Bash CompletionBashCmd `cmd:"" help:"Generate bash completion script"`
	Zsh  CompletionZshCmd  `cmd:"" help:"Generate zsh completion script"`
	Fish CompletionFishCmd `cmd:"" help:"Generate fish completion script"`
}

type (
	CompletionBashCmd struct{}
	CompletionZshCmd  struct{}
	CompletionFishCmd struct{}
)

// commandTree lists the visible commands and their subcommands from the
// Kong model, so the scripts never drift from the CLI definition.
func commandTree(cli CLI) ([]string, map[string][]string) {
	parser, _ := kong.New(&cli)

	var commands []string
	subcommands := make(map[string][]string)
	for _, node := range parser.Model.Children {
		if node.Hidden {
			continue
		}
		commands = append(commands, node.Name)
		var subs []string
		for _, sub := range node.Children {
			if !sub.Hidden {
				subs = append(subs, sub.Name)
			}
		}
		if len(subs) > 0 {
			subcommands[node.Name] = subs
		}
	}
	return commands, subcommands
}

func runCompletionBash(cli CLI, out io.Writer) int {
	commands, subcommands := commandTree(cli)

	var caseParts []string
	for cmd, subs := range subcommands {
		caseParts = append(caseParts, fmt.Sprintf(`        %s)
            COMPREPLY=( $(compgen -W "%s" -- "${cur}") )
            return 0
            ;;`, cmd, strings.Join(subs, " ")))
	}

	script := `_fvtt_publish_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"

    case "${prev}" in
%s
    esac

    COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
}
complete -F _fvtt_publish_completion fvtt-publish
`
	fmt.Fprintf(out, script, strings.Join(commands, " "), strings.Join(caseParts, "\n"))
	return 0
}

func runCompletionZsh(cli CLI, out io.Writer) int {
	commands, subcommands := commandTree(cli)

	var caseParts []string
	for cmd, subs := range subcommands {
		caseParts = append(caseParts, fmt.Sprintf(`        %s)
            _values '%s subcommands' %s
            return
            ;;`, cmd, cmd, strings.Join(subs, " ")))
	}

	script := `#compdef fvtt-publish
_fvtt_publish_completion() {
    local cmd="${words[2]}"
    case "${cmd}" in
%s
    esac
    _values 'commands' %s
}
_fvtt_publish_completion "$@"
`
	fmt.Fprintf(out, script, strings.Join(caseParts, "\n"), strings.Join(commands, " "))
	return 0
}

func runCompletionFish(cli CLI, out io.Writer) int {
	commands, subcommands := commandTree(cli)

	var lines []string
	lines = append(lines, fmt.Sprintf(
		`complete -c fvtt-publish -n "not __fish_seen_subcommand_from %s" -a "%s"`,
		strings.Join(commands, " "), strings.Join(commands, " ")))
	for cmd, subs := range subcommands {
		lines = append(lines, fmt.Sprintf(
			`complete -c fvtt-publish -n "__fish_seen_subcommand_from %s" -a "%s"`,
			cmd, strings.Join(subs, " ")))
	}

	fmt.Fprintln(out, strings.Join(lines, "\n"))
	return 0
}
