// Where: internal/credentials/password.go
// What: Password resolution from environment, stdin, or an interactive prompt.
// Why: Keep secrets out of argument lists and logs; held in memory only.
package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PasswordEnvVar is read when the password source is "env".
const PasswordEnvVar = "FVTT_PASSWORD"

// Source selects where the password comes from.
type Source string

const (
	// SourceInput prompts interactively when stdin is a terminal,
	// otherwise reads a single line from stdin.
	SourceInput Source = "input"
	// SourceRawInput reads stdin until EOF.
	SourceRawInput Source = "raw-input"
	// SourceEnv reads the FVTT_PASSWORD environment variable.
	SourceEnv Source = "env"
)

// ParseSource normalizes a CLI flag value into a Source.
func ParseSource(value string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "input", "prompt", "":
		return SourceInput, nil
	case "raw-input":
		return SourceRawInput, nil
	case "env", "environment":
		return SourceEnv, nil
	}
	return "", fmt.Errorf("invalid password source %q (want input, raw-input, or env)", value)
}

// PromptFunc asks the user for a masked password.
type PromptFunc func(title string) (string, error)

// Reader resolves passwords. Stdin and the prompt are injected so tests
// never touch a real terminal.
type Reader struct {
	Stdin       io.Reader
	Interactive bool
	Prompt      PromptFunc
	LookupEnv   func(string) (string, bool)
}

// Read resolves the password from the given source.
func (r Reader) Read(source Source) (string, error) {
	switch source {
	case SourceEnv:
		lookup := r.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		value, ok := lookup(PasswordEnvVar)
		if !ok {
			return "", fmt.Errorf("environment variable %s is not set", PasswordEnvVar)
		}
		return value, nil

	case SourceRawInput:
		if r.Stdin == nil {
			return "", fmt.Errorf("no input stream available")
		}
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil

	case SourceInput:
		if r.Interactive && r.Prompt != nil {
			return r.Prompt("Password")
		}
		if r.Stdin == nil {
			return "", fmt.Errorf("no input stream available")
		}
		scanner := bufio.NewScanner(r.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read password from stdin: %w", err)
			}
			return "", fmt.Errorf("no password provided on stdin")
		}
		return scanner.Text(), nil
	}
	return "", fmt.Errorf("invalid password source %q", source)
}
