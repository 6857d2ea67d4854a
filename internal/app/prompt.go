// Where: internal/app/prompt.go
// What: Interactive masked password prompt using the huh library.
// Why: Keep typed secrets off the screen when stdin is a terminal.
package app

import (
	"github.com/charmbracelet/huh"
)

// HuhPasswordPrompt asks for a secret with echo disabled.
func HuhPasswordPrompt(title string) (string, error) {
	var input string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&input).
		Run()
	if err != nil {
		return "", err
	}
	return input, nil
}
