package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/macropower/alsroute/pkg/rules"
)

// ErrorHandler renders err for fang. Usage errors point at --help, and
// missing or unknown groups point at the groups command.
func ErrorHandler(w io.Writer, styles fang.Styles, err error) {
	mustN(fmt.Fprintln(w, styles.ErrorHeader.String()))
	mustN(fmt.Fprintln(w, lipgloss.NewStyle().MarginLeft(2).Render(err.Error())))
	mustN(fmt.Fprintln(w))

	switch {
	case isUsageError(err):
		printHint(w, styles, "--help", "for usage.")
	case errors.Is(err, ErrGroupRequired), errors.Is(err, rules.ErrUnknownGroup):
		printHint(w, styles, cmdName+" groups", "to list destination groups.")
	}
}

func printHint(w io.Writer, styles fang.Styles, command, rest string) {
	mustN(fmt.Fprintln(w, lipgloss.JoinHorizontal(
		lipgloss.Left,
		styles.ErrorText.UnsetWidth().Render("Try"),
		styles.Program.Flag.Render(command),
		styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render(rest),
	)))
	mustN(fmt.Fprintln(w))
}

// XXX: cobra does not type usage errors.
// See: https://github.com/spf13/cobra/pull/2266
func isUsageError(err error) bool {
	s := err.Error()
	for _, prefix := range []string{
		"flag needs an argument:",
		"unknown flag:",
		"unknown shorthand flag:",
		"unknown command",
		"invalid argument",
		"if any flags in the group",
		"requires at least",
		"accepts ",
	} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustN(_ int, err error) {
	must(err)
}
