package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/qg-labs/qgi/internal/registry"
)

var errNoTerminal = errors.New("no names given and stdin is not a terminal")

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// choiceLabel renders an artifact as a picker entry:
// "@qg-com/date-picker [form] Date input with calendar".
func choiceLabel(a *registry.Artifact) string {
	label := a.Name
	if a.Feature != "" {
		label += " [" + a.Feature + "]"
	}
	if d := strings.TrimSpace(a.Description); d != "" {
		label += " " + d
	}
	return label
}

// artifactOptions builds picker options for names, labelled from the
// catalog's artifacts. Names the catalog no longer has keep a bare label.
func artifactOptions(names []string, artifacts []*registry.Artifact) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(names))
	for _, name := range names {
		label := name
		if a, err := registry.Find(artifacts, name); err == nil {
			label = choiceLabel(a)
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

// chooseNames returns names when given, otherwise asks the user to pick
// at least one of options.
func chooseNames(title string, names []string, options []huh.Option[string]) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("nothing to choose from")
	}
	if !interactive() {
		return nil, errNoTerminal
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Options(options...).
				Value(&selected).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return nil, err
	}
	return selected, nil
}

// confirm asks a yes/no question. Non-interactive sessions and --yes
// proceed without asking.
func confirm(question string, yes bool) (bool, error) {
	if yes || !interactive() {
		return true, nil
	}
	ok := true
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
