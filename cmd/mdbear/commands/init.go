package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdbear/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Name  string `arg:"" help:"Name of the new site/project to create"`
	Force bool   `help:"Write into an existing directory, overwriting default files"`
}

func (i *InitCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("Initializing project: %s ...\n", i.Name)
	files, err := scaffold.Init(i.Name, i.Force)
	for _, f := range files {
		fmt.Printf("  Creating: %s\n", f)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Project initialized!\nPlease run:\n  cd %s\n  mdbear build\n", i.Name)
	return nil
}
