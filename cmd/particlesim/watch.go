package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/experiment"
	"github.com/san-kum/particlesim/internal/tui"
	"github.com/spf13/cobra"
)

func watchSystem(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := resolveConfig(cmd, systemArg(args), opts)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	st, err := registry.GetStepper(cfg.Stepper)
	if err != nil {
		return err
	}

	linker := func(sys dynamo.ParticleSystem) ([][2]int, []bool) {
		if sl, ok := sys.(springLinked); ok {
			return linksOf(sl)
		}
		return nil, nil
	}
	title := fmt.Sprintf("%s (seed %d)", cfg.System, cfg.Seed)
	w, err := tui.NewWatch(title, registry.Factory(cfg), st, cfg.Dt, linker)
	if err != nil {
		return err
	}

	p := tea.NewProgram(w,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)
	_, err = p.Run()
	return err
}
