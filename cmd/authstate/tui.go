package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goliatone/go-auth-state/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Drive the provider from a terminal UI",
	Long:  `Shows the live session state. Keys: l login, r register, o logout, q quit. Actions use the configured demo credentials.`,
	RunE:  withApp(runTUI),
}

func runTUI(ctx context.Context, app *App) error {
	scoped, err := app.provider.Mount(ctx)
	if err != nil {
		return err
	}

	cfg := app.Config()
	return tui.Run(scoped, app.provider, tui.Credentials{
		Email:    cfg.DemoEmail,
		Password: cfg.DemoPassword,
	}, tea.WithAltScreen())
}
