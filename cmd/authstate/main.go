package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authstate",
	Short: "Session state adapter playground",
	Long:  `authstate mirrors an in-memory authentication backend into a session state and exposes it over HTTP, a terminal UI or a scripted demo.`,
}

func init() {
	rootCmd.AddCommand(serveCmd, tuiCmd, demoCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// withApp builds the App for a command and tears it down afterwards.
func withApp(run func(ctx context.Context, app *App) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		return run(ctx, app)
	}
}
