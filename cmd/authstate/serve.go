package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-router"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session state and actions over HTTP",
	Long:  `Mounts the provider and exposes an HTML page at GET /auth, GET /auth/session and POST /auth/login, /auth/register and /auth/logout.`,
	RunE:  withApp(runServe),
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(ctx context.Context, app *App) error {
	if _, err := app.provider.Mount(ctx); err != nil {
		return err
	}

	views, err := newViews()
	if err != nil {
		return err
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	withProvider := authstate.ProviderMiddleware(app.provider, authstate.DefaultLocalsKey)

	srv.Router().Get("/auth", sessionPage(views, authstate.DefaultLocalsKey), withProvider)

	ctrl := authstate.NewHTTPController(authstate.HTTPConfig{})
	ctrl.RegisterRoutes(srv.Router().Group("/auth"), withProvider)

	addr := app.Config().Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	lgr := app.GetLogger("serve")
	lgr.Info("listening", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		<-ctx.Done()
	case <-ctx.Done():
	}

	lgr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
