package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted register, logout and login sequence",
	RunE:  withApp(runDemo),
}

type demoStep struct {
	name string
	run  func(ctx context.Context, p *authstate.Provider) error
}

func runDemo(ctx context.Context, app *App) error {
	scoped, err := app.provider.Mount(ctx)
	if err != nil {
		return err
	}

	cfg := app.Config()
	lgr := app.GetLogger("demo")

	steps := []demoStep{
		{name: "register", run: func(ctx context.Context, p *authstate.Provider) error {
			_, err := p.Register(ctx, cfg.DemoEmail, cfg.DemoPassword)
			return err
		}},
		{name: "logout", run: func(ctx context.Context, p *authstate.Provider) error {
			p.Logout(ctx)
			return nil
		}},
		{name: "login with wrong password", run: func(ctx context.Context, p *authstate.Provider) error {
			_, err := p.Login(ctx, cfg.DemoEmail, cfg.DemoPassword+"-wrong")
			return err
		}},
		{name: "login", run: func(ctx context.Context, p *authstate.Provider) error {
			_, err := p.Login(ctx, cfg.DemoEmail, cfg.DemoPassword)
			return err
		}},
		{name: "session expired upstream", run: func(ctx context.Context, p *authstate.Provider) error {
			app.client.Expire()
			return waitFor(ctx, p, func(st authstate.State) bool { return !st.IsAuthenticated })
		}},
	}

	for _, step := range steps {
		// actions resolve the provider the way a component would
		p, err := authstate.UseAuth(scoped)
		if err != nil {
			return err
		}

		if err := step.run(scoped, p); err != nil {
			lgr.Warn("step failed", "step", step.name, "error", err)
		}

		fmt.Println(print.MaybeHighlightJSON(map[string]any{
			"step":  step.name,
			"state": p.State(),
		}))
	}

	return nil
}

// waitFor blocks until cond holds for the provider state.
func waitFor(ctx context.Context, p *authstate.Provider, cond func(authstate.State) bool) error {
	if cond(p.State()) {
		return nil
	}

	matched := make(chan struct{})
	var once sync.Once
	unsubscribe := p.OnChange(func(st authstate.State) {
		if cond(st) {
			once.Do(func() { close(matched) })
		}
	})
	defer unsubscribe()

	if cond(p.State()) {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	select {
	case <-matched:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
