package main

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	authstate "github.com/goliatone/go-auth-state"
	"github.com/goliatone/go-router"
)

//go:embed views
var viewsFS embed.FS

func newViews() (router.Views, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}

	engine := django.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

// sessionPage renders the session view for the provider stored under key.
// ctx.Render serializes its bind to JSON, which drops the helper funcs, so
// the view is rendered here and sent as is.
func sessionPage(views router.Views, key string) router.HandlerFunc {
	return func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := views.Render(&buf, "session", authstate.TemplateHelpersWithRouter(ctx, key)); err != nil {
			return err
		}
		ctx.SetHeader(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return ctx.Send(buf.Bytes())
	}
}
