package main

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Config holds the CLI settings, loaded from config/app.json and the
// environment.
type Config struct {
	Addr          string `koanf:"addr" json:"addr"`
	DemoEmail     string `koanf:"demo_email" json:"demo_email"`
	DemoPassword  string `koanf:"demo_password" json:"demo_password"`
	TokenSecret   string `koanf:"token_secret" json:"token_secret"`
	TokenTTL      string `koanf:"token_ttl" json:"token_ttl"`
	ActionTimeout string `koanf:"action_timeout" json:"action_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:          ":8572",
		DemoEmail:     "ann@example.com",
		DemoPassword:  "password123",
		TokenTTL:      "24h",
		ActionTimeout: "10s",
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DemoEmail, validation.Required, is.Email),
		validation.Field(&c.DemoPassword, validation.Required, validation.Length(8, 0)),
		validation.Field(&c.TokenTTL, validation.By(durationRule)),
		validation.Field(&c.ActionTimeout, validation.By(durationRule)),
	)
}

// GetTokenTTL returns the parsed token lifetime, zero when unset.
func (c Config) GetTokenTTL() time.Duration {
	return mustDuration(c.TokenTTL)
}

// GetActionTimeout returns the parsed per action timeout, zero when unset.
func (c Config) GetActionTimeout() time.Duration {
	return mustDuration(c.ActionTimeout)
}

func durationRule(value any) error {
	expr, _ := value.(string)
	if expr == "" {
		return nil
	}
	d, err := time.ParseDuration(expr)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func mustDuration(expr string) time.Duration {
	if expr == "" {
		return 0
	}
	d, err := time.ParseDuration(expr)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse duration: expr %s", expr),
		)
	}
	return d
}
