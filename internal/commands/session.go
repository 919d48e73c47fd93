package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactbank/reactbank/internal/app"
	"github.com/reactbank/reactbank/internal/auth"
	"github.com/reactbank/reactbank/internal/config"
	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/logging"
	"github.com/reactbank/reactbank/internal/rates"
)

type rootOptions struct {
	configPath string
	currency   string
	metrics    bool

	app *app.App
	in  *bufio.Reader
}

// input returns the one reader shared by the passcode prompt and the shell.
func (o *rootOptions) input(cmd *cobra.Command) *bufio.Reader {
	if o.in == nil {
		o.in = bufio.NewReader(cmd.InOrStdin())
	}
	return o.in
}

// open loads config and builds the App once per invocation.
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}

	path, err := filepath.Abs(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, app.Options{
		Root:   filepath.Dir(path),
		Logger: logger,
		Prompt: linePrompt(o.input(cmd), cmd.ErrOrStderr()),
	})
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

// openConverted opens the App and selects the --currency flag or the
// configured start-up currency. A failed rate fetch is not an error here:
// the snapshot carries the message and amounts stay in the base currency.
func (o *rootOptions) openConverted(cmd *cobra.Command) (*app.App, error) {
	a, err := o.open(cmd)
	if err != nil {
		return nil, err
	}
	if err := selectCurrency(cmd.Context(), a, o.currency); err != nil {
		return nil, err
	}
	return a, nil
}

func selectCurrency(ctx context.Context, a *app.App, raw string) error {
	var err error
	if raw == "" {
		err = a.SelectInitial(ctx)
	} else {
		var code currency.Code
		code, err = currency.Parse(raw)
		if err != nil {
			return err
		}
		err = a.Store.Select(ctx, code)
	}
	if errors.Is(err, rates.ErrRateFetch) {
		return nil
	}
	return err
}

// requireLogin runs the login gate and fails unless it succeeds.
func requireLogin(ctx context.Context, a *app.App) error {
	return a.Gate.Login(ctx).Err()
}

func linePrompt(in *bufio.Reader, out io.Writer) auth.Prompt {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(out, "Passcode: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return "", auth.ErrPromptCancelled
			}
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}
