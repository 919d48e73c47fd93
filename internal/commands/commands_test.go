package commands_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reactbank/reactbank/internal/commands"
	"github.com/reactbank/reactbank/internal/config"
)

const (
	ratesBody    = `{"date":"2025-01-01","myr":{"eur":0.20,"gbp":0.17,"jpy":34.61}}`
	testPasscode = "1234"
)

type workspace struct {
	dir    string
	config string
}

// newWorkspace writes a reactbank.yaml whose rate endpoints answer with
// status.
func newWorkspace(t *testing.T, status int, passcode string) workspace {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(ratesBody))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Rates.PrimaryURL = srv.URL
	cfg.Rates.FallbackURL = srv.URL
	cfg.Transactions.RefreshDelay = 0
	cfg.Log.Level = "error"
	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.Auth.PasscodeHash = string(hash)
	}

	path := filepath.Join(dir, config.FileName)
	require.NoError(t, config.Save(path, cfg))
	return workspace{dir: dir, config: path}
}

func runReactbank(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runReactbankContext(t, context.Background(), stdin, args...)
}

func runReactbankContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	root := commands.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}
