// Package auth is the login gate in front of the transaction list.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Error codes an Authenticator may report.
const (
	CodeUserCancel       = "user_cancel"
	CodeUserFallback     = "user_fallback"
	CodeLockout          = "lockout"
	CodeLockoutPermanent = "lockout_permanent"
	CodeNotEnrolled      = "not_enrolled"
	CodeFailed           = "authentication_failed"
)

// Reasons shown to the user.
const (
	ReasonUnsupported = "Biometric hardware is not available on this device"
	ReasonNoEnrolment = "No biometrics enrolled. Please set up Face ID or fingerprint in device settings"
	ReasonRetry       = "Authentication failed. Please try again."
)

var (
	// ErrDenied wraps the reason of a failed login.
	ErrDenied = errors.New("authentication denied")

	// ErrInProgress is reported when Login is called while another attempt runs.
	ErrInProgress = errors.New("authentication already in progress")
)

// Outcome is what an Authenticator reports for one attempt.
type Outcome struct {
	Success bool
	Code    string
}

// Authenticator verifies the user.
type Authenticator interface {
	Supported() bool
	Enrolled() bool
	Authenticate(ctx context.Context) (Outcome, error)
}

// Result is the outcome of Gate.Login.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Err returns nil on success and an ErrDenied wrapping the reason otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDenied, r.Reason)
}

// ReasonFor translates an authenticator error code into a user message.
func ReasonFor(code string) string {
	switch code {
	case CodeUserCancel:
		return "Authentication was cancelled"
	case CodeUserFallback:
		return "Passcode fallback selected"
	case CodeLockout, CodeLockoutPermanent:
		return "Biometrics locked out due to too many failed attempts"
	case CodeNotEnrolled:
		return "No biometrics enrolled on this device"
	default:
		return "Authentication failed: " + code
	}
}

// Gate tracks whether the session is authenticated.
type Gate struct {
	auth   Authenticator
	logger *slog.Logger

	mu             sync.Mutex
	authenticated  bool
	authenticating bool
	onLogout       []func()
}

// NewGate creates a Gate in the logged-out state.
func NewGate(a Authenticator, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{auth: a, logger: logger}
}

// Available reports whether Login can succeed at all.
func (g *Gate) Available() bool {
	return g.auth.Supported() && g.auth.Enrolled()
}

// Login runs one authentication attempt.
func (g *Gate) Login(ctx context.Context) Result {
	if !g.auth.Supported() {
		return Result{Reason: ReasonUnsupported}
	}
	if !g.auth.Enrolled() {
		return Result{Reason: ReasonNoEnrolment}
	}

	g.mu.Lock()
	if g.authenticating {
		g.mu.Unlock()
		return Result{Reason: ErrInProgress.Error()}
	}
	g.authenticating = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.authenticating = false
		g.mu.Unlock()
	}()

	out, err := g.auth.Authenticate(ctx)
	if err != nil {
		g.logger.Error("authentication error", slog.Any("error", err))
		return Result{Reason: ReasonRetry}
	}
	if !out.Success {
		reason := ReasonRetry
		if out.Code != "" && out.Code != CodeFailed {
			reason = ReasonFor(out.Code)
		}
		g.logger.Warn("authentication failed", slog.String("code", out.Code))
		return Result{Reason: reason}
	}

	g.mu.Lock()
	g.authenticated = true
	g.mu.Unlock()
	g.logger.Info("authenticated")
	return Result{Success: true}
}

// Authenticated reports whether the last Login succeeded and Logout has not
// been called since.
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// Authenticating reports whether a Login is running.
func (g *Gate) Authenticating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticating
}

// OnLogout registers fn to run on every Logout.
func (g *Gate) OnLogout(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLogout = append(g.onLogout, fn)
}

// Logout clears the session and runs the OnLogout hooks.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.authenticated = false
	hooks := append([]func(){}, g.onLogout...)
	g.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
