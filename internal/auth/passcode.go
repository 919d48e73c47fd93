package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasscodeAttempts is how many wrong passcodes lock the authenticator.
const MaxPasscodeAttempts = 5

// ErrPromptCancelled is returned by a Prompt when the user backs out.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompt asks the user for a passcode.
type Prompt func(ctx context.Context) (string, error)

// HashPasscode returns the bcrypt hash stored in config.
func HashPasscode(passcode string) (string, error) {
	if passcode == "" {
		return "", errors.New("passcode must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing passcode: %w", err)
	}
	return string(h), nil
}

// PasscodeAuthenticator checks a typed passcode against a bcrypt hash. It is
// not enrolled when the hash is empty.
type PasscodeAuthenticator struct {
	hash   []byte
	prompt Prompt

	mu       sync.Mutex
	failures int
}

// NewPasscodeAuthenticator creates an authenticator for hash.
func NewPasscodeAuthenticator(hash string, prompt Prompt) *PasscodeAuthenticator {
	return &PasscodeAuthenticator{hash: []byte(hash), prompt: prompt}
}

func (p *PasscodeAuthenticator) Supported() bool { return p.prompt != nil }

func (p *PasscodeAuthenticator) Enrolled() bool { return len(p.hash) > 0 }

func (p *PasscodeAuthenticator) Authenticate(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	locked := p.failures >= MaxPasscodeAttempts
	p.mu.Unlock()
	if locked {
		return Outcome{Code: CodeLockout}, nil
	}

	passcode, err := p.prompt(ctx)
	if errors.Is(err, ErrPromptCancelled) || errors.Is(err, context.Canceled) {
		return Outcome{Code: CodeUserCancel}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("reading passcode: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(p.hash, []byte(passcode))
	switch {
	case err == nil:
		p.mu.Lock()
		p.failures = 0
		p.mu.Unlock()
		return Outcome{Success: true}, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		p.mu.Lock()
		p.failures++
		code := CodeFailed
		if p.failures >= MaxPasscodeAttempts {
			code = CodeLockout
		}
		p.mu.Unlock()
		return Outcome{Code: code}, nil
	default:
		return Outcome{}, fmt.Errorf("checking passcode: %w", err)
	}
}
