package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Supported() bool { return m.Called().Bool(0) }
func (m *mockAuthenticator) Enrolled() bool  { return m.Called().Bool(0) }

func (m *mockAuthenticator) Authenticate(ctx context.Context) (Outcome, error) {
	args := m.Called(ctx)
	return args.Get(0).(Outcome), args.Error(1)
}

func TestReasonFor(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"user_cancel", "Authentication was cancelled"},
		{"user_fallback", "Passcode fallback selected"},
		{"lockout", "Biometrics locked out due to too many failed attempts"},
		{"lockout_permanent", "Biometrics locked out due to too many failed attempts"},
		{"not_enrolled", "No biometrics enrolled on this device"},
		{"system_cancel", "Authentication failed: system_cancel"},
		{"", "Authentication failed: "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReasonFor(tt.code), "ReasonFor(%q)", tt.code)
	}
}

func TestGate_Unsupported(t *testing.T) {
	a := &mockAuthenticator{}
	a.On("Supported").Return(false)

	g := NewGate(a, nil)
	res := g.Login(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Biometric hardware is not available on this device", res.Reason)
	assert.False(t, g.Available())
	a.AssertNotCalled(t, "Authenticate", mock.Anything)
}

func TestGate_NotEnrolled(t *testing.T) {
	a := &mockAuthenticator{}
	a.On("Supported").Return(true)
	a.On("Enrolled").Return(false)

	res := NewGate(a, nil).Login(context.Background())
	assert.Equal(t, "No biometrics enrolled. Please set up Face ID or fingerprint in device settings", res.Reason)
	require.ErrorIs(t, res.Err(), ErrDenied)
}

func TestGate_Success(t *testing.T) {
	a := &mockAuthenticator{}
	a.On("Supported").Return(true)
	a.On("Enrolled").Return(true)
	a.On("Authenticate", mock.Anything).Return(Outcome{Success: true}, nil)

	g := NewGate(a, nil)
	res := g.Login(context.Background())
	assert.True(t, res.Success)
	require.NoError(t, res.Err())
	assert.True(t, g.Authenticated())
	assert.False(t, g.Authenticating())
}

func TestGate_FailureCodes(t *testing.T) {
	tests := []struct {
		outcome Outcome
		err     error
		want    string
	}{
		{Outcome{Code: CodeUserCancel}, nil, "Authentication was cancelled"},
		{Outcome{Code: CodeLockoutPermanent}, nil, "Biometrics locked out due to too many failed attempts"},
		{Outcome{Code: CodeFailed}, nil, ReasonRetry},
		{Outcome{Code: "hardware_error"}, nil, "Authentication failed: hardware_error"},
		{Outcome{}, nil, ReasonRetry},
		{Outcome{}, errors.New("device busy"), ReasonRetry},
	}
	for _, tt := range tests {
		a := &mockAuthenticator{}
		a.On("Supported").Return(true)
		a.On("Enrolled").Return(true)
		a.On("Authenticate", mock.Anything).Return(tt.outcome, tt.err)

		g := NewGate(a, nil)
		res := g.Login(context.Background())
		assert.False(t, res.Success)
		assert.Equal(t, tt.want, res.Reason)
		assert.False(t, g.Authenticated())
	}
}

func TestGate_Logout(t *testing.T) {
	a := &mockAuthenticator{}
	a.On("Supported").Return(true)
	a.On("Enrolled").Return(true)
	a.On("Authenticate", mock.Anything).Return(Outcome{Success: true}, nil)

	g := NewGate(a, nil)
	calls := 0
	g.OnLogout(func() { calls++ })

	require.True(t, g.Login(context.Background()).Success)
	g.Logout()
	assert.False(t, g.Authenticated())
	assert.Equal(t, 1, calls)
}

func TestGate_ConcurrentLogin(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	a := &mockAuthenticator{}
	a.On("Supported").Return(true)
	a.On("Enrolled").Return(true)
	a.On("Authenticate", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(Outcome{Success: true}, nil).Once()

	g := NewGate(a, nil)
	done := make(chan Result, 1)
	go func() { done <- g.Login(context.Background()) }()
	<-started

	assert.True(t, g.Authenticating())
	res := g.Login(context.Background())
	assert.Equal(t, ErrInProgress.Error(), res.Reason)

	close(release)
	assert.True(t, (<-done).Success)
}
