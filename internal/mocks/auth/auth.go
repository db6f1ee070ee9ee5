// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.Backend       = (*FakeBackend)(nil)
	_ ports.KeyValueStore = (*FailingKV)(nil)
)

// FakeBackend simulates the remote auth service with deterministic answers.
type FakeBackend struct {
	LoginFunc    func(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error)
	RegisterFunc func(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error)

	// Hold, when non-nil, blocks every call until it is closed or ctx ends.
	// Tests use it to keep an attempt in flight.
	Hold chan struct{}
	// Entered receives one value per call once the call is in flight.
	Entered chan struct{}

	// Default answer when LoginFunc is nil.
	DefaultRecord domainauth.SessionRecord

	mu            sync.Mutex
	loginCalls    int
	registerCalls int
}

// NewFakeBackend creates a FakeBackend that logs everybody in as DefaultRecord.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		DefaultRecord: domainauth.SessionRecord{
			Token: "fake-token",
			Identity: domainauth.Identity{
				ID:       "1",
				UserName: "fake.user",
				Email:    "fake.user@example.com",
				Role:     domainauth.RoleReader,
			},
		},
	}
}

func (f *FakeBackend) Login(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return domainauth.SessionRecord{}, err
	}
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, in)
	}
	return f.DefaultRecord, nil
}

func (f *FakeBackend) Register(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error) {
	f.mu.Lock()
	f.registerCalls++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return domainauth.Confirmation{}, err
	}
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, reg)
	}
	return domainauth.Confirmation{Message: "Registration successful"}, nil
}

// LoginCalls returns how many times Login was invoked.
func (f *FakeBackend) LoginCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

// RegisterCalls returns how many times Register was invoked.
func (f *FakeBackend) RegisterCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registerCalls
}

func (f *FakeBackend) wait(ctx context.Context) error {
	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	if f.Hold == nil {
		return nil
	}
	select {
	case <-f.Hold:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrMedium is returned by FailingKV for the operations told to fail.
var ErrMedium = errors.New("medium unavailable")

// FailingKV wraps a KeyValueStore and fails selected operations.
type FailingKV struct {
	Inner      ports.KeyValueStore
	FailPut    bool
	FailGet    bool
	FailDelete bool
}

func (f *FailingKV) Put(ctx context.Context, values map[string]string) error {
	if f.FailPut {
		return ErrMedium
	}
	return f.Inner.Put(ctx, values)
}

func (f *FailingKV) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	if f.FailGet {
		return nil, ErrMedium
	}
	return f.Inner.Get(ctx, keys...)
}

func (f *FailingKV) Delete(ctx context.Context, keys ...string) error {
	if f.FailDelete {
		return ErrMedium
	}
	return f.Inner.Delete(ctx, keys...)
}
