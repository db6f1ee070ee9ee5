// Package mocks provides mock implementations for testing the session subsystem.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockBackend(ctrl)
//	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(rec, nil)
package mocks

// Generate mock for Backend interface from internal/ports package.
// This creates MockBackend with methods for all Backend interface methods:
// Login, Register
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=backend_mock.go github.com/pentopublic/pentopublic-client/internal/ports Backend

// Generate mock for CredentialStore interface from internal/ports package.
// This creates MockCredentialStore with methods for all CredentialStore interface methods:
// Save, Clear, Load, LoadToken, LoadIdentity, LoadRole
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/pentopublic/pentopublic-client/internal/ports CredentialStore
