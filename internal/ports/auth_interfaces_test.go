package ports_test

import (
	"testing"

	"github.com/pentopublic/pentopublic-client/internal/mocks"
	fakes "github.com/pentopublic/pentopublic-client/internal/mocks/auth"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.Backend = (*mocks.MockBackend)(nil)
	var _ ports.CredentialStore = (*mocks.MockCredentialStore)(nil)
	var _ ports.Backend = (*fakes.FakeBackend)(nil)
	var _ ports.KeyValueStore = (*fakes.FailingKV)(nil)
}
