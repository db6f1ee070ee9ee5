package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pentopublic/pentopublic-client/internal/adapters/credstore"
	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/mocks"
)

func aliceRecord() domainauth.SessionRecord {
	return domainauth.SessionRecord{
		Token:    "t1",
		Identity: domainauth.Identity{ID: "7", UserName: "alice", Role: domainauth.RoleAuthor},
	}
}

func newServiceWithMemoryStore(t *testing.T) (*SessionService, *mocks.MockBackend, *credstore.Store) {
	t.Helper()
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	store := credstore.New(credstore.Options{KV: credstore.NewMemoryKV()})
	return NewSessionService(SessionServiceOptions{Backend: backend, Store: store}), backend, store
}

func TestSessionService_LoginPersists(t *testing.T) {
	svc, backend, store := newServiceWithMemoryStore(t)
	ctx := context.Background()
	in := domainauth.LoginInput{Identifier: "alice", Secret: "correct"}

	backend.EXPECT().Login(gomock.Any(), in).Return(aliceRecord(), nil)

	rec, err := svc.Login(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, aliceRecord(), rec)

	stored, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "t1", stored.Token)
	assert.Equal(t, domainauth.RoleAuthor, stored.Identity.Role)
}

func TestSessionService_AuthenticateDoesNotPersist(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	store := mocks.NewMockCredentialStore(ctrl)
	svc := NewSessionService(SessionServiceOptions{Backend: backend, Store: store})

	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(aliceRecord(), nil)
	// No store expectations: any call fails the test.

	rec, err := svc.Authenticate(context.Background(), domainauth.LoginInput{Identifier: "alice", Secret: "x"})
	require.NoError(t, err)
	assert.Equal(t, "t1", rec.Token)
}

func TestSessionService_LoginRejected(t *testing.T) {
	svc, backend, store := newServiceWithMemoryStore(t)
	ctx := context.Background()

	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(domainauth.SessionRecord{}, apperrors.Credential("Invalid credentials"))

	_, err := svc.Login(ctx, domainauth.LoginInput{Identifier: "alice", Secret: "wrong"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCredential(err))
	assert.Equal(t, "Invalid credentials", apperrors.Message(err, ""))

	_, ok := store.Load(ctx)
	assert.False(t, ok, "credential store must stay untouched")
}

func TestSessionService_LoginNormalisesErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode apperrors.ErrorCode
		wantMsg  string
	}{
		{"plain error", errors.New("dial tcp: refused"), apperrors.ErrCodeTransport, "Login failed"},
		{"blank credential message", apperrors.Credential(""), apperrors.ErrCodeCredential, "Login failed"},
		{"context cancelled", context.Canceled, apperrors.ErrCodeTransport, "Login failed"},
		{"transport with message", apperrors.Transport("Server unavailable", errors.New("502")), apperrors.ErrCodeTransport, "Server unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backend, _ := newServiceWithMemoryStore(t)
			backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(domainauth.SessionRecord{}, tt.err)

			_, err := svc.Login(context.Background(), domainauth.LoginInput{})
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Equal(t, tt.wantMsg, apperrors.Message(err, ""))
		})
	}
}

func TestSessionService_IncompleteLoginResponse(t *testing.T) {
	missingToken := aliceRecord()
	missingToken.Token = ""
	missingUser := domainauth.SessionRecord{Token: "t1"}
	badRole := aliceRecord()
	badRole.Identity.Role = "Editor"

	for name, rec := range map[string]domainauth.SessionRecord{
		"missing token": missingToken,
		"missing user":  missingUser,
		"bad role":      badRole,
	} {
		t.Run(name, func(t *testing.T) {
			svc, backend, store := newServiceWithMemoryStore(t)
			backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(rec, nil)

			_, err := svc.Login(context.Background(), domainauth.LoginInput{})
			assert.True(t, apperrors.IsCredential(err))
			assert.Equal(t, "Login failed", apperrors.Message(err, ""))
			_, ok := store.Load(context.Background())
			assert.False(t, ok)
		})
	}
}

func TestSessionService_PersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	store := mocks.NewMockCredentialStore(ctrl)
	svc := NewSessionService(SessionServiceOptions{Backend: backend, Store: store})

	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(aliceRecord(), nil)
	store.EXPECT().Save(gomock.Any(), aliceRecord()).Return(errors.New("disk full"))

	_, err := svc.Login(context.Background(), domainauth.LoginInput{Identifier: "alice", Secret: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))
	assert.Equal(t, "Unable to save your session", apperrors.Message(err, ""))
}

func TestSessionService_RegisterNeverTouchesStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockBackend(ctrl)
	store := mocks.NewMockCredentialStore(ctrl)
	svc := NewSessionService(SessionServiceOptions{Backend: backend, Store: store})
	reg := domainauth.Registration{UserName: "bob", Role: domainauth.RoleReader}

	backend.EXPECT().Register(gomock.Any(), reg).Return(domainauth.Confirmation{Message: "ok"}, nil)
	conf, err := svc.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "ok", conf.Message)

	backend.EXPECT().Register(gomock.Any(), reg).Return(domainauth.Confirmation{}, errors.New("boom"))
	_, err = svc.Register(context.Background(), reg)
	assert.True(t, apperrors.IsTransport(err))
	assert.Equal(t, "Registration failed", apperrors.Message(err, ""))
}

func TestSessionService_LogoutAndRestore(t *testing.T) {
	svc, backend, store := newServiceWithMemoryStore(t)
	ctx := context.Background()
	_ = backend // logout never calls the backend

	require.NoError(t, store.Save(ctx, aliceRecord()))
	rec, ok := svc.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, aliceRecord(), rec)

	require.NoError(t, svc.Logout(ctx))
	_, ok = svc.Restore(ctx)
	assert.False(t, ok)
}

func TestSessionService_LogoutClearFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCredentialStore(ctrl)
	svc := NewSessionService(SessionServiceOptions{Backend: mocks.NewMockBackend(ctrl), Store: store})

	store.EXPECT().Clear(gomock.Any()).Return(errors.New("locked"))
	assert.Error(t, svc.Logout(context.Background()))
}
