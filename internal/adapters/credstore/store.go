// Package credstore persists the active session record as three keys that are
// always written and removed together.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

// Logical key names. They are shared by every medium.
const (
	KeyToken    = "authToken"
	KeyRole     = "userRole"
	KeyIdentity = "userData"
)

// Keys lists the record keys in write order.
func Keys() []string { return []string{KeyToken, KeyRole, KeyIdentity} }

// ErrIncompleteRecord is returned by Save for records that could not back a session.
var ErrIncompleteRecord = errors.New("session record is incomplete")

var _ ports.CredentialStore = (*Store)(nil)

// Options configures a Store.
type Options struct {
	KV     ports.KeyValueStore
	Logger *slog.Logger
	// RejectExpired treats a token that is a JWT with a past exp claim as absent.
	// Opaque tokens are never rejected.
	RejectExpired bool
	// Now is the clock used for expiry checks (defaults to time.Now).
	Now func() time.Time
}

// Store implements ports.CredentialStore on top of any KeyValueStore.
type Store struct {
	kv            ports.KeyValueStore
	logger        *slog.Logger
	rejectExpired bool
	now           func() time.Time
	parser        *jwt.Parser
}

// New creates a Store.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		kv:            opts.KV,
		logger:        logger.With("component", "credential_store"),
		rejectExpired: opts.RejectExpired,
		now:           now,
		parser:        jwt.NewParser(),
	}
}

// Save writes all three keys in one medium operation.
func (s *Store) Save(ctx context.Context, rec domainauth.SessionRecord) error {
	if !rec.Complete() {
		return ErrIncompleteRecord
	}
	data, err := json.Marshal(rec.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.kv.Put(ctx, map[string]string{
		KeyToken:    rec.Token,
		KeyRole:     string(rec.Identity.Role),
		KeyIdentity: string(data),
	}); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

// Clear removes all three keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Keys()...); err != nil {
		return fmt.Errorf("clear session record: %w", err)
	}
	return nil
}

// Load returns the stored record if every key is present and consistent.
func (s *Store) Load(ctx context.Context) (domainauth.SessionRecord, bool) {
	rec, reason := s.load(ctx)
	if reason != "" {
		s.logger.DebugContext(ctx, "stored session ignored", "reason", reason)
		return domainauth.SessionRecord{}, false
	}
	return rec, true
}

// LoadToken returns the token of a valid stored record.
func (s *Store) LoadToken(ctx context.Context) (string, bool) {
	rec, ok := s.Load(ctx)
	return rec.Token, ok
}

// LoadIdentity returns the identity of a valid stored record.
func (s *Store) LoadIdentity(ctx context.Context) (domainauth.Identity, bool) {
	rec, ok := s.Load(ctx)
	return rec.Identity, ok
}

// LoadRole returns the role of a valid stored record.
func (s *Store) LoadRole(ctx context.Context) (domainauth.Role, bool) {
	rec, ok := s.Load(ctx)
	return rec.Identity.Role, ok
}

// load returns a non-empty reason when the record must be treated as absent.
func (s *Store) load(ctx context.Context) (domainauth.SessionRecord, string) {
	values, err := s.kv.Get(ctx, Keys()...)
	if err != nil {
		return domainauth.SessionRecord{}, "read failed: " + err.Error()
	}

	var missing []string
	for _, k := range Keys() {
		if strings.TrimSpace(values[k]) == "" {
			missing = append(missing, k)
		}
	}
	switch len(missing) {
	case 0:
	case len(Keys()):
		return domainauth.SessionRecord{}, "no session stored"
	default:
		return domainauth.SessionRecord{}, "partial record, missing " + strings.Join(missing, ",")
	}

	role, ok := domainauth.ParseRole(values[KeyRole])
	if !ok {
		return domainauth.SessionRecord{}, "stored role outside the role set"
	}
	var id domainauth.Identity
	if err := json.Unmarshal([]byte(values[KeyIdentity]), &id); err != nil {
		return domainauth.SessionRecord{}, "undecodable identity"
	}
	if id.Role != role {
		return domainauth.SessionRecord{}, "identity role disagrees with stored role"
	}

	rec := domainauth.SessionRecord{Token: values[KeyToken], Identity: id}
	if !rec.Complete() {
		return domainauth.SessionRecord{}, "identity without id"
	}
	if s.rejectExpired && s.expired(rec.Token) {
		return domainauth.SessionRecord{}, "token expired"
	}
	return rec, ""
}

// expired reports whether token is a JWT whose exp claim has passed.
// The signature is not verified: the backend remains the authority.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}
