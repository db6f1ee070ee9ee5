// Package devbackend provides a config-driven, in-process Backend for local development.
package devbackend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/pentopublic/pentopublic-client/internal/domain/auth"
	apperrors "github.com/pentopublic/pentopublic-client/internal/errors"
	"github.com/pentopublic/pentopublic-client/internal/ports"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "Username already exists"
	msgEmailExists        = "Email already registered"
	msgInvalidRole        = "Invalid role"

	defaultTokenTTL = 8 * time.Hour
	issuer          = "pentopublic-dev"
)

var _ ports.Backend = (*Backend)(nil)

// Config controls the dev backend behavior.
type Config struct {
	// Users seeds accounts as "name:secret:Role" entries separated by ";".
	Users string
	// TokenTTL is the lifetime of issued tokens (default 8h when zero).
	TokenTTL time.Duration
	// SigningKey signs issued tokens. A random key is generated when empty.
	SigningKey string
	// HashCost is the bcrypt cost (default bcrypt.DefaultCost when zero).
	HashCost int
	// Now is the clock used for token timestamps (defaults to time.Now).
	Now func() time.Time
}

type account struct {
	identity domainauth.Identity
	hash     []byte
}

// Backend implements ports.Backend entirely in memory.
// Login issues an HS256 JWT; Register adds an account that can log in afterwards.
type Backend struct {
	mu       sync.RWMutex
	accounts map[string]*account // by lower-cased user name
	nextID   int

	key  []byte
	ttl  time.Duration
	cost int
	now  func() time.Time
}

// Claims are the JWT claims issued by the dev backend.
type Claims struct {
	UserName string          `json:"userName"`
	Role     domainauth.Role `json:"role"`
	jwt.RegisteredClaims
}

// New constructs a dev backend from Config.
func New(cfg Config) (*Backend, error) {
	key := cfg.SigningKey
	if key == "" {
		k, err := randomString(32)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		key = k
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	b := &Backend{
		accounts: make(map[string]*account),
		key:      []byte(key),
		ttl:      ttl,
		cost:     cost,
		now:      now,
	}
	if err := b.seed(cfg.Users); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Backend) seed(users string) error {
	for _, entry := range strings.Split(users, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("dev backend: user entry %q must be name:secret:Role", entry)
		}
		role, ok := domainauth.ParseRole(parts[2])
		if !ok {
			return fmt.Errorf("dev backend: user %q has unknown role %q", parts[0], parts[2])
		}
		name := strings.TrimSpace(parts[0])
		if _, err := b.add(domainauth.Identity{UserName: name, Role: role}, parts[1]); err != nil {
			return fmt.Errorf("dev backend: seed %q: %w", name, err)
		}
	}
	return nil
}

// Login verifies the secret and issues a token.
func (b *Backend) Login(ctx context.Context, in domainauth.LoginInput) (domainauth.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.SessionRecord{}, apperrors.Transport(domainauth.MsgLoginFailed, err)
	}

	acct := b.lookup(in.Identifier)
	if acct == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(in.Secret)) != nil {
		return domainauth.SessionRecord{}, apperrors.Credential(msgInvalidCredentials)
	}

	token, err := b.issue(acct.identity)
	if err != nil {
		return domainauth.SessionRecord{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, domainauth.MsgLoginFailed)
	}
	return domainauth.SessionRecord{Token: token, Identity: acct.identity}, nil
}

// Register creates an account. Admin accounts cannot be self-registered.
func (b *Backend) Register(ctx context.Context, reg domainauth.Registration) (domainauth.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Confirmation{}, apperrors.Transport(domainauth.MsgRegistrationFailed, err)
	}
	if reg.Role != domainauth.RoleReader && reg.Role != domainauth.RoleAuthor {
		return domainauth.Confirmation{}, apperrors.Credential(msgInvalidRole)
	}

	id, err := b.add(domainauth.Identity{
		UserName: strings.TrimSpace(reg.UserName),
		Email:    strings.TrimSpace(reg.Email),
		Name:     strings.TrimSpace(reg.Profile.Name),
		Role:     reg.Role,
	}, reg.Password)
	if err != nil {
		return domainauth.Confirmation{}, err
	}
	return domainauth.Confirmation{Message: "Registration successful", UserID: id}, nil
}

// Verify checks a token issued by this backend and returns its claims.
func (b *Backend) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return b.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return claims, nil
}

func (b *Backend) add(id domainauth.Identity, secret string) (domainauth.UserID, error) {
	if id.UserName == "" {
		return "", apperrors.Credential("Username is required")
	}
	if secret == "" {
		return "", apperrors.Credential("Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, domainauth.MsgRegistrationFailed)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(id.UserName)
	if _, exists := b.accounts[key]; exists {
		return "", apperrors.Credential(msgUserExists)
	}
	if id.Email != "" {
		for _, a := range b.accounts {
			if strings.EqualFold(a.identity.Email, id.Email) {
				return "", apperrors.Credential(msgEmailExists)
			}
		}
	}
	b.nextID++
	id.ID = domainauth.UserID(strconv.Itoa(b.nextID))
	b.accounts[key] = &account{identity: id, hash: hash}
	return id.ID, nil
}

// lookup finds an account by user name or email.
func (b *Backend) lookup(identifier string) *account {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if a, ok := b.accounts[strings.ToLower(identifier)]; ok {
		return a
	}
	for _, a := range b.accounts {
		if a.identity.Email != "" && strings.EqualFold(a.identity.Email, identifier) {
			return a
		}
	}
	return nil
}

func (b *Backend) issue(id domainauth.Identity) (string, error) {
	now := b.now()
	claims := Claims{
		UserName: id.UserName,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   string(id.ID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
