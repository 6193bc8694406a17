// Package session holds the identity the client acts as.
//
// A Store is created once per process and handed to every API resource as
// its CredentialSource. Its lifecycle is explicit: Restore at start-up, then
// Login and Logout on user request. Every change is written to the metadata
// repository before the call returns.
package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/schooladmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
)

// Persisted keys.
const (
	KeyAuthToken = "authToken"
	KeyUsername  = "username"
)

// Routes the store asks the navigator to show after login and logout.
const (
	RouteHome  = "/"
	RouteLogin = "/login"
)

// Session is the current identity and its encoded credential.
type Session struct {
	Identity   string
	Credential string
}

// Navigator is told where to go after login and logout.
type Navigator func(route string)

type Store struct {
	mu       sync.RWMutex
	repo     metadata.Repository
	log      logging.Logger
	current  *Session
	navigate Navigator
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{repo: repo, log: log}
}

// OnNavigate registers the callback signalled by Login and Logout.
func (s *Store) OnNavigate(n Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigate = n
}

// EncodeCredential returns base64("identity:secret").
func EncodeCredential(identity, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(identity + ":" + secret))
}

// Restore loads a previously stored session. The state stays empty unless
// both the identity and the credential are present. The credential is not
// checked against the server.
func (s *Store) Restore(ctx context.Context) error {
	identity, okUser, err := s.repo.Get(ctx, KeyUsername)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	token, okToken, err := s.repo.Get(ctx, KeyAuthToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !okUser || !okToken || identity == "" || token == "" {
		s.current = nil
		return nil
	}
	s.current = &Session{Identity: identity, Credential: token}
	s.log.Info(ctx, "session restored", "identity", identity)
	return nil
}

// Login stores identity and the credential derived from secret, then
// signals navigation home. A wrong secret only shows up on the next API call.
func (s *Store) Login(ctx context.Context, identity, secret string) error {
	cred := EncodeCredential(identity, secret)
	if err := s.repo.Set(ctx, map[string]string{KeyAuthToken: cred, KeyUsername: identity}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = &Session{Identity: identity, Credential: cred}
	nav := s.navigate
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "identity", identity)
	if nav != nil {
		nav(RouteHome)
	}
	return nil
}

// Logout forgets the stored session and signals navigation to the login page.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.repo.Delete(ctx, KeyAuthToken, KeyUsername); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	nav := s.navigate
	s.mu.Unlock()

	s.log.Info(ctx, "logged out")
	if nav != nil {
		nav(RouteLogin)
	}
	return nil
}

// Current returns the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Authenticated reports whether an identity is present.
func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// Credential implements api.CredentialSource.
func (s *Store) Credential() (string, bool) {
	cur, ok := s.Current()
	if !ok {
		return "", false
	}
	return cur.Credential, true
}
