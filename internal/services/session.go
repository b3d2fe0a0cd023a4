package services

import (
	"encoding/json"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
	"zonagamer/internal/repos"
)

// Per-session keys, named after the browser storage they replace.
const (
	AuthTokenKey = "authToken"
	UserDataKey  = "userData"
)

// Sessions reads and writes the auth state of one browser session.
type Sessions struct {
	KV repos.KeyValueStore
}

func (s Sessions) Store(sid string) repos.KeyValueStore { return repos.Scoped(s.KV, sid) }

func (s Sessions) Token(sid string) string {
	tok, ok, err := s.Store(sid).Get(AuthTokenKey)
	if err != nil || !ok {
		return ""
	}
	return tok
}

// CachedUser returns the user data stored at login, normalized.
func (s Sessions) CachedUser(sid string) (domain.User, bool) {
	raw, ok, err := s.Store(sid).Get(UserDataKey)
	if err != nil || !ok || raw == "" {
		return domain.User{}, false
	}
	var rec normalize.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec == nil {
		return domain.User{}, false
	}
	return normalize.User(rec), true
}

func (s Sessions) Begin(sid, token string, u domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	kv := s.Store(sid)
	if err := kv.Set(AuthTokenKey, token); err != nil {
		return err
	}
	return kv.Set(UserDataKey, string(b))
}

func (s Sessions) CacheUser(sid string, u domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Store(sid).Set(UserDataKey, string(b))
}

func (s Sessions) End(sid string) error {
	kv := s.Store(sid)
	if err := kv.Remove(AuthTokenKey); err != nil {
		return err
	}
	return kv.Remove(UserDataKey)
}
