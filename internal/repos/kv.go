package repos

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// KeyValueStore is a synchronous string store with localStorage semantics.
// Get reports ok=false when the key holds no value.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// SQLiteKV persists entries in the kv_entries table.
type SQLiteKV struct{ db *sqlx.DB }

func NewSQLiteKV(db *sqlx.DB) *SQLiteKV { return &SQLiteKV{db: db} }

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	var v string
	err := s.db.Get(&v, `SELECT value FROM kv_entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO kv_entries(key, value, updated_at)
		VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func (s *SQLiteKV) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}

// MemoryKV is an in-process store, used by tests and ephemeral runs.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string]string{}} }

func (s *MemoryKV) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

type scopedKV struct {
	inner  KeyValueStore
	prefix string
}

// Scoped namespaces every key of inner under "session:<sid>:".
func Scoped(inner KeyValueStore, sid string) KeyValueStore {
	return &scopedKV{inner: inner, prefix: "session:" + sid + ":"}
}

func (s *scopedKV) Get(key string) (string, bool, error) { return s.inner.Get(s.prefix + key) }
func (s *scopedKV) Set(key, value string) error        { return s.inner.Set(s.prefix+key, value) }
func (s *scopedKV) Remove(key string) error            { return s.inner.Remove(s.prefix + key) }
