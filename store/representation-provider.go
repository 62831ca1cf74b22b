package store

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/pkg/errors"
)

// RepresentationStore stores the selected representations served for range
// requests, keyed by request path.
//
// Implementations must be thread-safe!
type RepresentationStore interface {
	// Get returns the representation stored under key.
	// The boolean is false if there is none.
	Get(key string) (Representation, bool, error)
	// Put stores the representation under its key, replacing any previous one.
	Put(Representation) error
	// Purge removes the representation stored under key.
	Purge(key string) error
	// Has checks if the specified key exists in the store.
	Has(key string) bool
	// Keys calls the given callback for each key with the given prefix.
	// The prefix is matched byte for byte.
	Keys(prefix string, cb func(string))
}

type Representation struct {
	Key          string
	ContentType  string
	LastModified time.Time
	// ETag is the full entity-tag, quotes included.
	ETag  string
	Bytes []byte
}

type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens a store with the given filename as the db.
// If file name is empty, a new in-memory db is opened.
func NewSQLiteStore(filename string) (SQLiteStore, error) {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return SQLiteStore{}, errors.Wrap(err, "failed to open representation db")
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS representations (
			key TEXT PRIMARY KEY,
			content_type TEXT,
			last_modified INTEGER,
			etag TEXT,
			bytes BLOB
		)`,
		"PRAGMA journal_mode=WAL",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return SQLiteStore{}, errors.Wrap(err, "failed to prepare representation db")
		}
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteStore) Get(key string) (Representation, bool, error) {
	rep := Representation{Key: key}
	var lastModified int64
	err := s.db.QueryRow(
		"SELECT content_type, last_modified, etag, bytes FROM representations WHERE key = ?", key,
	).Scan(&rep.ContentType, &lastModified, &rep.ETag, &rep.Bytes)
	if err == sql.ErrNoRows {
		return Representation{}, false, nil
	}
	if err != nil {
		return Representation{}, false, errors.Wrapf(err, "failed to read representation %s", key)
	}
	rep.LastModified = time.Unix(lastModified, 0).UTC()
	return rep, true, nil
}

func (s SQLiteStore) Put(rep Representation) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO representations
		(key, content_type, last_modified, etag, bytes) VALUES (?, ?, ?, ?, ?)`,
		rep.Key, rep.ContentType, rep.LastModified.Unix(), rep.ETag, rep.Bytes)
	return errors.Wrapf(err, "failed to write representation %s", rep.Key)
}

func (s SQLiteStore) Purge(key string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM representations WHERE key = ?", key)
	return errors.Wrapf(err, "failed to purge representation %s", key)
}

func (s SQLiteStore) Has(key string) bool {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM representations WHERE key = ?", key).Scan(&one)
	return err == nil
}

func (s SQLiteStore) Keys(prefix string, cb func(string)) {
	// byte-exact prefix match, unlike LIKE
	rows, err := s.db.Query(
		"SELECT key FROM representations WHERE substr(key, 1, length(?)) = ? ORDER BY key", prefix, prefix)
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return
		}
		cb(key)
	}
}

// Close closes the underlying db.
func (s SQLiteStore) Close() error {
	return s.db.Close()
}

type MemStore struct {
	mutex *sync.RWMutex
	db    map[string]Representation
}

func NewMemStore() MemStore {
	return MemStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string]Representation),
	}
}

func (m MemStore) Get(key string) (Representation, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	rep, ok := m.db[key]
	return rep, ok, nil
}

func (m MemStore) Put(rep Representation) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[rep.Key] = rep
	return nil
}

func (m MemStore) Purge(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, key)
	return nil
}

func (m MemStore) Has(key string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.db[key]
	return ok
}

func (m MemStore) Keys(prefix string, cb func(string)) {
	m.mutex.RLock()
	keys := make([]string, 0, len(m.db))
	for key := range m.db {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	m.mutex.RUnlock()
	for _, key := range keys {
		cb(key)
	}
}
