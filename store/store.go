// Package store provides a persistent cache of parameter search answers,
// keyed by a digest of the searched program and its target.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"
)

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("store closed")

var bucketAnswers = []byte("answers")

// Config holds store configuration options.
type Config struct {
	// Path is the database file.
	Path string

	// NoSync disables fsync after each write.
	NoSync bool

	// Timeout bounds how long Open waits for the file lock.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration for the database at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:    path,
		Timeout: 5 * time.Second,
	}
}

// BoltStore is a solution cache backed by BoltDB.
type BoltStore struct {
	db *bolt.DB

	mu     sync.RWMutex
	closed bool
}

// Open creates or opens the store described by config.
func Open(config Config) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := bolt.Open(config.Path, 0600, &bolt.Options{
		Timeout: config.Timeout,
		NoSync:  config.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAnswers)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucketAnswers, err)
	}
	return &BoltStore{db: db}, nil
}

// Key returns the cache key for searching mem for target.
func Key(mem []int64, target int64) []byte {
	h := blake3.New()
	var b [8]byte
	for _, v := range mem {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		h.Write(b[:])
	}
	// The length separates the program from the target.
	binary.LittleEndian.PutUint64(b[:], uint64(len(mem)))
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], uint64(target))
	h.Write(b[:])
	return h.Sum(nil)
}

// Get returns the answer stored under key and reports whether it exists.
func (s *BoltStore) Get(key []byte) (answer int64, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, false, ErrClosed
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketAnswers).Get(key)
		if len(v) != 8 {
			return nil
		}
		answer, ok = int64(binary.BigEndian.Uint64(v)), true
		return nil
	})
	return answer, ok, err
}

// Put stores answer under key.
func (s *BoltStore) Put(key []byte, answer int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(answer))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAnswers).Put(key, v)
	})
}

// Close closes the underlying database. Closing twice is a no-op.
func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
