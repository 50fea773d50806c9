// Package credential manages SSH private-key material referenced by
// host profiles. Key records (metadata only) are persisted through
// blobstore under "itmux.sshKeys"; the private-key bytes themselves go
// through a platform-specific secret Backend and are never written to the
// plain profile store or logged.
package credential

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"itmux/pkg/blobstore"
)

// Key is one stored credential's metadata: identity, human name, a
// fingerprint for display, and a creation timestamp. The private-key blob
// itself lives only in the platform Backend, addressed by ID.
type Key struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Backend is the platform secret store that actually holds private-key
// bytes. Implementations must never surface the secret except via Reveal,
// and must never log it.
type Backend interface {
	Set(id string, secret []byte) error
	Has(id string) (bool, error)
	Reveal(id string) ([]byte, error)
	Delete(id string) error
}

const keysKey = "itmux.sshKeys"

// ErrKeyUnavailable mirrors spec.md's KeyUnavailable error: the referenced
// credential id isn't in the blob store, or the blob isn't a valid
// private-key encoding.
var ErrKeyUnavailable = errors.New("credential: key unavailable")

// Store is the metadata registry plus the secret Backend it delegates
// actual key bytes to.
type Store struct {
	mu sync.RWMutex

	blobs   blobstore.Store
	backend Backend

	keys  map[string]Key
	order []string
}

// Open loads (or initializes) a Store backed by blobs and secured by
// backend.
func Open(blobs blobstore.Store, backend Backend) (*Store, error) {
	s := &Store{blobs: blobs, backend: backend, keys: make(map[string]Key)}

	var doc struct {
		Keys []Key `json:"keys"`
	}
	if err := blobstore.GetJSON(blobs, keysKey, &doc); err != nil {
		return nil, err
	}
	for _, k := range doc.Keys {
		s.keys[k.ID] = k
		s.order = append(s.order, k.ID)
	}
	return s, nil
}

func (s *Store) persistLocked() error {
	doc := struct {
		Keys []Key `json:"keys"`
	}{Keys: make([]Key, 0, len(s.order))}
	for _, id := range s.order {
		doc.Keys = append(doc.Keys, s.keys[id])
	}
	return blobstore.PutJSON(s.blobs, keysKey, doc)
}

// Import registers a new Key named name for the given PEM-encoded private
// key bytes, storing the bytes in the platform Backend and the metadata in
// the blob store.
func (s *Store) Import(name string, pemBlob []byte) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := Key{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Fingerprint: fingerprint(pemBlob),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.backend.Set(k.ID, pemBlob); err != nil {
		return Key{}, fmt.Errorf("credential: store secret: %w", err)
	}
	s.keys[k.ID] = k
	s.order = append(s.order, k.ID)
	if err := s.persistLocked(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// List returns a copy of every known key's metadata (never secret bytes).
func (s *Store) List() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Key, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.keys[id])
	}
	return out
}

// Reveal returns the private-key bytes for id. Returns ErrKeyUnavailable if
// the id is unknown or the backend has no secret for it.
func (s *Store) Reveal(id string) ([]byte, error) {
	s.mu.RLock()
	_, known := s.keys[id]
	s.mu.RUnlock()
	if !known {
		return nil, ErrKeyUnavailable
	}
	secret, err := s.backend.Reveal(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	return secret, nil
}

// Delete removes a key's metadata and its secret from the backend.
// Deleting an unknown id is not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return nil
	}
	if err := s.backend.Delete(id); err != nil {
		return fmt.Errorf("credential: delete secret: %w", err)
	}
	delete(s.keys, id)
	out := make([]string, 0, len(s.order))
	for _, oid := range s.order {
		if oid != id {
			out = append(out, oid)
		}
	}
	s.order = out
	return s.persistLocked()
}

// fingerprint derives a display fingerprint from the raw blob's bytes,
// SHA256/base64 in the same shape OpenSSH prints for `ssh-keygen -lf`,
// without attempting to parse it as a real key (parsing, and rejecting
// malformed encodings, is internal/sshtransport's job at actual dial time).
func fingerprint(pemBlob []byte) string {
	sum := sha256.Sum256(pemBlob)
	return "SHA256:" + strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")
}
