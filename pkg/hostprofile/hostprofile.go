// Package hostprofile is the persisted registry of connectable hosts: their
// identity, connection defaults, and per-host overrides, plus the
// favorites/recents convenience lists the presentation layer uses to surface
// a host picker. Profiles and state are persisted through blobstore under
// the keys "itmux.hosts" and "itmux.hostState"; nothing here ever touches a
// private-key blob directly (see pkg/credential for that).
package hostprofile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"itmux/pkg/blobstore"
)

// AuthKind is the tagged preference for how a Profile authenticates.
type AuthKind string

const (
	AuthPassword AuthKind = "password"
	AuthKey      AuthKind = "key"
)

// Profile is one connectable host, matching spec.md's "Host profile" entity:
// identity, display name, hostname, port, username, preferred session name,
// authentication preference, color tag, and last-connection timestamp.
type Profile struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"displayName"`
	Hostname        string    `json:"hostname"`
	Port            int       `json:"port"`
	Username        string    `json:"username,omitempty"`
	SessionName     string    `json:"sessionName,omitempty"`
	Auth            AuthKind  `json:"auth"`
	CredentialKeyID string    `json:"credentialKeyId,omitempty"`
	ColorTag        string    `json:"colorTag,omitempty"`
	Group           string    `json:"group,omitempty"`
	JumpHost        string    `json:"jumpHost,omitempty"`
	LastConnected   time.Time `json:"lastConnected,omitempty"`
}

// Group carries connection defaults shared by every profile that references
// it by name, mirroring the teacher's Group/ResolveEffective split.
type Group struct {
	Name        string `json:"name"`
	DefaultUser string `json:"defaultUser,omitempty"`
	DefaultPort int    `json:"defaultPort,omitempty"`
	JumpHost    string `json:"jumpHost,omitempty"`
}

// Effective is a Profile with its Group defaults already resolved.
type Effective struct {
	Profile  Profile
	Username string
	Port     int
	JumpHost string
}

type document struct {
	Profiles []Profile `json:"profiles"`
	Groups   []Group   `json:"groups"`
}

type persistedState struct {
	Favorites []string `json:"favorites,omitempty"`
	Recents   []string `json:"recents,omitempty"`
}

const (
	profilesKey = "itmux.hosts"
	stateKey    = "itmux.hostState"

	defaultRecentsLimit = 100
)

// ErrNotFound is returned when a profile id is unknown.
var ErrNotFound = errors.New("hostprofile: not found")

// Store is the in-memory, persisted collection of profiles and groups. All
// mutating methods persist to the backing blobstore.Store before returning.
type Store struct {
	mu sync.RWMutex

	blobs blobstore.Store

	profiles map[string]Profile
	order    []string // insertion order, for stable listing
	groups   map[string]Group

	favorites []string
	recents   []string
}

// Open loads (or initializes) a Store backed by blobs.
func Open(blobs blobstore.Store) (*Store, error) {
	s := &Store{
		blobs:    blobs,
		profiles: make(map[string]Profile),
		groups:   make(map[string]Group),
	}

	var doc document
	if err := blobstore.GetJSON(blobs, profilesKey, &doc); err != nil {
		return nil, err
	}
	for _, p := range doc.Profiles {
		s.profiles[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	for _, g := range doc.Groups {
		s.groups[g.Name] = g
	}

	var st persistedState
	if err := blobstore.GetJSON(blobs, stateKey, &st); err != nil {
		return nil, err
	}
	s.favorites = st.Favorites
	s.recents = st.Recents

	return s, nil
}

func (s *Store) persistDocumentLocked() error {
	doc := document{
		Profiles: make([]Profile, 0, len(s.order)),
		Groups:   make([]Group, 0, len(s.groups)),
	}
	for _, id := range s.order {
		doc.Profiles = append(doc.Profiles, s.profiles[id])
	}
	for _, g := range s.groups {
		doc.Groups = append(doc.Groups, g)
	}
	return blobstore.PutJSON(s.blobs, profilesKey, doc)
}

func (s *Store) persistStateLocked() error {
	return blobstore.PutJSON(s.blobs, stateKey, persistedState{
		Favorites: s.favorites,
		Recents:   s.recents,
	})
}

// Add creates a new profile, assigning it a fresh UUID, and persists it.
func (s *Store) Add(p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	s.profiles[p.ID] = p
	s.order = append(s.order, p.ID)
	if err := s.persistDocumentLocked(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Update replaces an existing profile by id.
func (s *Store) Update(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	s.profiles[p.ID] = p
	return s.persistDocumentLocked()
}

// Remove deletes a profile by id. Removing an unknown id is not an error
// (mirrors the registry's "logged and ignored" posture for idempotent
// teardown operations).
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return nil
	}
	delete(s.profiles, id)
	out := make([]string, 0, len(s.order))
	for _, oid := range s.order {
		if oid != id {
			out = append(out, oid)
		}
	}
	s.order = out
	return s.persistDocumentLocked()
}

// Get returns a copy of the profile with the given id.
func (s *Store) Get(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// List returns a copy of every profile, in insertion order.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id])
	}
	return out
}

// TouchLastConnected stamps a profile's LastConnected to t and persists it.
func (s *Store) TouchLastConnected(id string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.LastConnected = t
	s.profiles[id] = p
	return s.persistDocumentLocked()
}

// UpsertGroup creates or replaces a Group by name.
func (s *Store) UpsertGroup(g Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.Name] = g
	return s.persistDocumentLocked()
}

// ResolveEffective merges a profile with its group's defaults, following the
// teacher's ResolveEffective precedence: profile field wins, then group
// default, then a hardcoded fallback.
func (s *Store) ResolveEffective(p Profile) Effective {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var grp *Group
	if p.Group != "" {
		if g, ok := s.groups[p.Group]; ok {
			grp = &g
		}
	}

	user := strings.TrimSpace(p.Username)
	if user == "" && grp != nil {
		user = strings.TrimSpace(grp.DefaultUser)
	}

	port := p.Port
	if port <= 0 && grp != nil && grp.DefaultPort > 0 {
		port = grp.DefaultPort
	}
	if port <= 0 {
		port = 22
	}

	jump := strings.TrimSpace(p.JumpHost)
	if jump == "" && grp != nil {
		jump = strings.TrimSpace(grp.JumpHost)
	}

	return Effective{Profile: p, Username: user, Port: port, JumpHost: jump}
}

// SetFavorite sets or clears the favorite flag for a host id and persists it.
func (s *Store) SetFavorite(id string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		for _, x := range s.favorites {
			if x == id {
				return nil
			}
		}
		s.favorites = append(s.favorites, id)
	} else {
		out := s.favorites[:0:0]
		for _, x := range s.favorites {
			if x != id {
				out = append(out, x)
			}
		}
		s.favorites = out
	}
	return s.persistStateLocked()
}

// Favorites returns the current favorite host ids.
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.favorites...)
}

// TouchRecent moves id to the front of the recents list, capped to
// defaultRecentsLimit entries, and persists it.
func (s *Store) TouchRecent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.recents)+1)
	out = append(out, id)
	for _, x := range s.recents {
		if x != id {
			out = append(out, x)
		}
	}
	if len(out) > defaultRecentsLimit {
		out = out[:defaultRecentsLimit]
	}
	s.recents = out
	return s.persistStateLocked()
}

// Recents returns the current most-recently-used host ids, most recent
// first.
func (s *Store) Recents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.recents...)
}
