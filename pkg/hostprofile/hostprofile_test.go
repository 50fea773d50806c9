package hostprofile

import (
	"testing"

	"itmux/pkg/blobstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	bs, err := blobstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s, err := Open(bs)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Add(Profile{DisplayName: "prod-1", Hostname: "prod1.example.com", Port: 22})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	got, ok := s.Get(p.ID)
	if !ok || got.Hostname != "prod1.example.com" {
		t.Fatalf("Get = %+v, ok=%v", got, ok)
	}
}

func TestResolveEffective_GroupDefaults(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertGroup(Group{Name: "dc1", DefaultUser: "netops", DefaultPort: 2222}); err != nil {
		t.Fatalf("UpsertGroup: %v", err)
	}
	p, _ := s.Add(Profile{DisplayName: "rtr1", Hostname: "rtr1", Group: "dc1"})

	eff := s.ResolveEffective(p)
	if eff.Username != "netops" || eff.Port != 2222 {
		t.Fatalf("eff = %+v", eff)
	}

	p2, _ := s.Add(Profile{DisplayName: "rtr2", Hostname: "rtr2", Group: "dc1", Username: "admin", Port: 22})
	eff2 := s.ResolveEffective(p2)
	if eff2.Username != "admin" || eff2.Port != 22 {
		t.Fatalf("profile override should win: %+v", eff2)
	}
}

func TestFavoritesAndRecents(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.Add(Profile{DisplayName: "a", Hostname: "a"})

	if err := s.SetFavorite(p.ID, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	if favs := s.Favorites(); len(favs) != 1 || favs[0] != p.ID {
		t.Fatalf("favorites = %v", favs)
	}
	if err := s.SetFavorite(p.ID, false); err != nil {
		t.Fatalf("SetFavorite off: %v", err)
	}
	if favs := s.Favorites(); len(favs) != 0 {
		t.Fatalf("favorites after unset = %v", favs)
	}

	if err := s.TouchRecent(p.ID); err != nil {
		t.Fatalf("TouchRecent: %v", err)
	}
	if recents := s.Recents(); len(recents) != 1 || recents[0] != p.ID {
		t.Fatalf("recents = %v", recents)
	}
}

func TestRemove_UnknownIDIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	if err := s.Remove("nope"); err != nil {
		t.Fatalf("Remove unknown id: %v", err)
	}
}

func TestOpen_ReloadsPersistedProfiles(t *testing.T) {
	dir := t.TempDir()
	bs, err := blobstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	s, err := Open(bs)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p, _ := s.Add(Profile{DisplayName: "persisted", Hostname: "h"})

	bs2, err := blobstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore reopen: %v", err)
	}
	s2, err := Open(bs2)
	if err != nil {
		t.Fatalf("Open reopen: %v", err)
	}
	got, ok := s2.Get(p.ID)
	if !ok || got.DisplayName != "persisted" {
		t.Fatalf("reopened store missing profile: %+v, ok=%v", got, ok)
	}
}
