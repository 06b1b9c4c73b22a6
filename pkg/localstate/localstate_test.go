package localstate

import (
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	s := openStore(t)
	if err := s.PutToken("raw-token"); err != nil {
		t.Fatalf("put token: %v", err)
	}
	got, err := s.Token()
	if err != nil || got != "raw-token" {
		t.Fatalf("token = %q err = %v", got, err)
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatalf("delete token: %v", err)
	}
	if got, _ := s.Token(); got != "" {
		t.Fatalf("token after delete = %q", got)
	}
}

func TestPutEmptyTokenRemoves(t *testing.T) {
	s := openStore(t)
	if err := s.PutToken("raw"); err != nil {
		t.Fatalf("put token: %v", err)
	}
	if err := s.PutToken(""); err != nil {
		t.Fatalf("put empty token: %v", err)
	}
	if got, _ := s.Token(); got != "" {
		t.Fatalf("empty put must remove the token, got %q", got)
	}
}

func TestSelectedBusinessRoundTrip(t *testing.T) {
	s := openStore(t)
	if got, _ := s.SelectedBusiness(); got != "" {
		t.Fatalf("expected no selection, got %q", got)
	}
	if err := s.PutSelectedBusiness("biz-1"); err != nil {
		t.Fatalf("put business: %v", err)
	}
	if got, _ := s.SelectedBusiness(); got != "biz-1" {
		t.Fatalf("business = %q", got)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.PutToken("persisted"); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if got, _ := s2.Token(); got != "persisted" {
		t.Fatalf("token after reopen = %q", got)
	}
}
