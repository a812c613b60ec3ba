package store

import (
	"testing"
	"time"

	"github.com/tovaldes/postmaster/internal/models"
)

func testSession(roomCode string) *models.Session {
	now := time.Now()
	return &models.Session{
		RoomCode:     roomCode,
		Phase:        models.PhaseLobby,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	session := testSession("ABCD23")

	if err := s.Save(session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !s.Exists("ABCD23") {
		t.Error("Exists = false after save")
	}

	found, ok := s.Find("ABCD23")
	if !ok || found != session {
		t.Fatal("Find did not return the stored instance")
	}

	if got := len(s.ListAll()); got != 1 {
		t.Errorf("ListAll = %d sessions", got)
	}

	if !s.Delete("ABCD23") {
		t.Error("Delete = false for stored session")
	}
	if s.Delete("ABCD23") {
		t.Error("second Delete = true")
	}
	if _, ok := s.Find("ABCD23"); ok {
		t.Error("Find succeeded after delete")
	}
}

func TestMemoryStoreListInactive(t *testing.T) {
	s := NewMemoryStore()

	stale := testSession("STALE1")
	stale.LastActivity = time.Now().Add(-3 * time.Hour)
	fresh := testSession("FRESH1")
	_ = s.Save(stale)
	_ = s.Save(fresh)

	inactive := s.ListInactive(time.Now().Add(-2 * time.Hour))
	if len(inactive) != 1 || inactive[0].RoomCode != "STALE1" {
		t.Fatalf("inactive = %v", inactive)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Save(testSession("AAAA22"))
	_ = s.Save(testSession("BBBB33"))

	s.Clear()
	if got := len(s.ListAll()); got != 0 {
		t.Errorf("ListAll = %d after Clear", got)
	}
}
