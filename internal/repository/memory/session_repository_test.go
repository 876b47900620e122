package memory

import (
	"fmt"
	"testing"

	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/store"
)

func TestSaveGetDelete(t *testing.T) {
	repo := NewSessionRepository()

	if _, found := repo.Get("missing"); found {
		t.Fatal("expected miss for unknown session")
	}

	repo.Save(&store.Session{ID: "s1", View: "market", Mode: "market_analysis"})

	s, found := repo.Get("s1")
	if !found {
		t.Fatal("expected hit after save")
	}
	if s.View != "market" || s.Mode != "market_analysis" {
		t.Errorf("unexpected session state: %+v", s)
	}

	repo.Delete("s1")
	if _, found := repo.Get("s1"); found {
		t.Error("expected miss after delete")
	}
}

func TestRememberSymbols(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(&store.Session{ID: "s1"})

	repo.RememberSymbols("s1", []string{"BTC", "ETH"})
	repo.RememberSymbols("s1", []string{"BTC"}) // re-mention moves to the end

	s, _ := repo.Get("s1")
	want := []string{"ETH", "BTC"}
	if len(s.RecentSymbols) != 2 {
		t.Fatalf("got %v", s.RecentSymbols)
	}
	for i, sym := range s.RecentSymbols {
		if sym != want[i] {
			t.Errorf("RecentSymbols[%d] = %s, want %s", i, sym, want[i])
		}
	}
}

func TestRememberSymbolsCapped(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(&store.Session{ID: "s1"})

	for i := 0; i < 15; i++ {
		repo.RememberSymbols("s1", []string{fmt.Sprintf("SYM%d", i)})
	}

	s, _ := repo.Get("s1")
	if len(s.RecentSymbols) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(s.RecentSymbols))
	}
	if s.RecentSymbols[9] != "SYM14" {
		t.Errorf("most recent symbol must be last, got %s", s.RecentSymbols[9])
	}
	if s.RecentSymbols[0] != "SYM5" {
		t.Errorf("oldest surviving symbol should be SYM5, got %s", s.RecentSymbols[0])
	}
}

func TestRememberSymbolsUnknownSession(t *testing.T) {
	repo := NewSessionRepository()
	// Must not panic or create a session.
	repo.RememberSymbols("ghost", []string{"BTC"})
	if _, found := repo.Get("ghost"); found {
		t.Error("RememberSymbols must not create sessions")
	}
}
