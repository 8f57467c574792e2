package badger

import (
	"context"
	"testing"

	"github.com/keepsake-dev/keepsake/core"
)

func TestSessionRecentViews(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	for _, id := range []core.ID{1, 2, 3, 4, 5, 6, 7} {
		if _, err := store.Sessions.AppendView(ctx, id); err != nil {
			t.Fatalf("Failed to append view: %v", err)
		}
	}

	recent, err := store.Sessions.RecentViews(ctx, 5)
	if err != nil {
		t.Fatalf("Failed to get recent views: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(recent))
	}
	// Most recent first
	if recent[0].ItemId != 7 || recent[4].ItemId != 3 {
		t.Fatalf("Expected views 7..3, got %d..%d", recent[0].ItemId, recent[4].ItemId)
	}
}

func TestSessionEmptyLog(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	recent, err := store.Sessions.RecentViews(context.Background(), 5)
	if err != nil {
		t.Fatalf("Failed to get recent views: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("Expected empty log, got %d entries", len(recent))
	}
}

func TestSessionPrune(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	for _, id := range []core.ID{1, 2, 3, 4, 5, 6} {
		if _, err := store.Sessions.AppendView(ctx, id); err != nil {
			t.Fatalf("Failed to append view: %v", err)
		}
	}

	if err := store.Sessions.PruneViews(ctx, 2); err != nil {
		t.Fatalf("Failed to prune views: %v", err)
	}

	recent, err := store.Sessions.RecentViews(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get recent views: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 entries after prune, got %d", len(recent))
	}
	if recent[0].ItemId != 6 || recent[1].ItemId != 5 {
		t.Fatalf("Expected the newest entries to survive, got %d and %d", recent[0].ItemId, recent[1].ItemId)
	}
}
