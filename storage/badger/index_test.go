package badger

import (
	"context"
	"testing"

	"github.com/keepsake-dev/keepsake/core"
)

func TestSearchContent(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	fragments := []*core.Fragment{
		{ItemId: 1, Seq: 0, Body: "exact", Vector: []float32{1, 0, 0}},
		{ItemId: 2, Seq: 0, Body: "close", Vector: []float32{0.9, 0.1, 0}},
		{ItemId: 3, Seq: 0, Body: "orthogonal", Vector: []float32{0, 1, 0}},
		{ItemId: 4, Seq: 0, Body: "not embedded yet"},
	}
	if _, err := store.Fragments.AddFragments(ctx, fragments...); err != nil {
		t.Fatalf("Failed to add fragments: %v", err)
	}

	results, err := store.Backend.SearchContent(ctx, []float32{1, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search content: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 matches above threshold, got %d", len(results))
	}
	if results[0].Fragment.Body != "exact" {
		t.Fatalf("Expected best match first, got %q", results[0].Fragment.Body)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected matches ordered by similarity descending")
	}
}

func TestSearchMetadataSkipsUnenriched(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	items := []*core.Item{
		{Kind: core.KindText, MetaVector: []float32{1, 0}},
		{Kind: core.KindText}, // not enriched, no metadata vector
	}
	if _, err := store.Items.AddItems(ctx, items...); err != nil {
		t.Fatalf("Failed to add items: %v", err)
	}

	results, err := store.Backend.SearchMetadata(ctx, []float32{1, 0}, 0.0, 10)
	if err != nil {
		t.Fatalf("Failed to search metadata: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(results))
	}
	if results[0].Item.Id != items[0].Id {
		t.Fatalf("Expected the enriched item, got %d", results[0].Item.Id)
	}
}

func TestSearchLexical(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	fragments := []*core.Fragment{
		{ItemId: 1, Seq: 0, Body: "the garbage collector pauses the program"},
		{ItemId: 2, Seq: 0, Body: "garbage in, garbage out"},
		{ItemId: 3, Seq: 0, Body: "nothing relevant here"},
	}
	if _, err := store.Fragments.AddFragments(ctx, fragments...); err != nil {
		t.Fatalf("Failed to add fragments: %v", err)
	}

	results, err := store.Backend.SearchLexical(ctx, []string{"garbage", "collector"}, 10)
	if err != nil {
		t.Fatalf("Failed to search lexical: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(results))
	}
	// Matching both terms beats repeating one
	if results[0].Fragment.ItemId != 1 {
		t.Fatalf("Expected fragment with both terms first, got item %d", results[0].Fragment.ItemId)
	}
	for _, r := range results {
		if r.Score <= 0 {
			t.Fatalf("Expected positive BM25 scores, got %f", r.Score)
		}
	}
}

func TestSearchLexicalNoTerms(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	results, err := store.Backend.SearchLexical(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("Failed to search lexical: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected no matches for empty query, got %d", len(results))
	}
}
