package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "downloads.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndSeen(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	url := "https://music.example.com/watch?v=abc"
	seen, err := store.Seen(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("fresh archive should not contain url")
	}

	if err := store.Record(ctx, Entry{
		URL:        url,
		Title:      "A Track",
		Artist:     "An Artist",
		OutputPath: "/music/A Track.opus",
	}); err != nil {
		t.Fatal(err)
	}

	seen, err = store.Seen(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("recorded url should be seen")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if err := store.Record(ctx, Entry{
			URL:        "https://example.com/" + title,
			Title:      title,
			Artist:     "artist",
			OutputPath: "/music/" + title + ".opus",
		}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "third" || entries[1].Title != "second" {
		t.Fatalf("unexpected order: %s, %s", entries[0].Title, entries[1].Title)
	}
	if entries[0].CompletedAt.IsZero() {
		t.Fatal("completed_at not round-tripped")
	}
}
