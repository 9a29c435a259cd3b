package cleanup

import (
	"os"
	"path/filepath"
	"testing"
)

func seedFolder(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanPartitionsAndPairs(t *testing.T) {
	dir := seedFolder(t,
		"Artist - Song.opus",
		"Artist - Song.jpg",
		"unrelated-photo.png",
		"notes.txt",
	)

	plan, err := New(nil).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Audio) != 1 || len(plan.Images) != 2 {
		t.Fatalf("unexpected partition: %+v", plan)
	}
	if len(plan.Matched) != 1 || plan.Matched[0].Image != "Artist - Song.jpg" {
		t.Fatalf("unexpected matches: %+v", plan.Matched)
	}
}

func TestMatchedModeNeverSelectsUnrelatedImages(t *testing.T) {
	dir := seedFolder(t, "Some Song.opus", "holiday.png")

	plan, err := New(nil).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if targets := plan.Targets(ModeMatched); len(targets) != 0 {
		t.Fatalf("unrelated image selected: %v", targets)
	}
	if targets := plan.Targets(ModeAll); len(targets) != 1 {
		t.Fatalf("all mode should target every image: %v", targets)
	}
}

func TestMatchIsSymmetricSubstring(t *testing.T) {
	// Image stem contained in audio stem and the reverse both count.
	dir := seedFolder(t, "Artist - Long Song Title.opus", "long song title.jpg", "Artist - Long Song Title (cover art).png")

	plan, err := New(nil).Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Matched) != 2 {
		t.Fatalf("expected both directions to match: %+v", plan.Matched)
	}
}

func TestDeleteRemovesTargetsAndKeepsAudio(t *testing.T) {
	dir := seedFolder(t, "Song.opus", "Song.jpg", "other.png")

	cleaner := New(nil)
	plan, err := cleaner.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	summary := cleaner.Delete(plan, ModeAll)
	if summary.Deleted != 2 || summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "Song.opus")); err != nil {
		t.Fatal("audio file must survive cleanup")
	}
	if _, err := os.Stat(filepath.Join(dir, "Song.jpg")); !os.IsNotExist(err) {
		t.Fatal("image should be gone")
	}
}

func TestDeleteCountsFailuresAndContinues(t *testing.T) {
	dir := seedFolder(t, "Song.opus", "a.jpg", "b.jpg")

	cleaner := New(nil)
	plan, err := cleaner.Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatal(err)
	}

	summary := cleaner.Delete(plan, ModeAll)
	if summary.Deleted != 1 || summary.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
