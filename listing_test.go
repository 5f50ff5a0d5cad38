package diskkit

import (
	"errors"
	"iter"
	"testing"
)

func staticList(paths ...string) iter.Seq2[FileEntry, error] {
	return func(yield func(FileEntry, error) bool) {
		for _, p := range paths {
			if !yield(FileEntry{Path: p}, nil) {
				return
			}
		}
	}
}

func TestCollectList(t *testing.T) {
	entries, err := CollectList(staticList("a.txt", "b/c.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Path != "a.txt" || entries[1].Path != "b/c.txt" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestCollectListStopsAtError(t *testing.T) {
	boom := errors.New("boom")
	seq := func(yield func(FileEntry, error) bool) {
		if !yield(FileEntry{Path: "a"}, nil) {
			return
		}
		yield(FileEntry{}, boom)
	}

	_, err := CollectList(seq)
	if !errors.Is(err, boom) {
		t.Errorf("expected listing error, got %v", err)
	}
}

func TestFilterGlob(t *testing.T) {
	seq := staticList("logs/app.log", "logs/db.log", "logs/sub/deep.log", "data/app.log")

	t.Run("single segment", func(t *testing.T) {
		filtered, err := FilterGlob(seq, "logs/*.log")
		if err != nil {
			t.Fatal(err)
		}
		entries, err := CollectList(filtered)
		if err != nil {
			t.Fatal(err)
		}
		// "*" must not cross a separator
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %v", entries)
		}
	})

	t.Run("double star crosses segments", func(t *testing.T) {
		filtered, err := FilterGlob(seq, "logs/**")
		if err != nil {
			t.Fatal(err)
		}
		entries, err := CollectList(filtered)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %v", entries)
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		if _, err := FilterGlob(seq, "[unclosed"); err == nil {
			t.Error("expected compile error")
		}
	})
}
