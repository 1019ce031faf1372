package pathretention

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// createSnapshot creates a snapshot directory containing one marker file.
func createSnapshot(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
}

func listNames(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read %s: %v", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestPruneKeepsNewest(t *testing.T) {
	root := t.TempDir()
	snapshots := []string{
		"2026-08-24 10:00:00",
		"2026-08-25 10:00:00",
		"2026-08-26 10:00:00",
	}
	for _, name := range snapshots {
		createSnapshot(t, root, name)
	}

	if err := Prune(root, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	got := listNames(t, root)
	want := snapshots[1:]
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("remaining snapshots = %v, want %v", got, want)
	}
}

func TestPruneWithinBoundIsNoop(t *testing.T) {
	root := t.TempDir()
	createSnapshot(t, root, "2026-08-25 10:00:00")
	createSnapshot(t, root, "2026-08-26 10:00:00")

	if err := Prune(root, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if got := listNames(t, root); len(got) != 2 {
		t.Errorf("expected both snapshots kept, got %v", got)
	}
}

func TestPruneMissingRootIsNoop(t *testing.T) {
	if err := Prune(filepath.Join(t.TempDir(), "absent"), 1); err != nil {
		t.Errorf("expected nil for a missing root, got %v", err)
	}
}

func TestPrunePlainFileIsNoop(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Prune(file, 1); err != nil {
		t.Errorf("expected nil for a plain file, got %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("plain file must be left alone: %v", err)
	}
}

func TestPruneSingleEntryIsNoop(t *testing.T) {
	root := t.TempDir()
	createSnapshot(t, root, "2026-08-26 10:00:00")

	// keepCount 1 with a single entry: fewer than 2 entries, nothing happens.
	if err := Prune(root, 1); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if got := listNames(t, root); len(got) != 1 {
		t.Errorf("expected the single snapshot kept, got %v", got)
	}
}

func TestPruneRejectsInvalidKeepCount(t *testing.T) {
	if err := Prune(t.TempDir(), 0); err == nil {
		t.Error("expected an error for keep count below 1")
	}
}

func TestPruneManyOverQuota(t *testing.T) {
	root := t.TempDir()
	names := []string{
		"2026-08-20 10:00:00",
		"2026-08-21 10:00:00",
		"2026-08-22 10:00:00",
		"2026-08-23 10:00:00",
		"2026-08-24 10:00:00",
	}
	for _, name := range names {
		createSnapshot(t, root, name)
	}

	if err := Prune(root, 3); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	got := listNames(t, root)
	want := names[2:]
	if len(got) != len(want) {
		t.Fatalf("remaining = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("remaining[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
