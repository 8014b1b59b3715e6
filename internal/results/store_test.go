package results

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreMirrorsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tournament.db")
	store, err := OpenStore(ctx, path, "run-1")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	for i := 0; i < 4; i++ {
		r, ok := Classify(recordLine(i)[:len(recordLine(i))-1])
		if !ok {
			t.Fatalf("fixture line %d must classify", i)
		}
		if err := store.Observe(r); err != nil {
			t.Fatalf("observe: %v", err)
		}
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 mirrored rows, got %d", n)
	}
}

func TestStoreScopesCountsByRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tournament.db")

	first, err := OpenStore(ctx, path, "run-a")
	if err != nil {
		t.Fatal(err)
	}
	r, _ := Classify("0\tmap\tA\tB\t1\t0\t-1\tfalse")
	if err := first.Observe(r); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := OpenStore(ctx, path, "run-b")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	n, err := second.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("run-b must not see run-a rows, got %d", n)
	}
}
