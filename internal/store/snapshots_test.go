package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func insert(t *testing.T, st *Store, sheet, key string, at time.Time) *Snapshot {
	t.Helper()
	snap := &Snapshot{
		DocumentID:  "doc",
		SheetName:   sheet,
		FetchedAt:   at,
		Digest:      "d-" + key,
		BlobKey:     key,
		SizeBytes:   42,
		RowCount:    3,
		ColumnCount: 5,
	}
	if err := st.InsertSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return snap
}

func TestInsertAndLatestSnapshot(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 9, 0, 0, 123456789, time.UTC)

	if got, err := st.LatestSnapshot(ctx, "doc", "Sheet1"); err != nil || got != nil {
		t.Fatalf("expected no snapshot, got %+v err=%v", got, err)
	}

	insert(t, st, "Sheet1", "k1", base)
	second := insert(t, st, "Sheet1", "k2", base.Add(time.Minute))
	insert(t, st, "Other", "k3", base.Add(time.Hour))

	got, err := st.LatestSnapshot(ctx, "doc", "Sheet1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatalf("unexpected latest snapshot (-want +got):\n%s", diff)
	}
}

func TestListSnapshots(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	for i, key := range []string{"k1", "k2", "k3"} {
		insert(t, st, "Sheet1", key, base.Add(time.Duration(i)*time.Minute))
	}

	all, err := st.ListSnapshots(ctx, "doc", "Sheet1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, snap := range all {
		keys = append(keys, snap.BlobKey)
	}
	if diff := cmp.Diff([]string{"k3", "k2", "k1"}, keys); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	limited, err := st.ListSnapshots(ctx, "doc", "Sheet1", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(limited))
	}
}

func TestPruneSnapshots(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	insert(t, st, "Sheet1", "old", base)
	insert(t, st, "Sheet1", "shared", base.Add(1*time.Minute))
	insert(t, st, "Sheet1", "shared", base.Add(2*time.Minute))
	insert(t, st, "Sheet1", "new", base.Add(3*time.Minute))

	orphaned, err := st.PruneSnapshots(ctx, "doc", "Sheet1", 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	sort.Strings(orphaned)
	if diff := cmp.Diff([]string{"old"}, orphaned); diff != "" {
		t.Fatalf("unexpected orphaned blobs (-want +got):\n%s", diff)
	}

	left, err := st.ListSnapshots(ctx, "doc", "Sheet1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 2 || left[0].BlobKey != "new" || left[1].BlobKey != "shared" {
		t.Fatalf("unexpected survivors: %+v", left)
	}

	again, err := st.PruneSnapshots(ctx, "doc", "Sheet1", 2)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected no-op prune, got %v err=%v", again, err)
	}
	if _, err := st.PruneSnapshots(ctx, "doc", "Sheet1", 0); err == nil {
		t.Fatal("expected error for keep=0")
	}
}

type fakeRows struct {
	ids    []int64
	keys   []string
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.ids) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*int64) = r.ids[r.pos-1]
	*dest[1].(*string) = r.keys[r.pos-1]
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func TestCollectExpired(t *testing.T) {
	t.Run("drains rows", func(t *testing.T) {
		rows := &fakeRows{ids: []int64{3, 4}, keys: []string{"a", "a"}}
		ids, keys, err := collectExpired(rows)
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
		if diff := cmp.Diff([]int64{3, 4}, ids); diff != "" {
			t.Fatalf("unexpected ids (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]struct{}{"a": {}}, keys); diff != "" {
			t.Fatalf("unexpected keys (-want +got):\n%s", diff)
		}
		if !rows.closed {
			t.Fatal("rows not closed")
		}
	})

	t.Run("iteration error", func(t *testing.T) {
		boom := errors.New("disk I/O error")
		rows := &fakeRows{ids: []int64{3}, keys: []string{"a"}, err: boom}
		ids, keys, err := collectExpired(rows)
		if !errors.Is(err, boom) {
			t.Fatalf("expected iteration error, got %v", err)
		}
		if ids != nil || keys != nil {
			t.Fatalf("expected no partial result, got %v %v", ids, keys)
		}
		if !rows.closed {
			t.Fatal("rows not closed")
		}
	})
}

func TestStoreInfo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	insert(t, st, "Sheet1", "a", base)
	insert(t, st, "Sheet1", "a", base.Add(time.Minute))
	insert(t, st, "Sheet1", "b", base.Add(2*time.Minute))

	info, err := st.StoreInfo(ctx)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	want := Info{SchemaVersion: 2, Snapshots: 3, Blobs: 2}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("unexpected info (-want +got):\n%s", diff)
	}
}
