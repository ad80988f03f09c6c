package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type item struct {
	Name string `json:"name"`
}

// runStoreContract exercises behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T, opts Options) Store[item]) {
	t.Run("put get", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx := context.Background()

		if err := s.Put(ctx, "a", item{Name: "first"}); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		record, err := s.Get(ctx, "a")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if record.ID != "a" || record.Value.Name != "first" {
			t.Errorf("Get() = %+v", record)
		}
		if record.UpdatedAt.IsZero() {
			t.Error("UpdatedAt should be set")
		}

		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("newest first", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			if err := s.Put(ctx, id, item{Name: id}); err != nil {
				t.Fatalf("Put(%s) error: %v", id, err)
			}
		}
		if err := s.Touch(ctx, "a"); err != nil {
			t.Fatalf("Touch() error: %v", err)
		}

		records, err := s.List(ctx, 0, 10)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if got := ids(records); got != "[a c b]" {
			t.Errorf("List() order = %s, want [a c b]", got)
		}

		if err := s.Touch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Touch(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("paging", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if err := s.Put(ctx, fmt.Sprintf("r%d", i), item{}); err != nil {
				t.Fatalf("Put() error: %v", err)
			}
		}

		tests := []struct {
			page, perPage int
			want          string
		}{
			{0, 2, "[r4 r3]"},
			{1, 2, "[r2 r1]"},
			{2, 2, "[r0]"},
			{3, 2, "[]"},
			{-1, 2, "[]"},
			{0, 0, "[]"},
		}
		for _, tt := range tests {
			records, err := s.List(ctx, tt.page, tt.perPage)
			if err != nil {
				t.Fatalf("List(%d, %d) error: %v", tt.page, tt.perPage, err)
			}
			if got := ids(records); got != tt.want {
				t.Errorf("List(%d, %d) = %s, want %s", tt.page, tt.perPage, got, tt.want)
			}
		}

		n, err := s.Count(ctx)
		if err != nil || n != 5 {
			t.Errorf("Count() = %d, %v", n, err)
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx := context.Background()
		_ = s.Put(ctx, "a", item{Name: "old"})
		_ = s.Put(ctx, "b", item{})
		_ = s.Put(ctx, "a", item{Name: "new"})

		records, _ := s.List(ctx, 0, 10)
		if got := ids(records); got != "[a b]" {
			t.Errorf("List() = %s, want [a b]", got)
		}
		if records[0].Value.Name != "new" {
			t.Errorf("value = %q, want new", records[0].Value.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx := context.Background()
		_ = s.Put(ctx, "a", item{})

		if err := s.Delete(ctx, "a"); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if err := s.Delete(ctx, "a"); err != nil {
			t.Errorf("Delete() of a missing ID should succeed, got %v", err)
		}
		if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after Delete error = %v", err)
		}
		if n, _ := s.Count(ctx); n != 0 {
			t.Errorf("Count() = %d, want 0", n)
		}
	})

	t.Run("limit evicts oldest", func(t *testing.T) {
		s := newStore(t, Options{Limit: 3})
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			_ = s.Put(ctx, fmt.Sprintf("r%d", i), item{})
		}

		records, _ := s.List(ctx, 0, 10)
		if got := ids(records); got != "[r4 r3 r2]" {
			t.Errorf("List() = %s, want [r4 r3 r2]", got)
		}
		if _, err := s.Get(ctx, "r0"); !errors.Is(err, ErrNotFound) {
			t.Error("evicted record should be gone")
		}
	})

	t.Run("observe", func(t *testing.T) {
		s := newStore(t, Options{})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_ = s.Put(ctx, "a", item{})
		updates := s.Observe(ctx, 10)

		if got := ids(receive(t, updates)); got != "[a]" {
			t.Fatalf("initial snapshot = %s, want [a]", got)
		}

		_ = s.Put(ctx, "b", item{})
		waitFor(t, updates, "[b a]")

		_ = s.Delete(ctx, "a")
		waitFor(t, updates, "[b]")

		cancel()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("channel not closed after cancel")
			}
		}
	})
}

func ids[T any](records []Record[T]) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return fmt.Sprint(out)
}

func receive(t *testing.T, ch <-chan []Record[item]) []Record[item] {
	t.Helper()
	select {
	case records, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return records
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

// waitFor reads snapshots until one matches want. Intermediate snapshots may
// be skipped or repeated.
func waitFor(t *testing.T, ch <-chan []Record[item], want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case records, ok := <-ch:
			if !ok {
				t.Fatal("channel closed")
			}
			if ids(records) == want {
				return
			}
		case <-deadline:
			t.Fatalf("never observed %s", want)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T, opts Options) Store[item] {
		return NewMemoryStore[item](opts)
	})
}

func TestMemoryStore_Clock(t *testing.T) {
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	s := NewMemoryStore[item](Options{Now: func() time.Time { return fixed }})
	_ = s.Put(context.Background(), "a", item{})

	record, _ := s.Get(context.Background(), "a")
	if !record.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", record.UpdatedAt, fixed)
	}
}
