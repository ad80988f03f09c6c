package favorites

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Sternrassler/unsplash-client/pkg/dispatch"
	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/network"
	"github.com/Sternrassler/unsplash-client/pkg/store"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
)

func newRepository() *Repository {
	return NewRepository(store.NewMemoryStore[unsplash.Photo](store.Options{}))
}

func testPhoto(id string) unsplash.Photo {
	return unsplash.Photo{
		ID:         id,
		Author:     unsplash.User{Nickname: "ansel"},
		CreatedAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Resolution: unsplash.Resolution{Width: 4000, Height: 6000},
		Color:      "#0c2626",
		URLs:       unsplash.URLs{Regular: "https://images.unsplash.com/" + id},
	}
}

type fakeLoader struct {
	photos map[string]unsplash.Photo
	calls  int
}

func (f *fakeLoader) Photo(_ context.Context, id string) (unsplash.Photo, error) {
	f.calls++
	photo, ok := f.photos[id]
	if !ok {
		return unsplash.Photo{}, &network.Error{Kind: network.KindClient, StatusCode: 404}
	}
	return photo, nil
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Add(ctx, testPhoto(id)); err != nil {
			t.Fatalf("Add(%s) error: %v", id, err)
		}
	}
	// re-adding keeps the original position
	if err := repo.Add(ctx, testPhoto("a")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	photos, err := repo.Page(ctx, 0, 10)
	if err != nil {
		t.Fatalf("Page() error: %v", err)
	}
	if got := photoIDs(photos); got != "[c b a]" {
		t.Errorf("Page() = %s, want [c b a]", got)
	}

	ok, err := repo.Contains(ctx, "b")
	if err != nil || !ok {
		t.Errorf("Contains(b) = %v, %v", ok, err)
	}

	if err := repo.Remove(ctx, "b"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if ok, _ := repo.Contains(ctx, "b"); ok {
		t.Error("b should be gone")
	}
	if _, err := repo.Get(ctx, "b"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestRepository_Observe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newRepository()

	updates := repo.Observe(ctx, 5)
	_ = repo.Add(ctx, testPhoto("a"))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case photos := <-updates:
			if photoIDs(photos) == "[a]" {
				return
			}
		case <-deadline:
			t.Fatal("never observed the added favorite")
		}
	}
}

func TestDetailService_Load(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()
	loader := &fakeLoader{photos: map[string]unsplash.Photo{"remote": testPhoto("remote")}}
	service := NewDetailService(repo, loader)

	_ = repo.Add(ctx, testPhoto("liked"))

	tests := []struct {
		name      string
		id        string
		wantLiked bool
		wantFrom  Origin
		wantErr   bool
	}{
		{"favorite served locally", "liked", true, OriginFavorites, false},
		{"other photo fetched", "remote", false, OriginRemote, false},
		{"unknown photo", "missing", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := service.Load(ctx, tt.id)
			if tt.wantErr {
				if network.KindOf(err) != network.KindClient {
					t.Errorf("error = %v, want client error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if detail.Liked != tt.wantLiked || detail.Origin != tt.wantFrom || detail.Photo.ID != tt.id {
				t.Errorf("Load() = %+v", detail)
			}
		})
	}

	if loader.calls != 2 {
		t.Errorf("remote calls = %d, want 2", loader.calls)
	}
}

func TestDetailService_LikeUnlike(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()
	service := NewDetailService(repo, &fakeLoader{})

	if err := service.Like(ctx, testPhoto("x")); err != nil {
		t.Fatalf("Like() error: %v", err)
	}
	if ok, _ := repo.Contains(ctx, "x"); !ok {
		t.Error("liked photo should be a favorite")
	}
	if err := service.Unlike(ctx, "x"); err != nil {
		t.Fatalf("Unlike() error: %v", err)
	}
	if ok, _ := repo.Contains(ctx, "x"); ok {
		t.Error("unliked photo should not be a favorite")
	}
}

func settle(t *testing.T, queue *dispatch.Manual) {
	t.Helper()
	if !queue.Await(1, 2*time.Second) {
		t.Fatal("nothing was posted to the queue")
	}
	queue.Drain()
}

type gridResponder struct{ routed []string }

func (r *gridResponder) RouteToDetail(id string) { r.routed = append(r.routed, id) }

func TestCoordinator_Paging(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()
	for i := 0; i < 25; i++ {
		_ = repo.Add(ctx, testPhoto(fmt.Sprintf("f%02d", i)))
	}

	queue := &dispatch.Manual{}
	responders := navigation.NewRegistry[Responder]()
	responder := &gridResponder{}
	c := NewCoordinator(ctx, repo, queue, responders)
	c.SetResponder(responders.Register(responder))

	c.ViewWillAppear()
	settle(t, queue)

	state := c.State()
	if len(state.Cells) != PageSize {
		t.Fatalf("cells = %d, want %d", len(state.Cells), PageSize)
	}
	if state.Cells[0].ID != "f24" {
		t.Errorf("first cell = %s, want newest f24", state.Cells[0].ID)
	}
	if !c.HasMore() {
		t.Error("a full page means more may exist")
	}

	c.WillDisplay(10)
	if c.Loading() {
		t.Fatal("index 10 should not trigger a load")
	}
	c.WillDisplay(16)
	settle(t, queue)

	if got := len(c.State().Cells); got != 25 {
		t.Errorf("cells = %d, want 25", got)
	}
	if c.HasMore() {
		t.Error("a short page ends paging")
	}

	c.Select(24)
	c.Select(99)
	if len(responder.routed) != 1 || responder.routed[0] != "f00" {
		t.Errorf("routed = %v", responder.routed)
	}
}

func TestCoordinator_RefreshDropsSupersededRead(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()
	_ = repo.Add(ctx, testPhoto("a"))

	queue := &dispatch.Manual{}
	c := NewCoordinator(ctx, repo, queue, nil)

	c.ViewWillAppear()
	if !queue.Await(1, 2*time.Second) {
		t.Fatal("first read never completed")
	}
	_ = repo.Add(ctx, testPhoto("b"))
	c.Refresh()
	if !c.State().Refreshing {
		t.Error("Refresh should mark the state refreshing")
	}
	if !queue.Await(2, 2*time.Second) {
		t.Fatal("refresh read never completed")
	}

	var published []State
	c.OnChange(func(s State) { published = append(published, s) })
	queue.Drain()

	if len(published) != 1 {
		t.Fatalf("published %d states, want only the refresh result", len(published))
	}
	if got := len(published[0].Cells); got != 2 {
		t.Errorf("cells = %d, want 2", got)
	}
	if published[0].Refreshing {
		t.Error("refreshing should clear once the reload lands")
	}
}

type detailResponder struct{ dismissed int }

func (r *detailResponder) DismissScene() { r.dismissed++ }

func TestDetailCoordinator(t *testing.T) {
	ctx := context.Background()
	repo := newRepository()
	service := NewDetailService(repo, &fakeLoader{photos: map[string]unsplash.Photo{"p": testPhoto("p")}})
	queue := &dispatch.Manual{}

	d := NewDetailCoordinator(ctx, "p", service, queue, nil)
	d.ToggleFavorite() // nothing loaded yet
	d.Load()
	settle(t, queue)

	model, ok := d.Model()
	if !ok {
		t.Fatal("model not loaded")
	}
	if model.Liked || model.Origin != OriginRemote {
		t.Errorf("model = %+v", model)
	}
	if model.Date != "15 January, 2024" {
		t.Errorf("Date = %q", model.Date)
	}
	if model.Photo != "https://images.unsplash.com/p" {
		t.Errorf("Photo = %q", model.Photo)
	}

	d.ToggleFavorite()
	if model, _ := d.Model(); !model.Liked {
		t.Error("toggle should flip the model immediately")
	}
	waitUntil(t, func() bool { ok, _ := repo.Contains(ctx, "p"); return ok })

	d.ToggleFavorite()
	waitUntil(t, func() bool { ok, _ := repo.Contains(ctx, "p"); return !ok })
}

func TestDetailCoordinator_FailureDismisses(t *testing.T) {
	ctx := context.Background()
	service := NewDetailService(newRepository(), &fakeLoader{})
	queue := &dispatch.Manual{}
	responders := navigation.NewRegistry[DetailResponder]()
	responder := &detailResponder{}

	d := NewDetailCoordinator(ctx, "missing", service, queue, responders)
	d.SetResponder(responders.Register(responder))
	d.Load()
	settle(t, queue)

	if responder.dismissed != 1 {
		t.Errorf("dismissed = %d, want 1", responder.dismissed)
	}
	d.ImageLoadingFailed()
	if responder.dismissed != 2 {
		t.Errorf("dismissed = %d, want 2", responder.dismissed)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(unsplash.Photo{}); got != "Unknown" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func photoIDs(photos []unsplash.Photo) string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return fmt.Sprint(out)
}
