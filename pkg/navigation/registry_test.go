package navigation

import "testing"

type recorder struct {
	routes []string
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry[*recorder]()
	rec := &recorder{}

	id := reg.Register(rec)
	if id == 0 {
		t.Fatal("Register() returned the zero ID")
	}

	found := reg.Do(id, func(r *recorder) { r.routes = append(r.routes, "detail") })
	if !found || len(rec.routes) != 1 {
		t.Errorf("Do() found=%v routes=%v", found, rec.routes)
	}

	reg.Unregister(id)
	if reg.Do(id, func(r *recorder) { r.routes = append(r.routes, "again") }) {
		t.Error("Do() should miss after Unregister")
	}
	if len(rec.routes) != 1 {
		t.Error("unregistered responder was called")
	}

	if _, ok := reg.Lookup(0); ok {
		t.Error("zero ID should never resolve")
	}
	if other := reg.Register(&recorder{}); other == id {
		t.Error("IDs must not be reused")
	}
}

func TestBannerFunc(t *testing.T) {
	var got Banner
	var p BannerPresenter = BannerFunc(func(b Banner) { got = b })
	p.PresentBanner(Banner{Title: "t", Style: BannerError})
	if got.Title != "t" {
		t.Errorf("got %+v", got)
	}
}
