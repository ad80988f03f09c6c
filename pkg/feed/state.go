package feed

import (
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
)

// Kind is the phase of the feed screen.
type Kind string

const (
	KindInitial Kind = "initial"
	KindLoading Kind = "loading"
	KindPhotos  Kind = "photos"
	KindEmpty   Kind = "empty"
)

// Cell is what one grid cell needs to render a photo.
type Cell struct {
	ID         string
	Avatar     string
	Username   string
	Photo      string
	Hex        string
	Resolution unsplash.Resolution
}

// CellFromPhoto maps a photo to its cell.
func CellFromPhoto(p unsplash.Photo) Cell {
	return Cell{
		ID:         p.ID,
		Avatar:     p.Author.ProfileImage.Medium,
		Username:   "@" + p.Author.Nickname,
		Photo:      p.URLs.Regular,
		Hex:        p.Color,
		Resolution: p.Resolution,
	}
}

// State is the consolidated view state published after every change.
//
// Cells is set for KindLoading and KindPhotos. Title and Subtitle describe
// KindEmpty.
type State struct {
	Kind       Kind
	Cells      []Cell
	Title      string
	Subtitle   string
	Refreshing bool
}

func cells(photos []unsplash.Photo) []Cell {
	out := make([]Cell, len(photos))
	for i, p := range photos {
		out[i] = CellFromPhoto(p)
	}
	return out
}
