package search

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ButtonKind is the phase of the search button.
type ButtonKind string

const (
	ButtonHidden  ButtonKind = "hidden"
	ButtonLoading ButtonKind = "loading"
	ButtonResults ButtonKind = "results"
	ButtonEmpty   ButtonKind = "empty"
)

// ButtonState drives the search button. Count and Formatted are set for
// ButtonResults.
type ButtonState struct {
	Kind      ButtonKind
	Count     int
	Formatted string
}

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators: 1234 becomes "1,234".
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// Results returns the state for a probe that found n photos.
func Results(n int) ButtonState {
	if n <= 0 {
		return ButtonState{Kind: ButtonEmpty}
	}
	return ButtonState{Kind: ButtonResults, Count: n, Formatted: FormatCount(n)}
}

// Title is the button caption.
func (b ButtonState) Title() string {
	switch b.Kind {
	case ButtonResults:
		return "Found " + b.Formatted + " photos"
	case ButtonEmpty:
		return "Nothing was found"
	default:
		return ""
	}
}

// Enabled reports whether tapping the button submits the search.
func (b ButtonState) Enabled() bool {
	return b.Kind == ButtonResults
}
