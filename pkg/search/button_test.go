package search

import "testing"

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestButtonState(t *testing.T) {
	tests := []struct {
		name        string
		state       ButtonState
		wantTitle   string
		wantEnabled bool
	}{
		{"hidden", ButtonState{Kind: ButtonHidden}, "", false},
		{"loading", ButtonState{Kind: ButtonLoading}, "", false},
		{"results", Results(42), "Found 42 photos", true},
		{"empty", Results(0), "Nothing was found", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
			if got := tt.state.Enabled(); got != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", got, tt.wantEnabled)
			}
		})
	}
}
