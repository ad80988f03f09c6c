package unsplash

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Sternrassler/unsplash-client/pkg/network"
)

// FilterType is a search filter category. Its value is the query parameter
// name.
type FilterType string

const (
	FilterOrderBy     FilterType = "order_by"
	FilterOrientation FilterType = "orientation"
	FilterColor       FilterType = "color"
)

// FilterTypes lists the categories in display order.
var FilterTypes = []FilterType{FilterOrderBy, FilterOrientation, FilterColor}

// Filter is one selectable value of a category. An empty Value means "any"
// and adds no query parameter.
type Filter struct {
	Type  FilterType `json:"type"`
	Value string     `json:"value,omitempty"`
	Text  string     `json:"text"`
	Hex   []string   `json:"hex,omitempty"`
}

// Equal compares filters by category and value.
func (f Filter) Equal(other Filter) bool {
	return f.Type == other.Type && f.Value == other.Value
}

var (
	OrderRelevant = Filter{Type: FilterOrderBy, Value: "relevant", Text: "Relevance"}
	OrderLatest   = Filter{Type: FilterOrderBy, Value: "latest", Text: "Newest"}

	OrientationAny       = Filter{Type: FilterOrientation, Text: "Any"}
	OrientationLandscape = Filter{Type: FilterOrientation, Value: "landscape", Text: "Landscape"}
	OrientationPortrait  = Filter{Type: FilterOrientation, Value: "portrait", Text: "Portrait"}
	OrientationSquarish  = Filter{Type: FilterOrientation, Value: "squarish", Text: "Square"}

	ColorAny           = Filter{Type: FilterColor, Text: "Any"}
	ColorBlackAndWhite = Filter{Type: FilterColor, Value: "black_and_white", Text: "Black and White", Hex: []string{"#000000", "#FFFFFF"}}
	ColorWhite         = Filter{Type: FilterColor, Value: "white", Text: "White", Hex: []string{"#FFFFFF"}}
	ColorBlack         = Filter{Type: FilterColor, Value: "black", Text: "Black", Hex: []string{"#000000"}}
	ColorYellow        = Filter{Type: FilterColor, Value: "yellow", Text: "Yellow", Hex: []string{"#FCDC00"}}
	ColorOrange        = Filter{Type: FilterColor, Value: "orange", Text: "Orange", Hex: []string{"#FE9200"}}
	ColorRed           = Filter{Type: FilterColor, Value: "red", Text: "Red", Hex: []string{"#F44E3B"}}
	ColorPurple        = Filter{Type: FilterColor, Value: "purple", Text: "Purple", Hex: []string{"#7B64FF"}}
	ColorMagenta       = Filter{Type: FilterColor, Value: "magenta", Text: "Magenta", Hex: []string{"#AB149E"}}
	ColorGreen         = Filter{Type: FilterColor, Value: "green", Text: "Green", Hex: []string{"#A4DD00"}}
	ColorTeal          = Filter{Type: FilterColor, Value: "teal", Text: "Teal", Hex: []string{"#68CCCA"}}
	ColorBlue          = Filter{Type: FilterColor, Value: "blue", Text: "Blue", Hex: []string{"#009CE0"}}
)

var catalog = map[FilterType][]Filter{
	FilterOrderBy:     {OrderRelevant, OrderLatest},
	FilterOrientation: {OrientationAny, OrientationLandscape, OrientationPortrait, OrientationSquarish},
	FilterColor: {
		ColorAny, ColorBlackAndWhite, ColorWhite, ColorBlack, ColorYellow, ColorOrange,
		ColorRed, ColorPurple, ColorMagenta, ColorGreen, ColorTeal, ColorBlue,
	},
}

// Filters returns the selectable values of t in display order.
func Filters(t FilterType) []Filter {
	return append([]Filter(nil), catalog[t]...)
}

// ParseFilter looks up a filter by category and value. "any" and "" select
// the empty value.
func ParseFilter(t FilterType, value string) (Filter, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "any" {
		value = ""
	}
	for _, f := range catalog[t] {
		if f.Value == value {
			return f, nil
		}
	}
	return Filter{}, fmt.Errorf("unknown %s filter %q", t, value)
}

// Query is a search request: free text plus at most one filter per category.
type Query struct {
	Text    string                `json:"text"`
	Filters map[FilterType]Filter `json:"filters,omitempty"`
}

// Selected reports whether f is the active filter of its category.
func (q Query) Selected(f Filter) bool {
	active, ok := q.Filters[f.Type]
	if !ok {
		return f.Value == ""
	}
	return active.Equal(f)
}

// Params returns the query parameters of q, without paging.
func (q Query) Params() network.Params {
	params := network.Params{"query": q.Text}
	for t, f := range q.Filters {
		if f.Value != "" {
			params[string(t)] = f.Value
		}
	}
	return params
}

// QueryBuilder accumulates text and filter selections.
// The zero value is not usable; call NewQueryBuilder.
type QueryBuilder struct {
	text    string
	filters map[FilterType]Filter
}

// NewQueryBuilder returns a builder with the default filters: newest first,
// any orientation.
func NewQueryBuilder() *QueryBuilder {
	b := &QueryBuilder{}
	return b.Reset()
}

func defaultFilters() map[FilterType]Filter {
	return map[FilterType]Filter{
		FilterOrderBy:     OrderLatest,
		FilterOrientation: OrientationAny,
	}
}

// Text sets the search text.
func (b *QueryBuilder) Text(text string) *QueryBuilder {
	b.text = text
	return b
}

// Filter replaces the selection of f's category.
func (b *QueryBuilder) Filter(f Filter) *QueryBuilder {
	b.filters[f.Type] = f
	return b
}

// Query loads text and filters from q on top of the current selection.
func (b *QueryBuilder) Query(q Query) *QueryBuilder {
	b.text = q.Text
	maps.Copy(b.filters, q.Filters)
	return b
}

// Reset restores the empty text and default filters.
func (b *QueryBuilder) Reset() *QueryBuilder {
	b.text = ""
	b.filters = defaultFilters()
	return b
}

// Build returns an independent Query.
func (b *QueryBuilder) Build() Query {
	return Query{Text: b.text, Filters: maps.Clone(b.filters)}
}

// FilterGroup is one category with every value and its selection state.
type FilterGroup struct {
	Type    FilterType
	Filters []FilterOption
}

// FilterOption is a filter plus whether it is selected.
type FilterOption struct {
	Filter   Filter
	Selected bool
}

// FilterGroups builds the selectable groups for q.
func FilterGroups(q Query) []FilterGroup {
	groups := make([]FilterGroup, 0, len(FilterTypes))
	for _, t := range FilterTypes {
		group := FilterGroup{Type: t}
		for _, f := range catalog[t] {
			group.Filters = append(group.Filters, FilterOption{Filter: f, Selected: q.Selected(f)})
		}
		groups = append(groups, group)
	}
	return groups
}
