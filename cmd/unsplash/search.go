package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/unsplash-client/pkg/feed"
	"github.com/Sternrassler/unsplash-client/pkg/pagination"
	"github.com/Sternrassler/unsplash-client/pkg/search"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/urfave/cli/v3"
)

func newSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search photos",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "order-by",
				Usage: "relevant or latest",
				Value: unsplash.OrderLatest.Value,
			},
			&cli.StringFlag{
				Name:  "orientation",
				Usage: "any, landscape, portrait or squarish",
				Value: "any",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "any, black_and_white, white, black, yellow, orange, red, purple, magenta, green, teal or blue",
				Value: "any",
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to fetch in parallel",
				Value: 1,
			},
		},
		Action: withApp(runSearch),
	}
}

func runSearch(ctx context.Context, cmd *cli.Command, a *app) error {
	text := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("usage: unsplash search <text>")
	}

	q, err := buildQuery(text, cmd.String("order-by"), cmd.String("orientation"), cmd.String("color"))
	if err != nil {
		return err
	}

	if _, err := a.recents.Create(ctx, q); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to record recent query")
	}

	total, photos, err := searchPages(ctx, a, q, int(cmd.Int("pages")))
	if err != nil && len(photos) == 0 {
		return fmt.Errorf("search %q: %w", q.Text, err)
	}
	if err != nil {
		a.logger.Warn().Err(err).Int("photos", len(photos)).Msg("Showing partial results")
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out, search.Results(total).Title())
	cells := make([]feed.Cell, len(photos))
	for i, p := range photos {
		cells[i] = feed.CellFromPhoto(p)
	}
	return printCells(out, cells)
}

// buildQuery combines text with filters given by value. Empty values keep
// the default selection.
func buildQuery(text, orderBy, orientation, color string) (unsplash.Query, error) {
	b := unsplash.NewQueryBuilder().Text(strings.TrimSpace(text))
	for _, sel := range []struct {
		t     unsplash.FilterType
		value string
	}{
		{unsplash.FilterOrderBy, orderBy},
		{unsplash.FilterOrientation, orientation},
		{unsplash.FilterColor, color},
	} {
		if sel.value == "" {
			continue
		}
		f, err := unsplash.ParseFilter(sel.t, sel.value)
		if err != nil {
			return unsplash.Query{}, err
		}
		b.Filter(f)
	}
	return b.Build(), nil
}

// searchPages fetches pages 1..pages of q in parallel and merges them in
// page order. It returns the total match count reported by the first page.
// On a partial failure the pages before the first gap are returned along
// with the error.
func searchPages(ctx context.Context, a *app, q unsplash.Query, pages int) (int, []unsplash.Photo, error) {
	if pages < 1 {
		return 0, nil, fmt.Errorf("--pages must be at least 1")
	}

	perPage := a.cfg.API.PageSize
	total := 0
	fetcher := pagination.PageFetcherFunc[unsplash.Photo](func(ctx context.Context, page int) ([]unsplash.Photo, int, error) {
		result, err := a.repo.Search(ctx, q, page, perPage)
		if err != nil {
			return nil, 0, err
		}
		if page == 1 {
			total = result.Total
		}
		return result.Photos, result.TotalPages, nil
	})

	cfg := pagination.DefaultConfig()
	cfg.MaxPages = pages
	cfg.Timeout = a.cfg.API.Timeout
	results, err := pagination.NewBatchFetcher[unsplash.Photo](fetcher, cfg).FetchPages(ctx, 1)

	cursor := pagination.NewCursor(1, perPage, unsplash.PhotoID)
	for _, items := range pagination.Ordered(results) {
		cursor.Merge(items)
	}
	return total, cursor.Items(), err
}
