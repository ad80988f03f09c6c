package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Sternrassler/unsplash-client/pkg/feed"
	"github.com/Sternrassler/unsplash-client/pkg/navigation"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/urfave/cli/v3"
)

func newFeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "List the editorial feed",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to load",
				Value: 1,
			},
		},
		Action: withApp(runFeed),
	}
}

func runFeed(ctx context.Context, cmd *cli.Command, a *app) error {
	out := cmd.Root().Writer
	cells, err := loadFeed(ctx, a, int(cmd.Int("pages")), cmd.Root().ErrWriter)
	if err != nil {
		return err
	}
	return printCells(out, cells)
}

// loadFeed drives a feed coordinator on the app queue until pages pages are
// loaded or the feed runs out. Banners are written to banners.
func loadFeed(ctx context.Context, a *app, pages int, banners io.Writer) ([]feed.Cell, error) {
	if pages < 1 {
		return nil, fmt.Errorf("--pages must be at least 1")
	}

	settled := make(chan feed.State, 1)
	presenter := navigation.BannerFunc(func(b navigation.Banner) {
		fmt.Fprintf(banners, "%s: %s\n", b.Title, b.Subtitle)
	})

	var coord *feed.Coordinator
	a.queue.Sync(func() {
		coord = feed.New(ctx, unsplash.NewFetchPhotos(a.repo), presenter, nil, feed.Options{PageSize: a.cfg.API.PageSize})
		coord.OnChange(func(s feed.State) {
			if s.Kind == feed.KindInitial || s.Kind == feed.KindLoading {
				return
			}
			select {
			case <-settled:
			default:
			}
			settled <- s
		})
	})
	defer a.queue.Sync(coord.Close)

	var state feed.State
	for i := 0; i < pages; i++ {
		started := false
		a.queue.Sync(func() {
			if i == 0 {
				coord.ViewLoaded()
			} else {
				coord.LoadMore()
			}
			started = coord.Fetching()
		})
		if started {
			select {
			case state = <-settled:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			select {
			case state = <-settled:
			default:
				return state.Cells, nil
			}
		}

		if state.Kind == feed.KindEmpty {
			return nil, fmt.Errorf("%s: %s", state.Title, state.Subtitle)
		}
		more := false
		a.queue.Sync(func() { more = coord.HasMore() })
		if !more {
			break
		}
	}
	return state.Cells, nil
}

func printCells(out io.Writer, cells []feed.Cell) error {
	if len(cells) == 0 {
		fmt.Fprintln(out, "No photos.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tSIZE\tCOLOR\tURL")
	for _, c := range cells {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\n",
			c.ID, c.Username, c.Resolution.Width, c.Resolution.Height, c.Hex, c.Photo)
	}
	return w.Flush()
}
