package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/Sternrassler/unsplash-client/pkg/favorites"
	"github.com/Sternrassler/unsplash-client/pkg/feed"
	"github.com/Sternrassler/unsplash-client/pkg/unsplash"
	"github.com/urfave/cli/v3"
)

func newFavoritesCommand() *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "Manage favorite photos (persistent with Redis only)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorites, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Zero-based page number",
					},
				},
				Action: withApp(runFavoritesList),
			},
			{
				Name:      "add",
				Usage:     "Fetch a photo and add it to favorites",
				ArgsUsage: "<id>",
				Action:    withApp(runFavoritesAdd),
			},
			{
				Name:      "remove",
				Usage:     "Remove a photo from favorites",
				ArgsUsage: "<id>",
				Action:    withApp(runFavoritesRemove),
			},
		},
		DefaultCommand: "list",
	}
}

func runFavoritesList(ctx context.Context, cmd *cli.Command, a *app) error {
	photos, err := a.favorites.Page(ctx, int(cmd.Int("page")), favorites.PageSize)
	if err != nil {
		return fmt.Errorf("list favorites: %w", err)
	}
	cells := make([]feed.Cell, len(photos))
	for i, p := range photos {
		cells[i] = feed.CellFromPhoto(p)
	}
	return printCells(cmd.Root().Writer, cells)
}

func runFavoritesAdd(ctx context.Context, cmd *cli.Command, a *app) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: unsplash favorites add <id>")
	}

	detail, err := a.details.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load photo %s: %w", id, err)
	}
	if err := a.details.Like(ctx, detail.Photo); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Photo %s added to favorites.\n", id)
	return nil
}

func runFavoritesRemove(ctx context.Context, cmd *cli.Command, a *app) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: unsplash favorites remove <id>")
	}
	if err := a.details.Unlike(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Photo %s removed from favorites.\n", id)
	return nil
}

func newRecentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Manage recent searches (persistent with Redis only)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recent searches, newest first",
				Action: withApp(runRecentList),
			},
			{
				Name:      "delete",
				Usage:     "Delete a recent search",
				ArgsUsage: "<id>",
				Action:    withApp(runRecentDelete),
			},
		},
		DefaultCommand: "list",
	}
}

func runRecentList(ctx context.Context, cmd *cli.Command, a *app) error {
	recents, err := a.recents.List(ctx)
	if err != nil {
		return fmt.Errorf("list recent searches: %w", err)
	}

	out := cmd.Root().Writer
	if len(recents) == 0 {
		fmt.Fprintln(out, "No recent searches.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEXT\tFILTERS\tUPDATED")
	for _, r := range recents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID, r.Query.Text, describeFilters(r.Query), r.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRecentDelete(ctx context.Context, cmd *cli.Command, a *app) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: unsplash recent delete <id>")
	}
	if err := a.recents.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Recent search %s deleted.\n", id)
	return nil
}

func describeFilters(q unsplash.Query) string {
	desc := ""
	for _, t := range unsplash.FilterTypes {
		f, ok := q.Filters[t]
		if !ok || f.Value == "" {
			continue
		}
		if desc != "" {
			desc += ","
		}
		desc += string(t) + "=" + f.Value
	}
	if desc == "" {
		return "-"
	}
	return desc
}
