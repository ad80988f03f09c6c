package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/unsplash-client/pkg/favorites"
	"github.com/urfave/cli/v3"
)

func newPhotoCommand() *cli.Command {
	return &cli.Command{
		Name:      "photo",
		Usage:     "Show a photo",
		ArgsUsage: "<id>",
		Action:    withApp(runPhoto),
	}
}

func runPhoto(ctx context.Context, cmd *cli.Command, a *app) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: unsplash photo <id>")
	}

	detail, err := a.details.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load photo %s: %w", id, err)
	}
	printDetail(cmd.Root().Writer, detail)
	return nil
}

func printDetail(out io.Writer, d favorites.Detail) {
	p := d.Photo
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Author:      %s (@%s)\n", p.Author.DisplayName(), p.Author.Nickname)
	fmt.Fprintf(out, "Created:     %s\n", favorites.FormatDate(p))
	fmt.Fprintf(out, "Resolution:  %dx%d\n", p.Resolution.Width, p.Resolution.Height)
	fmt.Fprintf(out, "Color:       %s\n", p.Color)
	fmt.Fprintf(out, "URL:         %s\n", p.URLs.Regular)
	fmt.Fprintf(out, "Favorite:    %t\n", d.Liked)
	fmt.Fprintf(out, "Source:      %s\n", d.Origin)
	if p.Description != "" {
		fmt.Fprintf(out, "\n%s\n", p.Description)
	}
}
