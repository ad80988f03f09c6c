// Command unsplash browses the Unsplash API from the terminal and can serve
// a small JSON API on top of the client core.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "unsplash",
		Usage: "Browse Unsplash photos, searches and favorites",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file (default ~/.config/unsplash-client/config.toml)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			newFeedCommand(),
			newPhotoCommand(),
			newSearchCommand(),
			newFavoritesCommand(),
			newRecentCommand(),
			newServeCommand(),
		},
	}
}
