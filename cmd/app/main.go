// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/eventpost/cmd/app/commands"
	"github.com/allisson/eventpost/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "eventpost",
		Usage:   "Event post ingestion worker",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "worker",
				Usage: "Start the event post ingestion worker",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
					return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "enqueue-post",
				Usage: "Store a payload file and enqueue it as an event post",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Required: true,
						Usage:    "Path to the payload file",
					},
					&cli.StringFlag{
						Name:     "project-id",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Project the post is submitted to",
					},
					&cli.IntFlag{
						Name:    "api-version",
						Aliases: []string{"v"},
						Value:   2,
						Usage:   "Client API version of the payload",
					},
					&cli.StringFlag{
						Name:  "content-encoding",
						Value: "",
						Usage: "Payload compression token (e.g., gzip)",
					},
					&cli.StringFlag{
						Name:  "media-type",
						Value: "application/json",
						Usage: "Payload media type",
					},
					&cli.StringFlag{
						Name:  "charset",
						Value: "",
						Usage: "Payload character set (UTF-8 if empty)",
					},
					&cli.BoolFlag{
						Name:  "archive",
						Value: false,
						Usage: "Archive the payload after successful processing",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunEnqueuePost(
						ctx,
						cmd.String("file"),
						cmd.String("project-id"),
						int(cmd.Int("api-version")),
						cmd.String("content-encoding"),
						cmd.String("media-type"),
						cmd.String("charset"),
						cmd.Bool("archive"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
