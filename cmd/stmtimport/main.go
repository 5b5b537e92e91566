package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/stmtimport/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := newApp(cfg).RunContext(ctx, os.Args); err != nil {
		slog.Error("stmtimport failed", "error", err)
		os.Exit(1)
	}
}

func newApp(cfg config.Config) *cli.App {
	brokerFlag := &cli.StringFlag{
		Name:    "broker",
		Aliases: []string{"b"},
		Usage:   "broker id; detected from the content when empty",
	}

	return &cli.App{
		Name:  "stmtimport",
		Usage: "import brokerage statements into normalized portfolios",
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "parse statement files and print the portfolio as JSON",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{brokerFlag},
				Action:    func(c *cli.Context) error { return runParse(c, cfg) },
			},
			{
				Name:      "detect",
				Usage:     "score a statement file against every broker format",
				ArgsUsage: "FILE",
				Action:    func(c *cli.Context) error { return runDetect(c, cfg) },
			},
			{
				Name:   "brokers",
				Usage:  "list supported brokers",
				Action: func(c *cli.Context) error { return runBrokers(c, cfg) },
			},
			{
				Name:      "export",
				Usage:     "parse statement files and write the portfolio to XLSX or Google Sheets",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					brokerFlag,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "XLSX output path"},
					&cli.BoolFlag{Name: "sheets", Usage: "publish to GOOGLE_SHEETS_ID"},
				},
				Action: func(c *cli.Context) error { return runExport(c, cfg) },
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API and inbox worker against PostgreSQL",
				Action: func(c *cli.Context) error { return runServe(c.Context, cfg) },
			},
		},
	}
}
