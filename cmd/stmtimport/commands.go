package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/stmtimport/internal/broker"
	"github.com/mtlprog/stmtimport/internal/config"
	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/export"
	"github.com/mtlprog/stmtimport/internal/importer"
)

func newImporter(cfg config.Config) *importer.Service {
	return importer.NewService(broker.NewRegistry(), importer.WithConcurrency(cfg.ParseConcurrency))
}

func readFiles(paths []string) ([]domain.ImportFileData, error) {
	if len(paths) == 0 {
		return nil, cli.Exit("at least one FILE is required", 2)
	}
	files := make([]domain.ImportFileData, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		files = append(files, domain.ImportFileData{Name: filepath.Base(p), Content: content})
	}
	return files, nil
}

func parseArgs(c *cli.Context, cfg config.Config) (importer.Result, error) {
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return importer.Result{}, err
	}
	return newImporter(cfg).ParseFiles(c.Context, files, domain.BrokerID(c.String("broker")))
}

func runParse(c *cli.Context, cfg config.Config) error {
	res, err := parseArgs(c, cfg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runDetect(c *cli.Context, cfg config.Config) error {
	files, err := readFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	id, scores, err := newImporter(cfg).DetectFile(files[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "BROKER\tSCORE\tHITS\n")
	for _, s := range scores {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Broker, s.Score, strings.Join(s.Hits, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "detected: %s\n", id)
	return err
}

func runBrokers(c *cli.Context, cfg config.Config) error {
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tREGION\tCURRENCY\tFORMATS\tDESCRIPTION\n")
	for _, info := range newImporter(cfg).Brokers() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.ID, info.DisplayName, info.Region, info.DefaultCurrency, strings.Join(info.Extensions, ","), info.Description)
	}
	return tw.Flush()
}

func runExport(c *cli.Context, cfg config.Config) error {
	out, toSheets := c.String("out"), c.Bool("sheets")
	if out == "" && !toSheets {
		return cli.Exit("one of --out or --sheets is required", 2)
	}

	res, err := parseArgs(c, cfg)
	if err != nil {
		return err
	}

	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := export.WriteXLSX(f, res.Portfolio); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", out, err)
		}
		fmt.Fprintf(c.App.Writer, "wrote %d positions to %s\n", len(res.Portfolio.Positions), out)
	}

	if toSheets {
		if cfg.GoogleSheetsID == "" || cfg.GoogleCredentialsJSON == "" {
			return cli.Exit("GOOGLE_SHEETS_ID and GOOGLE_CREDENTIALS_JSON are required for --sheets", 2)
		}
		w, err := export.NewSheetsWriter(c.Context, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return err
		}
		if err := export.NewService(w).Export(c.Context, res.Portfolio); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "published %d positions to sheet %s\n", len(res.Portfolio.Positions), cfg.GoogleSheetsID)
	}
	return nil
}
