// Package importer routes statement files through reading, broker detection,
// extraction and normalization.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/stmtimport/internal/broker"
	"github.com/mtlprog/stmtimport/internal/detect"
	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/pdf"
	"github.com/mtlprog/stmtimport/internal/portfolio"
	"github.com/mtlprog/stmtimport/internal/tabular"
)

const defaultConcurrency = 4

// Stage names the pipeline step an import failed in.
type Stage string

const (
	StageRead    Stage = "read"
	StageDetect  Stage = "detect"
	StageExtract Stage = "extract"
)

// StageError carries the failed stage and, when known, the file and broker.
type StageError struct {
	Stage  Stage
	File   string
	Broker domain.BrokerID
	Err    error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.Broker != "" {
		fmt.Fprintf(&b, " %s", e.Broker)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " %s", e.File)
	}
	return b.String() + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is a normalized import.
type Result struct {
	Portfolio domain.Portfolio    `json:"portfolio"`
	Broker    domain.BrokerID     `json:"broker"`
	Detected  bool                `json:"detected"`
	Skipped   []domain.SkippedRow `json:"skipped,omitempty"`
}

// Service runs imports against a broker registry.
type Service struct {
	registry    broker.Registry
	now         func() time.Time
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for ImportedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConcurrency bounds how many files ParseFiles reads at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates an import Service.
func NewService(registry broker.Registry, opts ...Option) *Service {
	s := &Service{registry: registry, now: time.Now, concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Brokers returns the registered broker metadata.
func (s *Service) Brokers() []domain.BrokerInfo {
	return s.registry.Infos()
}

// Scores returns the detector's score table for content.
func (s *Service) Scores(content string) []detect.Score {
	return detect.Scores(content)
}

// DetectFile converts file to delimited text and scores it against every broker. The
// returned id is the broker AutoParseCSV would start with.
func (s *Service) DetectFile(file domain.ImportFileData) (domain.BrokerID, []detect.Score, error) {
	content, err := fileText(file)
	if err != nil {
		return "", nil, &StageError{Stage: StageRead, File: file.Name, Err: err}
	}
	scores := detect.Scores(content)
	return detect.Best(scores), scores, nil
}

// ParseWithBroker extracts content with the named broker's extractor and normalizes
// the result.
func (s *Service) ParseWithBroker(content string, id domain.BrokerID) (Result, error) {
	e, err := s.registry.Lookup(id)
	if err != nil {
		return Result{}, &StageError{Stage: StageDetect, Broker: id, Err: err}
	}

	res, err := e.Parse(content)
	if err != nil {
		return Result{}, &StageError{Stage: StageExtract, Broker: id, Err: err}
	}

	p := res.Portfolio
	for i := range p.Positions {
		if p.Positions[i].Currency == "" {
			p.Positions[i].Currency = e.DefaultCurrency()
		}
	}
	p.BaseCurrency = lo.CoalesceOrEmpty(p.BaseCurrency, e.DefaultCurrency())
	p.Positions = portfolio.Deduplicate(p.Positions)
	p.ImportedAt = s.now().UTC()

	for _, row := range res.Skipped {
		slog.Debug("import: skipped row", "broker", id, "line", row.Line, "reason", row.Reason)
	}
	slog.Info("import: statement parsed", "broker", id, "positions", len(p.Positions), "skipped", len(res.Skipped))

	return Result{Portfolio: p, Broker: id, Skipped: res.Skipped}, nil
}

// AutoParseCSV detects the broker and parses content with it. A detected extractor
// that finds no usable header hands over to the generic extractor.
func (s *Service) AutoParseCSV(content string) (Result, error) {
	id := detect.Detect(content)
	res, err := s.ParseWithBroker(content, id)
	if err != nil && id != domain.BrokerGeneric && errors.Is(err, domain.ErrUnrecognizedStructure) {
		slog.Warn("import: detected broker could not parse, trying generic", "broker", id, "error", err)
		res, err = s.ParseWithBroker(content, domain.BrokerGeneric)
	}
	if err != nil {
		return Result{}, err
	}
	res.Detected = true
	return res, nil
}

// ParseFile reads a statement file by extension and parses it with the given broker,
// or with the detected one when id is empty. PDF text and XLSX sheets are converted to
// delimited text first. Rows recovered from a PDF rarely keep the broker's exact
// layout, so a PDF the requested broker cannot read goes through detection and then
// the generic extractor.
func (s *Service) ParseFile(file domain.ImportFileData, id domain.BrokerID) (Result, error) {
	content, err := fileText(file)
	if err != nil {
		return Result{}, &StageError{Stage: StageRead, File: file.Name, Err: err}
	}

	var res Result
	if id == "" {
		res, err = s.AutoParseCSV(content)
	} else {
		res, err = s.ParseWithBroker(content, id)
		if err != nil && Extension(file) == "pdf" && recoverable(err) {
			slog.Warn("import: requested broker could not parse pdf, detecting", "broker", id, "file", file.Name, "error", err)
			res, err = s.AutoParseCSV(content)
		}
	}
	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			se.File = file.Name
		}
		return Result{}, err
	}

	for i := range res.Skipped {
		res.Skipped[i].File = file.Name
	}
	return res, nil
}

// recoverable reports extraction failures another extractor may still get past.
func recoverable(err error) bool {
	return errors.Is(err, domain.ErrUnrecognizedStructure) || errors.Is(err, domain.ErrEmptyInput)
}

// ParseFiles parses independent files concurrently and merges them into one
// portfolio. Positions keep input file order before deduplication. The first file
// supplies the account metadata; files from different brokers report the generic id.
func (s *Service) ParseFiles(ctx context.Context, files []domain.ImportFileData, id domain.BrokerID) (Result, error) {
	if len(files) == 0 {
		return Result{}, &StageError{Stage: StageRead, Err: domain.ErrEmptyInput}
	}

	results := make([]Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.ParseFile(f, id)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged := results[0]
	others := lo.Map(results[1:], func(r Result, _ int) domain.Portfolio { return r.Portfolio })
	merged.Portfolio = portfolio.MergePortfolios(merged.Portfolio, others...)
	for _, r := range results[1:] {
		merged.Skipped = append(merged.Skipped, r.Skipped...)
		merged.Detected = merged.Detected || r.Detected
		if r.Broker != merged.Broker {
			merged.Broker = domain.BrokerGeneric
		}
	}
	return merged, nil
}

// fileText returns the statement as delimited text.
func fileText(file domain.ImportFileData) (string, error) {
	switch ext := Extension(file); ext {
	case "pdf":
		text, err := pdf.ExtractText(file.Content)
		if err != nil {
			return "", fmt.Errorf("extracting pdf text: %w", err)
		}
		return pdf.TextToCSV(text), nil
	case "xlsx":
		t, err := tabular.ReadXLSX(file.Content)
		if err != nil {
			return "", fmt.Errorf("reading workbook: %w", err)
		}
		return tabular.Encode(t, ','), nil
	case "csv", "tsv", "txt", "":
		return string(file.Content), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedExtension, ext)
	}
}

// Extension is the lowercased file extension, taken from the explicit field or the name.
func Extension(file domain.ImportFileData) string {
	ext := lo.CoalesceOrEmpty(file.Extension, filepath.Ext(file.Name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
