package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/mtlprog/stmtimport/internal/detect"
	"github.com/mtlprog/stmtimport/internal/domain"
	"github.com/mtlprog/stmtimport/internal/importer"
	"github.com/mtlprog/stmtimport/internal/portfolio"
	"github.com/mtlprog/stmtimport/internal/store"
)

const fileField = "file"

// Handler provides HTTP endpoints for statement import.
type Handler struct {
	importer  *importer.Service
	store     *store.Service // nil runs imports without persisting
	slug      string
	strategy  portfolio.Strategy
	maxUpload int64
}

// NewHandler creates a new API handler.
func NewHandler(imp *importer.Service, st *store.Service, slug string, strategy portfolio.Strategy, maxUpload int64) *Handler {
	return &Handler{importer: imp, store: st, slug: slug, strategy: strategy, maxUpload: maxUpload}
}

// ImportResponse is the body of a successful import.
type ImportResponse struct {
	importer.Result
	Stored *domain.Portfolio `json:"stored,omitempty"`
}

// DetectResponse is the body of a detection request.
type DetectResponse struct {
	Broker domain.BrokerID `json:"broker"`
	Scores []detect.Score  `json:"scores"`
}

// Import handles POST /api/v1/import?broker=&strategy=&dryRun=.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	strategy := h.strategy
	if s := q.Get("strategy"); s != "" {
		parsed, err := portfolio.ParseStrategy(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategy = parsed
	}

	files, ok := h.readFiles(w, r)
	if !ok {
		return
	}

	res, err := h.importer.ParseFiles(r.Context(), files, domain.BrokerID(q.Get("broker")))
	if err != nil {
		writeImportError(w, err)
		return
	}

	resp := ImportResponse{Result: res}
	dryRun, _ := strconv.ParseBool(q.Get("dryRun"))
	if h.store != nil && !dryRun {
		stored, err := h.store.Import(r.Context(), h.slug, res.Portfolio, strategy)
		if err != nil {
			slog.Error("failed to store import", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store portfolio")
			return
		}
		resp.Stored = &stored
	}
	writeJSON(w, http.StatusOK, resp)
}

// Detect handles POST /api/v1/detect.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	files, ok := h.readFiles(w, r)
	if !ok {
		return
	}
	id, scores, err := h.importer.DetectFile(files[0])
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DetectResponse{Broker: id, Scores: scores})
}

// ListBrokers handles GET /api/v1/brokers.
func (h *Handler) ListBrokers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.importer.Brokers())
}

// GetLatestPortfolio handles GET /api/v1/portfolios/latest.
func (h *Handler) GetLatestPortfolio(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Latest(r.Context(), h.slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no portfolios found")
			return
		}
		slog.Error("failed to get latest portfolio", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListPortfolios handles GET /api/v1/portfolios.
func (h *Handler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	records, err := h.store.List(r.Context(), h.slug, limit)
	if err != nil {
		slog.Error("failed to list portfolios", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// readFiles reads every multipart part named "file". It writes the error response and
// reports false when the upload is missing or too large.
func (h *Handler) readFiles(w http.ResponseWriter, r *http.Request) ([]domain.ImportFileData, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, false
	}

	headers := r.MultipartForm.File[fileField]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, false
	}

	files := make([]domain.ImportFileData, 0, len(headers))
	for _, fh := range headers {
		content, err := readPart(fh)
		if err != nil {
			slog.Error("failed to read upload", "file", fh.Filename, "error", err)
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return nil, false
		}
		files = append(files, domain.ImportFileData{Name: fh.Filename, Content: content})
	}
	return files, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// importStatus maps import failures to HTTP statuses.
func importStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedBroker),
		errors.Is(err, domain.ErrUnsupportedExtension):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrUnrecognizedStructure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeImportError(w http.ResponseWriter, err error) {
	status := importStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("import failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	resp := map[string]string{"error": err.Error()}
	var se *importer.StageError
	if errors.As(err, &se) {
		resp["stage"] = string(se.Stage)
		if se.File != "" {
			resp["file"] = se.File
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
