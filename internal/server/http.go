package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"rulegate/internal/config"
	"rulegate/internal/core"
	"rulegate/internal/core/export"
	"rulegate/internal/core/fieldmap"
	"rulegate/internal/core/gateway"
	"rulegate/internal/core/normalize"
)

// Store resources
const (
	resourceRules      = "rules"
	resourceCategories = "categories"
)

// HTTPServer is the rules API in front of the remote store
type HTTPServer struct {
	*Server
	cfg        *config.Config
	log        *zap.Logger
	store      *gateway.Gateway
	normalizer *normalize.RuleNormalizer
	exporter   *export.Exporter
}

// Option customizes an HTTPServer
type Option func(*HTTPServer)

// WithExporter replaces the exporter built from the config
func WithExporter(e *export.Exporter) Option {
	return func(s *HTTPServer) { s.exporter = e }
}

// NewHTTPServer wires the store gateway, normalizer and exporter from cfg
func NewHTTPServer(cfg *config.Config, log *zap.Logger, opts ...Option) *HTTPServer {
	if log == nil {
		log = zap.NewNop()
	}

	s := &HTTPServer{
		cfg: cfg,
		log: log,
		store: gateway.New(gateway.Config{
			BaseURL: cfg.Store.URL,
			Key:     cfg.Store.Key,
			Timeout: cfg.Store.Timeout,
		}, log.Named("store")),
		normalizer: normalize.NewRuleNormalizer(log.Named("normalize")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.NewExporter(afero.NewOsFs(), newChooser(cfg.Export), "", log.Named("export"))
	}

	s.Server = New(cfg.Server, s.Handler(), log)
	return s
}

func newChooser(cfg config.ExportConfig) export.PathChooser {
	if cfg.Chooser == config.ChooserStatic {
		return export.StaticChooser{Dir: cfg.Dir}
	}
	return export.NewDialogChooser()
}

// Handler builds the router
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(s.log))
	r.Use(Recoverer)
	r.Use(CORS(s.cfg.CORS.Origins))

	r.Get("/", s.handleRoot)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", s.handleListRules)
		r.Post("/rules", s.handleCreateRule)
		r.Post("/rules/export", s.handleExportRule)
		r.Get("/categories", s.handleListCategories)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	return r
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "online",
		"message":   "Rules API is running",
		"endpoints": []string{"/api/rules", "/api/categories"},
	})
}

// handleListRules returns the store's rules with the read table applied
func (s *HTTPServer) handleListRules(w http.ResponseWriter, r *http.Request) {
	rc := core.FromContext(r.Context())

	resp, err := s.store.Get(r.Context(), resourceRules)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}
	if resp.Empty() {
		writeRaw(w, http.StatusOK, []byte("[]"))
		return
	}

	body, err := fieldmap.FromStoreJSON(resp.Body)
	if err != nil {
		s.writeError(w, rc, fmt.Errorf("failed to map rules: %w", err))
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// handleCreateRule normalizes the request and stores it
func (s *HTTPServer) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	rc := core.FromContext(r.Context())

	rec, err := decodeRecord(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	rule, err := s.normalizer.Normalize(rec)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}

	resp, err := s.store.Post(r.Context(), resourceRules, rule)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}
	if resp.Empty() {
		writeRaw(w, http.StatusCreated, []byte("{}"))
		return
	}

	// the store answers with an array of created rows
	created := gjson.ParseBytes(resp.Body)
	if created.IsArray() {
		if items := created.Array(); len(items) > 0 {
			writeRaw(w, http.StatusCreated, []byte(items[0].Raw))
			return
		}
	}
	writeRaw(w, http.StatusCreated, resp.Body)
}

// handleExportRule writes the posted rule to a local .mdc file
func (s *HTTPServer) handleExportRule(w http.ResponseWriter, r *http.Request) {
	rc := core.FromContext(r.Context())

	rec, err := decodeRecord(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	req, err := export.RequestFromRecord(rec)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}

	res, err := s.exporter.Export(r.Context(), req)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListCategories passes the store's categories through untouched
func (s *HTTPServer) handleListCategories(w http.ResponseWriter, r *http.Request) {
	rc := core.FromContext(r.Context())

	resp, err := s.store.Get(r.Context(), resourceCategories)
	if err != nil {
		s.writeError(w, rc, err)
		return
	}
	if resp.Empty() {
		writeRaw(w, http.StatusOK, []byte("[]"))
		return
	}
	writeRaw(w, http.StatusOK, resp.Body)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto status codes
func (s *HTTPServer) writeError(w http.ResponseWriter, rc *core.RequestContext, err error) {
	var (
		verr *core.ValidationError
		gerr *core.GatewayError
		ferr *core.FilesystemError
	)

	switch {
	case errors.As(err, &verr):
		rc.Log.Info("validation failed", zap.String("field", verr.Field))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
	case errors.As(err, &gerr):
		rc.Log.Warn("store call failed", zap.Int("status", gerr.Status), zap.String("message", gerr.Message))
		writeJSON(w, gerr.Status, errorBody{Error: gerr.Error()})
	case errors.As(err, &ferr):
		rc.Log.Error("export write failed", zap.Error(ferr))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: ferr.Error()})
	default:
		rc.Log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

// decodeRecord reads a JSON object body
func decodeRecord(r *http.Request) (core.Record, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("Invalid JSON: %v", err)
	}
	var rec core.Record
	if err := sonic.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("Invalid JSON: %v", err)
	}
	if rec == nil {
		return nil, errors.New("Invalid JSON: expected an object")
	}
	return rec, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := sonic.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
