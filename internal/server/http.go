package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/stripd/internal/render"
	"github.com/desertthunder/stripd/internal/shared"
)

//go:embed static/index.html
var indexPage []byte

// DefaultMaxBodyBytes bounds POST /data bodies when no limit is configured.
const DefaultMaxBodyBytes = 64 << 10

// Options configures [NewRouter].
type Options struct {
	CORSOrigin   string
	MaxBodyBytes int64
	// WriteRate is the sustained POST /data rate per second. Zero disables limiting.
	WriteRate  float64
	WriteBurst int
	Logger     *log.Logger
}

// OptionsFromConfig maps the [shared.ServerConfig] section onto [Options].
func OptionsFromConfig(cfg shared.ServerConfig, logger *log.Logger) Options {
	return Options{
		CORSOrigin:   cfg.CORSOrigin,
		MaxBodyBytes: cfg.MaxBodyBytes,
		WriteRate:    cfg.WriteRate,
		WriteBurst:   cfg.WriteBurst,
		Logger:       logger,
	}
}

// NewRouter builds the full API: middleware plus the now, data and index handlers.
func NewRouter(config *ConfigHandler, clock render.Clock, opts Options) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	var limiter *rate.Limiter
	if opts.WriteRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.WriteRate), max(1, opts.WriteBurst))
	}

	r := NewBasicRouter()
	r.Use(
		Recover(opts.Logger),
		RequestID(),
		Logging(opts.Logger),
		CORS(opts.CORSOrigin),
		RateLimit(limiter, http.MethodPost),
	)

	r.HandleFunc(http.MethodGet, "/{$}", serveIndex)
	r.Handler(&NowHandler{clock: clock})
	r.Handler(&DataHandler{config: config, maxBody: opts.MaxBodyBytes, logger: opts.Logger})
	return r
}

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}

// NowHandler serves the render clock so clients can align their own animation with the strip.
type NowHandler struct {
	clock render.Clock
}

func (h *NowHandler) Routes() []string {
	return []string{"GET /now"}
}

func (h *NowHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strconv.FormatUint(h.clock.Millis(), 10)))
}

// DataHandler serves GET and POST /data on top of a [ConfigHandler].
type DataHandler struct {
	config  *ConfigHandler
	maxBody int64
	logger  *log.Logger
}

func (h *DataHandler) Routes() []string {
	return []string{"GET /data", "POST /data", "OPTIONS /data"}
}

func (h *DataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w)
	case http.MethodPost:
		h.post(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *DataHandler) get(w http.ResponseWriter) {
	data, err := h.config.Read()
	if err != nil {
		h.logger.Error("failed to encode configuration", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode configuration")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

type writeResponse struct {
	Status    string `json:"status"`
	Persisted bool   `json:"persisted"`
}

func (h *DataHandler) post(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := h.config.Write(body)
	if err != nil {
		status := StatusFor(err)
		switch status {
		case http.StatusBadRequest:
			writeError(w, status, err.Error())
		case http.StatusServiceUnavailable:
			writeError(w, status, "configuration could not be saved")
		default:
			h.logger.Error("configuration write failed", "error", err)
			writeError(w, status, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, writeResponse{Status: "ok", Persisted: result.Persisted})
}

// StatusFor maps an error from the configuration path to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsFormatError(err), errors.Is(err, shared.ErrInvalidSegment):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrPersist):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Status: "error", Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
