// ABOUTME: Share server with an embedded contact list page
// ABOUTME: Serves contacts as JSON, renders share QR codes and decodes scans
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mycrew/mycrew/models"
	"github.com/mycrew/mycrew/payload"
	"github.com/mycrew/mycrew/qr"
	"github.com/mycrew/mycrew/store"
	"github.com/mycrew/mycrew/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// maxScanBody bounds POST /api/scan. A QR code never carries more than ~3KB.
const maxScanBody = 64 << 10

type Server struct {
	store     store.Store
	templates *template.Template
	qrSize    int
	router    *mux.Router
}

func NewServer(s store.Store, qrSize int) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if qrSize <= 0 {
		qrSize = qr.DefaultSize
	}

	srv := &Server{store: s, templates: tmpl, qrSize: qrSize}
	srv.router = srv.routes()
	return srv, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/contacts", s.handleContacts).Methods(http.MethodGet)
	r.HandleFunc("/api/contacts/{id}", s.handleContact).Methods(http.MethodGet)
	r.HandleFunc("/api/scan", s.handleScan).Methods(http.MethodPost)
	r.HandleFunc("/qr.png", s.handleQR).Methods(http.MethodGet)
	r.HandleFunc("/graph.svg", s.handleGraph).Methods(http.MethodGet)
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr until the server fails.
func (s *Server) Start(addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	zap.L().Info("starting web server", zap.String("url", "http://"+addr))
	return httpServer.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintln(w, "OK")
}

type contactView struct {
	ID       string
	Name     string
	Titles   string
	Phone    string
	City     string
	Favorite bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	contacts, err := s.store.Search(r.Context(), query, 200)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}

	views := make([]contactView, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		views[i] = contactView{
			ID:       c.ID,
			Name:     c.FullName(),
			Titles:   strings.Join(models.CanonicalJobTitles(*c), ", "),
			Phone:    c.Phone,
			City:     c.City(),
			Favorite: c.IsFavorite,
		}
	}

	data := map[string]interface{}{
		"Title":    "MyCrew",
		"Query":    query,
		"Contacts": views,
		"MaxBatch": payload.MaxBatchSize,
		"QRSize":   s.qrSize,
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		zap.L().Error("template error", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.Search(r.Context(), r.URL.Query().Get("q"), 0)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	contact, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, models.ErrContactNotFound) {
		s.fail(w, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

type capacityResponse struct {
	Error          string `json:"error"`
	Reason         string `json:"reason"`
	Size           int    `json:"size,omitempty"`
	Limit          int    `json:"limit"`
	SuggestedCount int    `json:"suggested_count,omitempty"`
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]
	if err := payload.CheckBatch(len(ids)); err != nil {
		s.failEncode(w, err)
		return
	}

	contacts := make([]models.Contact, 0, len(ids))
	for _, id := range ids {
		c, err := s.store.Get(r.Context(), id)
		if errors.Is(err, models.ErrContactNotFound) {
			s.fail(w, fmt.Errorf("contact %s: %w", id, err), http.StatusNotFound)
			return
		}
		if err != nil {
			s.fail(w, err, http.StatusInternalServerError)
			return
		}
		contacts = append(contacts, *c)
	}

	text, err := payload.Encode(contacts)
	if err != nil {
		s.failEncode(w, err)
		return
	}

	png, err := qr.Render(text, qr.RenderOptions{
		Size:  s.qrSize,
		Level: payload.EstimateContacts(contacts).RenderLevel,
	})
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) failEncode(w http.ResponseWriter, err error) {
	if errors.Is(err, payload.ErrNoContactSelected) {
		s.fail(w, err, http.StatusBadRequest)
		return
	}

	var capErr *payload.CapacityError
	if !errors.As(err, &capErr) {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	zap.L().Info("qr request over capacity", zap.String("reason", capErr.Reason.String()), zap.Int("requested", capErr.Requested))
	writeJSON(w, http.StatusRequestEntityTooLarge, capacityResponse{
		Error:          capErr.Error(),
		Reason:         capErr.Reason.String(),
		Size:           capErr.Size,
		Limit:          capErr.Limit,
		SuggestedCount: capErr.SuggestedCount,
	})
}

type scanResponse struct {
	Kind          string           `json:"kind"`
	Message       string           `json:"message"`
	DeclaredCount int              `json:"declared_count,omitempty"`
	Contacts      []models.Contact `json:"contacts"`
	Error         string           `json:"error,omitempty"`
}

// handleScan decodes a raw payload, or a PNG/JPEG QR image, without storing it.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScanBody))
	if err != nil {
		s.fail(w, err, http.StatusRequestEntityTooLarge)
		return
	}

	text := string(body)
	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		if text, err = qr.ScanReader(strings.NewReader(text)); err != nil {
			s.fail(w, err, http.StatusUnprocessableEntity)
			return
		}
	}

	result := payload.Decode(strings.TrimSpace(text))
	resp := scanResponse{
		Kind:          result.Kind.String(),
		Message:       result.UserMessage(),
		DeclaredCount: result.DeclaredCount,
		Contacts:      result.Contacts,
	}
	if resp.Contacts == nil {
		resp.Contacts = []models.Contact{}
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.GetAll(r.Context())
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := viz.WriteLocationGraph(r.Context(), w, contacts, graphviz.SVG); err != nil {
		zap.L().Error("graph render failed", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
