package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pantryapp/ui"
)

//go:embed templates/page.gohtml
var templatesFS embed.FS

// Server renders the pantry page and turns form posts into controller actions.
type Server struct {
	ctrl *ui.Controller
	page *template.Template
}

func New(ctrl *ui.Controller) (*Server, error) {
	tmpl, err := template.New("page.gohtml").Funcs(template.FuncMap{
		"display": DisplayName,
	}).ParseFS(templatesFS, "templates/page.gohtml")
	if err != nil {
		return nil, err
	}
	return &Server{ctrl: ctrl, page: tmpl}, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/api/items", s.handleItems)

	r.Post("/modal/open", s.handleOpenModal)
	r.Post("/modal/close", s.handleCloseModal)
	r.Post("/items", s.handleAdd)
	r.Post("/items/remove", s.handleRemove)
	r.Post("/search", s.handleSearch)
	r.Post("/search/clear", s.handleClearSearch)
	return r
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.ctrl.Snapshot()); err != nil {
		slog.Error("HTTP: Failed to render page", "error", err)
	}
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.ctrl.Snapshot().Pantry); err != nil {
		slog.Error("HTTP: Failed to encode items", "error", err)
	}
}

func (s *Server) handleOpenModal(w http.ResponseWriter, r *http.Request) {
	s.ctrl.OpenModal()
	redirectHome(w, r)
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.ctrl.CloseModal()
	redirectHome(w, r)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Add(r.Context(), r.FormValue("name")); err != nil {
		storeFailure(w, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Remove(r.Context(), r.FormValue("name")); err != nil {
		storeFailure(w, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SetSearchQuery(r.FormValue("q"))
	s.ctrl.Search()
	redirectHome(w, r)
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	s.ctrl.ClearSearch()
	redirectHome(w, r)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// storeFailure reports a failed store call; the page state is left as it was.
func storeFailure(w http.ResponseWriter, err error) {
	slog.Error("HTTP: Store operation failed", "error", err)
	http.Error(w, "pantry store unavailable", http.StatusBadGateway)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP: Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// DisplayName upper-cases the first letter of a stored name.
func DisplayName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(r))
	b.WriteString(name[size:])
	return b.String()
}
