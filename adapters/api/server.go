package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"perifuse/app"
	"perifuse/internal"
)

// Server exposes trait extraction over HTTP. It is thin glue: all semantics
// live in the extraction service.
type Server struct {
	router  *chi.Mux
	service *app.ExtractService
	log     *internal.Logger
}

// NewServer creates the HTTP surface over an extraction service.
func NewServer(service *app.ExtractService, log *internal.Logger) *Server {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/extract", s.handleExtract)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts serving on the given port.
func (s *Server) ListenAndServe(port string) error {
	s.log.Info("trait extraction API listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}
