package server

import (
	"net/http"

	"github.com/partscope/partscope/internal/utils"
	"github.com/partscope/partscope/pkg/storage"
)

// Server exposes the read-only query interface consumed by the presentation
// layer. It never writes: the catalog importer and the scrape/match pipeline
// are the only writers.
type Server struct {
	DB *storage.DB
}

func New(db *storage.DB) *Server {
	return &Server{DB: db}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/{name}/components", s.handleCategoryComponents)
	mux.HandleFunc("GET /api/components/{id}", s.handleComponent)
	mux.HandleFunc("GET /api/deals", s.handleDeals)

	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
