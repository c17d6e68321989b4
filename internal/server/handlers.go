package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/partscope/partscope/pkg/catalog"
	"github.com/partscope/partscope/pkg/storage"
)

const (
	defaultHistoryWindow = 30
	defaultDealsLimit    = 20
	maxDealsLimit        = 50
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.DB.ListCategories(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, cats)
}

// componentEntry is one component row of a category listing, with its
// computed lowest price.
type componentEntry struct {
	storage.Component
	LowestPrice *storage.LowestPrice `json:"lowest_price"`
}

type categoryResponse struct {
	Category   string            `json:"category"`
	Components []componentEntry  `json:"components"`
	Facets     *catalog.FacetSet `json:"facets,omitempty"`
	PriceMin   *int64            `json:"price_min,omitempty"`
	PriceMax   *int64            `json:"price_max,omitempty"`
}

func (s *Server) handleCategoryComponents(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	comps, err := s.DB.ComponentsByCategory(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := categoryResponse{Category: name, Components: []componentEntry{}}

	for _, c := range comps {
		lp, err := s.DB.CheapestOffer(r.Context(), c.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Components = append(resp.Components, componentEntry{Component: c, LowestPrice: lp})
	}

	if h, ok := catalog.HandlerFor(name); ok {
		facets := h.Facets(comps)
		resp.Facets = &facets
	}

	if lo, hi, ok, err := s.DB.PriceRange(r.Context(), name); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else if ok {
		resp.PriceMin = &lo
		resp.PriceMax = &hi
	}

	writeJSON(w, resp)
}

type componentResponse struct {
	storage.Component
	LowestPrice *storage.LowestPrice  `json:"lowest_price"`
	Offers      []storage.Offer       `json:"offers"`
	History     []storage.Observation `json:"price_history"`
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid component id", http.StatusBadRequest)
		return
	}

	comp, err := s.DB.GetComponent(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "component not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	k := defaultHistoryWindow
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			k = n
		}
	}

	offers, err := s.DB.OffersForComponent(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	history, err := s.DB.PriceHistory(r.Context(), id, k)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	lp, err := s.DB.CheapestOffer(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, componentResponse{Component: comp, LowestPrice: lp, Offers: offers, History: history})
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	limit := defaultDealsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxDealsLimit {
		limit = maxDealsLimit
	}

	deals, err := s.DB.BestDeals(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, deals)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
