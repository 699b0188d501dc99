package tvl

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.openly.dev/pointy"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type HistoryReader interface {
	GetByFilters(filters []Filter) ([]Snapshot, error)
}

type Server struct {
	adapter *Adapter
	cache   *Cache
	history HistoryReader
}

// NewServer creates http handlers. History is optional.
func NewServer(adapter *Adapter, cache *Cache, history HistoryReader) *Server {
	return &Server{
		adapter: adapter,
		cache:   cache,
		history: history,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/adapter", s.metadata).Methods(http.MethodGet)
	v1.HandleFunc("/chains/{chain}/{kind}", s.snapshot).Methods(http.MethodGet)
	v1.HandleFunc("/chains/{chain}/{kind}/history", s.snapshotHistory).Methods(http.MethodGet)

	return r
}

func (s *Server) metadata(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.adapter.Metadata())
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	chain, kind := routeParams(r)
	if !s.adapter.Supports(chain, kind) {
		writeError(w, http.StatusNotFound, "unsupported chain or kind")
		return
	}

	if snapshot, ok := s.cache.Get(chain, kind); ok {
		writeJSON(w, http.StatusOK, snapshot)
		return
	}

	snapshot, err := s.adapter.Snapshot(r.Context(), chain, kind)
	if err != nil {
		status, msg := convertError(err)
		log.Error().
			Err(err).
			Str("chain", string(chain)).
			Str("kind", string(kind)).
			Msg("compute snapshot")

		writeError(w, status, msg)
		return
	}

	s.cache.Set(snapshot)
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) snapshotHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "history storage is disabled")
		return
	}

	chain, kind := routeParams(r)
	if !s.adapter.Supports(chain, kind) {
		writeError(w, http.StatusNotFound, "unsupported chain or kind")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 || val > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = val
	}

	list, err := s.history.GetByFilters([]Filter{
		SnapshotFilter{
			Chain: pointy.Pointer(chain),
			Kind:  pointy.Pointer(kind),
		},
		PageFilter{
			Limit: limit,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("chain", string(chain)).Msg("get snapshot history")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func routeParams(r *http.Request) (Chain, Kind) {
	vars := mux.Vars(r)

	return Chain(vars["chain"]), Kind(vars["kind"])
}

func convertError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrOutdatedData):
		return http.StatusServiceUnavailable, "outdated"
	case errors.Is(err, ErrNoData):
		return http.StatusNotFound, "no data available"
	case errors.Is(err, ErrUnsupportedChain), errors.Is(err, ErrUnsupportedKind), errors.Is(err, ErrStakingUnsupported):
		return http.StatusNotFound, "unsupported chain or kind"
	default:
		return http.StatusBadGateway, "upstream failure"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}
