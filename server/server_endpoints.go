package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hintdns/instanceid"
)

func (s *Server) registerAPIEndpoints(router *chi.Mux) {
	router.Post("/api/cache/flush", s.apiCacheFlush)
	router.Get("/api/instance", apiInstanceID)
}

func apiInstanceID(rw http.ResponseWriter, _ *http.Request) {
	_, _ = rw.Write([]byte(instanceid.String()))
}

// apiCacheFlush persists the record cache immediately instead of
// waiting for shutdown
func (s *Server) apiCacheFlush(rw http.ResponseWriter, _ *http.Request) {
	if !s.cfg.Caching.Enabled {
		http.Error(rw, "caching is disabled", http.StatusBadRequest)

		return
	}

	if err := s.cache.Persist(s.cfg.Caching.File); err != nil {
		logger().Error("can't persist cache: ", err)
		http.Error(rw, err.Error(), http.StatusInternalServerError)

		return
	}

	_, _ = rw.Write([]byte("ok"))
}
