package web

import (
	"encoding/json"
	"net/http"
)

const statsCacheKey = "stats"

// handleStats serves the summary from the cache when it holds one. Cache
// failures are logged and the summary is computed as if it had missed. A
// summary is only stored if no write landed while it was computed; with
// several servers sharing one cache, stats can still lag by up to the TTL.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gen := s.generation.Load()
	cached, hit, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		s.logger.Warn("stats cache read failed", "error", err)
	}
	if s.metrics != nil {
		s.metrics.CacheLookup(hit)
	}
	if hit {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		if _, err := w.Write(cached); err != nil {
			s.logger.Debug("failed to write response", "error", err)
		}
		return
	}

	summary, err := s.stats.Summary(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := json.Marshal(summary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body = append(body, '\n')
	if s.generation.Load() != gen {
		s.logger.Debug("stats changed while computing, not caching")
	} else if err := s.cache.Set(ctx, statsCacheKey, body); err != nil {
		s.logger.Warn("stats cache write failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}
