package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fendriknuruljadid/astrovia-app/relay"
)

// ProgressWatchHandler starts following a job's progress stream.
// Watching the same job twice is a no-op.
func (s *Server) ProgressWatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "a job id is required")
			return
		}
		if err := s.progress.Watch(r.Context(), id); err != nil {
			log.Warn().Err(err).Str("job_id", id).Msg("progress watch failed")
			writeError(w, http.StatusBadGateway, "progress stream unavailable")
			return
		}
		writeJSON(w, http.StatusAccepted, relay.Response{
			Success: true,
			Message: "watching",
			Code:    http.StatusAccepted,
		})
	}
}

// ProgressSnapshotHandler returns the latest folded progress for a job.
// A job that was never watched, or whose stream already finished, has
// no snapshot; finished jobs show up in the job list instead.
func (s *Server) ProgressSnapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		status, ok := s.progress.Snapshot(id)
		if !ok {
			writeError(w, http.StatusNotFound, "no progress for this job")
			return
		}
		data, err := json.Marshal(status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, relay.Response{
			Success: true,
			Code:    http.StatusOK,
			Data:    data,
		})
	}
}
