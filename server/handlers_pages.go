package server

import (
	"fmt"
	"net/http"
)

// PageHandler serves the application shell. The front-end bundle owns
// rendering; the server only needs a page target for the guarded
// navigations to land on.
func (s *Server) PageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><div id=\"app\"></div></body></html>", s.config.GetAppName())
	}
}
