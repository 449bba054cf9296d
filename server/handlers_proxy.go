package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/upstream"
)

type autoClipRequest struct {
	VideoURL   string `json:"video_url" validate:"required,youtube_url"`
	VideoTitle string `json:"video_title"`
	Thumbnail  string `json:"thumbnail" validate:"omitempty,url"`
}

var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

func (s *Server) registerValidators() {
	_ = s.validate.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		return youtubeHosts[u.Host]
	})
}

// relayResult writes out a relayed envelope, translating auth-state
// failures into sign-in prompts.
func (s *Server) relayResult(w http.ResponseWriter, resp relay.Response, err error) {
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	writeEnvelope(w, resp)
}

// AgentsHandler lists the agents available to the signed-in account.
func (s *Server) AgentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.api.Get(r.Context(), w, r, upstream.RouteAgents, originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// OrderHandler forwards an order creation. The payload is owned by the
// platform API; it is forwarded opaquely once it parses as JSON.
func (s *Server) OrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "a JSON body is required")
			return
		}
		resp, err := s.api.Post(r.Context(), w, r, upstream.RouteOrder, json.RawMessage(body), originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// PaymentMethodHandler fetches the payment instructions for an order.
func (s *Server) PaymentMethodHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		resp, err := s.api.Get(r.Context(), w, r, upstream.RoutePaymentMethod+"/"+url.PathEscape(id), originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// AutoClipListHandler lists the account's auto-clip jobs.
func (s *Server) AutoClipListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.api.Get(r.Context(), w, r, upstream.RouteAutoClip, originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// AutoClipSubmitHandler submits a video for clipping. Only YouTube
// video URLs are accepted.
func (s *Server) AutoClipSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autoClipRequest
		if err := s.decodeValid(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "a valid YouTube video URL is required")
			return
		}
		resp, err := s.api.Post(r.Context(), w, r, upstream.RouteAutoClip, req, originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// AutoClipDetailHandler fetches a single auto-clip job.
func (s *Server) AutoClipDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		resp, err := s.api.Get(r.Context(), w, r, upstream.RouteAutoClip+"/"+url.PathEscape(id), originWebProxy)
		s.relayResult(w, resp, err)
	}
}

// DownloadHandler relays a clip download request, passing the query
// string through untouched.
func (s *Server) DownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := upstream.RouteDownload
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		resp, err := s.api.Get(r.Context(), w, r, path, originWebProxy)
		s.relayResult(w, resp, err)
	}
}
