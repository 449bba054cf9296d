package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/device"
	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/fendriknuruljadid/astrovia-app/relay"
	"github.com/fendriknuruljadid/astrovia-app/signing"
	"github.com/stretchr/testify/require"
)

type staticTokenSource struct {
	token string
	err   error
	calls int
}

func (s *staticTokenSource) ValidToken(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	s.calls++
	return s.token, s.err
}

func newSigner(t *testing.T) *signing.Signer {
	t.Helper()
	signer, err := signing.NewSigner("relay-test-secret")
	require.NoError(t, err)
	return signer
}

func inboundRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	r.AddCookie(&http.Cookie{Name: device.CookieName, Value: "dev-abc"})
	return r
}

func TestRelayAttachesSignedHeaders(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","code":200,"data":[]}`))
	}))
	defer upstream.Close()

	tokens := &staticTokenSource{token: "tok-1"}
	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), tokens)

	resp, err := client.Get(context.Background(), httptest.NewRecorder(), inboundRequest(), "/agents", "web-proxy")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 200, resp.Code)

	require.NotEmpty(t, got.Get("X-Timestamp"))
	require.NotEmpty(t, got.Get("X-Signature"))
	require.Equal(t, "dev-abc", got.Get("X-DeviceId"))
	require.Equal(t, "web-proxy", got.Get("X-ORIGIN"))
	require.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	require.Equal(t, 1, tokens.calls)
}

func TestRelayNormalizesBusinessFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"x"}`))
	}))
	defer upstream.Close()

	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), &staticTokenSource{token: "tok-1"})

	resp, err := client.Get(context.Background(), httptest.NewRecorder(), inboundRequest(), "/agents", "")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "x", resp.Message)
	require.Equal(t, 500, resp.Code)
}

func TestRelayNormalizesTransportFailure(t *testing.T) {
	// Closed server: connection refused, no response body at all.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := relay.New(upstream.URL, time.Second, newSigner(t), &staticTokenSource{token: "tok-1"})

	resp, err := client.Get(context.Background(), httptest.NewRecorder(), inboundRequest(), "/agents", "")
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
	require.Equal(t, 500, resp.Code)
}

func TestRelayAcceptsBothEnvelopeVariants(t *testing.T) {
	bodies := []string{
		`{"status":true,"message":"ok","code":201,"data":{"id":"1"}}`,
		`{"success":true,"message":"ok","statusCode":201,"data":{"id":"1"}}`,
	}

	for _, body := range bodies {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		client := relay.New(upstream.URL, 15*time.Second, newSigner(t), &staticTokenSource{token: "tok-1"})
		resp, err := client.Get(context.Background(), httptest.NewRecorder(), inboundRequest(), "/agents", "")
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Equal(t, 201, resp.Code)
		require.JSONEq(t, `{"id":"1"}`, string(resp.Data))

		upstream.Close()
	}
}

func TestRelayDoesNotCallUpstreamWhenUnauthenticated(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	tokens := &staticTokenSource{err: errors.ErrUnauthenticated}
	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), tokens)

	_, err := client.Get(context.Background(), httptest.NewRecorder(), inboundRequest(), "/agents", "")
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
	require.False(t, called)
}

func TestPublicPostSkipsAuthorization(t *testing.T) {
	var got http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","code":200}`))
	}))
	defer upstream.Close()

	// No token source at all: public client for pre-auth endpoints.
	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), nil)

	resp := client.PublicPost(context.Background(), inboundRequest(), "/auth/generate-token", map[string]string{"email": "a@b.c"})
	require.True(t, resp.Success)
	require.Empty(t, got.Get("Authorization"))
	require.NotEmpty(t, got.Get("X-Signature"))
}

func TestRelayPostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	var contentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","code":200}`))
	}))
	defer upstream.Close()

	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), &staticTokenSource{token: "tok-1"})

	_, err := client.Post(context.Background(), httptest.NewRecorder(), inboundRequest(), "/astro-zenith/auto-clip",
		map[string]string{"video_url": "https://youtu.be/abc"}, "web-proxy")
	require.NoError(t, err)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "https://youtu.be/abc", gotBody["video_url"])
}

func TestRelayFormPayloadKeepsContentType(t *testing.T) {
	var contentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","code":200}`))
	}))
	defer upstream.Close()

	client := relay.New(upstream.URL, 15*time.Second, newSigner(t), &staticTokenSource{token: "tok-1"})

	payload := relay.FormPayload{
		Reader:      strings.NewReader("--boundary--"),
		ContentType: "multipart/form-data; boundary=boundary",
	}
	_, err := client.Post(context.Background(), httptest.NewRecorder(), inboundRequest(), "/astro-zenith/auto-clip", payload, "web-proxy")
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data; boundary=boundary", contentType)
}
