package device_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fendriknuruljadid/astrovia-app/device"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: device.CookieName, Value: "dev-123"})

	id, ok := device.FromRequest(r)
	require.True(t, ok)
	require.Equal(t, "dev-123", id)
}

func TestFromRequestMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := device.FromRequest(r)
	require.False(t, ok)
}

func TestFromCookieHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		wantID string
		wantOK bool
	}{
		{"single cookie", "device_id=dev-456", "dev-456", true},
		{"among others", "theme=dark; device_id=dev-789; lang=en", "dev-789", true},
		{"absent", "theme=dark; lang=en", "", false},
		{"empty value", "device_id=", "", false},
		{"empty header", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := device.FromCookieHeader(tc.header)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantID, id)
		})
	}
}
