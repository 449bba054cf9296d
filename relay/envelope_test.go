package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelopeNonJSONBody(t *testing.T) {
	resp := decodeEnvelope(502, []byte("<html>bad gateway</html>"))
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
	require.Equal(t, 502, resp.Code)
}

func TestDecodeEnvelopeFallsBackToHTTPStatus(t *testing.T) {
	resp := decodeEnvelope(200, []byte(`{"message":"ok","data":{"a":1}}`))
	require.True(t, resp.Success)
	require.Equal(t, 200, resp.Code)

	resp = decodeEnvelope(404, []byte(`{"message":"missing"}`))
	require.False(t, resp.Success)
	require.Equal(t, 404, resp.Code)
}

func TestResponseMarshalsCanonicalForm(t *testing.T) {
	resp := decodeEnvelope(200, []byte(`{"status":true,"message":"ok","code":200,"data":{"a":1}}`))

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true,"message":"ok","code":200,"data":{"a":1}}`, string(out))
}
