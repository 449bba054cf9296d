package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fendriknuruljadid/astrovia-app/internal/errors"
	"github.com/fendriknuruljadid/astrovia-app/session"
	"github.com/stretchr/testify/require"
)

const testSecret = "session-secret-for-tests"

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	codec, err := session.NewCodec(testSecret)
	require.NoError(t, err)
	return session.NewStore(codec, false, 3600)
}

// requestWithRecordedCookie replays the cookies a previous response set.
func requestWithRecordedCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func testRecord() *session.Record {
	return &session.Record{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Email:        "john.doe@example.com",
		FirstName:    "John",
		LastName:     "Doe",
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := session.NewCodec(testSecret)
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)

	rec, err := codec.Decode(token)
	require.NoError(t, err)
	require.Equal(t, testRecord(), rec)
}

func TestCodecRejectsTamperedToken(t *testing.T) {
	codec, err := session.NewCodec(testSecret)
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = codec.Decode(tampered)
	require.ErrorIs(t, err, errors.ErrSessionDecode)
}

func TestCodecRejectsForeignKey(t *testing.T) {
	codec, err := session.NewCodec(testSecret)
	require.NoError(t, err)
	other, err := session.NewCodec("a-different-secret")
	require.NoError(t, err)

	token, err := codec.Encode(testRecord())
	require.NoError(t, err)

	_, err = other.Decode(token)
	require.ErrorIs(t, err, errors.ErrSessionDecode)
}

func TestStoreReadWithoutCookie(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestStoreSetAndRead(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Set(rr, testRecord()))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	rec, err := store.Read(requestWithRecordedCookie(t, rr))
	require.NoError(t, err)
	require.Equal(t, testRecord(), rec)
}

func TestStoreWriteRequiresCompleteTriple(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Set(rr, testRecord()))
	r := requestWithRecordedCookie(t, rr)

	err := store.Write(httptest.NewRecorder(), r, session.TokenUpdate{
		AccessToken: "access-2",
	})
	require.Error(t, err)
}

func TestStoreWriteRotatesTokens(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Set(rr, testRecord()))
	r := requestWithRecordedCookie(t, rr)

	next := httptest.NewRecorder()
	newExpiry := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	require.NoError(t, store.Write(next, r, session.TokenUpdate{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    newExpiry,
	}))

	rec, err := store.Read(requestWithRecordedCookie(t, next))
	require.NoError(t, err)
	require.Equal(t, "access-2", rec.AccessToken)
	require.Equal(t, "refresh-2", rec.RefreshToken)
	require.Equal(t, newExpiry, rec.ExpiresAt)
	// identity fields survive the merge
	require.Equal(t, "john.doe@example.com", rec.Email)
}

func TestStoreWriteNeverMovesExpiryBackward(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Set(rr, testRecord()))
	r := requestWithRecordedCookie(t, rr)

	next := httptest.NewRecorder()
	earlier := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, store.Write(next, r, session.TokenUpdate{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    earlier,
	}))

	rec, err := store.Read(requestWithRecordedCookie(t, next))
	require.NoError(t, err)
	require.Equal(t, testRecord().ExpiresAt, rec.ExpiresAt)
}

func TestStoreWriteWithoutSession(t *testing.T) {
	store := newTestStore(t)

	err := store.Write(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), session.TokenUpdate{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestMarkRefreshFailedIsSticky(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Set(rr, testRecord()))
	r := requestWithRecordedCookie(t, rr)

	next := httptest.NewRecorder()
	require.NoError(t, store.MarkRefreshFailed(next, r))

	rec, err := store.Read(requestWithRecordedCookie(t, next))
	require.NoError(t, err)
	require.Equal(t, session.FailureRefreshFailed, rec.Error)
	// the stale tokens are still present so logout can revoke them
	require.Equal(t, "refresh-1", rec.RefreshToken)
}

func TestClearExpiresCookie(t *testing.T) {
	store := newTestStore(t)

	rr := httptest.NewRecorder()
	store.Clear(rr)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}
