package editorproto_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpilot/autocore/internal/editorproto"
)

const testSecret = "test-secret-key-for-jwt"

func generateTestToken(t *testing.T, sessionID string, expiresAt time.Time) string {
	t.Helper()
	auth := editorproto.NewJWTAuth(testSecret)
	token, err := auth.GenerateToken(sessionID, expiresAt)
	require.NoError(t, err)
	return token
}

func TestJWTAuthAuthenticateFromAuthorizationHeader(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	token := generateTestToken(t, "header-session", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/edit", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "header-session", sessionID)
}

func TestJWTAuthAuthenticateFromQueryParam(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	token := generateTestToken(t, "query-session", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/edit?token="+token, nil)

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "query-session", sessionID)
}

func TestJWTAuthAuthenticateFromWebSocketProtocol(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	token := generateTestToken(t, "protocol-session", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/edit", nil)
	req.Header.Set("Sec-WebSocket-Protocol", "chat, auth-"+token+", binary")

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "protocol-session", sessionID)
}

func TestJWTAuthAuthenticatePriority(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	headerToken := generateTestToken(t, "header-priority", time.Now().Add(time.Hour))
	queryToken := generateTestToken(t, "query-priority", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/edit?token="+queryToken, nil)
	req.Header.Set("Authorization", "Bearer "+headerToken)

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "header-priority", sessionID)
}

func TestJWTAuthAuthenticateMissingToken(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/edit", nil)

	_, err := auth.Authenticate(req)
	assert.ErrorIs(t, err, editorproto.ErrMissingToken)
}

func TestJWTAuthValidateTokenExpired(t *testing.T) {
	auth := editorproto.NewJWTAuth(testSecret)
	token := generateTestToken(t, "expired-session", time.Now().Add(-time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/edit?token="+token, nil)

	_, err := auth.Authenticate(req)
	assert.ErrorIs(t, err, editorproto.ErrExpiredToken)
}

func TestJWTAuthValidateTokenWrongSecret(t *testing.T) {
	auth1 := editorproto.NewJWTAuth("secret-1")
	auth2 := editorproto.NewJWTAuth("secret-2")

	token, err := auth1.GenerateToken("user", time.Now().Add(time.Hour))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/edit?token="+token, nil)
	_, err = auth2.Authenticate(req)
	assert.ErrorIs(t, err, editorproto.ErrInvalidToken)
}

func TestNoAuthDefaultsToAnonymous(t *testing.T) {
	auth := editorproto.NoAuth{}
	req := httptest.NewRequest(http.MethodGet, "/edit", nil)

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", sessionID)
}

func TestNoAuthUsesConfiguredSessionID(t *testing.T) {
	auth := editorproto.NoAuth{SessionID: "fixed-session"}
	req := httptest.NewRequest(http.MethodGet, "/edit", nil)

	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-session", sessionID)
}

func TestAuthenticatorInterfaceSatisfied(t *testing.T) {
	var _ editorproto.Authenticator = (*editorproto.JWTAuth)(nil)
	var _ editorproto.Authenticator = editorproto.NoAuth{}
	var _ editorproto.Authenticator = (*editorproto.StaticKeyAuth)(nil)
}

func TestStaticKeyAuthAcceptsCorrectKey(t *testing.T) {
	auth, err := editorproto.NewStaticKeyAuth("correct-horse-battery-staple", "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/edit?key=correct-horse-battery-staple", nil)
	sessionID, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "operator", sessionID)
}

func TestStaticKeyAuthRejectsWrongKey(t *testing.T) {
	auth, err := editorproto.NewStaticKeyAuth("correct-horse-battery-staple", "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/edit?key=wrong-key", nil)
	_, err = auth.Authenticate(req)
	assert.ErrorIs(t, err, editorproto.ErrInvalidToken)
}

func TestStaticKeyAuthMissingKey(t *testing.T) {
	auth, err := editorproto.NewStaticKeyAuth("correct-horse-battery-staple", "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/edit", nil)
	_, err = auth.Authenticate(req)
	assert.ErrorIs(t, err, editorproto.ErrMissingToken)
}
