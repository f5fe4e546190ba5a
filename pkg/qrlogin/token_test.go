package qrlogin_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/zf1976/pancli/pkg/qrlogin"
)

func TestAccessToken_ExpiresAt(t *testing.T) {
	obtained := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tok := &qrlogin.AccessToken{ExpireTime: "2024-01-01T14:00:00Z", ExpiresIn: 60, ObtainedAt: obtained}
	require.True(t, tok.ExpiresAt().Equal(time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)))

	tok = &qrlogin.AccessToken{ExpiresIn: 7200, ObtainedAt: obtained}
	require.True(t, tok.ExpiresAt().Equal(obtained.Add(2*time.Hour)))

	tok = &qrlogin.AccessToken{ExpireTime: "tomorrow"}
	require.True(t, tok.ExpiresAt().IsZero())

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": float64(1893456000),
	}).SignedString([]byte("unknown to the client"))
	require.NoError(t, err)
	tok = &qrlogin.AccessToken{AccessToken: signed}
	require.Equal(t, int64(1893456000), tok.ExpiresAt().Unix())
}

func TestAccessToken_OAuth2(t *testing.T) {
	tok := &qrlogin.AccessToken{
		AccessToken:  "T1",
		RefreshToken: "R1",
		ExpireTime:   "2030-01-01T00:00:00Z",
	}
	o := tok.OAuth2()
	require.Equal(t, "T1", o.AccessToken)
	require.Equal(t, "R1", o.RefreshToken)
	require.Equal(t, "Bearer", o.TokenType)
	require.True(t, o.Expiry.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, o.Valid())
}

func TestAccessToken_Claims(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "user-1",
		"exp":    float64(1893456000),
	}).SignedString([]byte("unknown to the client"))
	require.NoError(t, err)

	claims, err := (&qrlogin.AccessToken{AccessToken: signed}).Claims()
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["userId"])
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	require.Equal(t, int64(1893456000), exp.Unix())

	_, err = (&qrlogin.AccessToken{AccessToken: "opaque"}).Claims()
	require.ErrorIs(t, err, qrlogin.ErrNotJWT)
}

func TestAccessToken_Subject(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
	}).SignedString([]byte("unknown to the client"))
	require.NoError(t, err)
	require.Equal(t, "user-1", (&qrlogin.AccessToken{AccessToken: signed}).Subject())
	require.Empty(t, (&qrlogin.AccessToken{AccessToken: "opaque"}).Subject())
}

func TestAccessToken_StringHidesSecrets(t *testing.T) {
	tok := &qrlogin.AccessToken{AccessToken: "secret-access", RefreshToken: "secret-refresh", UserID: "user-1"}
	s := tok.String()
	require.Contains(t, s, "user-1")
	require.NotContains(t, s, "secret")
}
