package qrlogin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var ErrNotJWT = errors.New("access token is not a JWT")

// AccessToken is the provider's final login payload.
type AccessToken struct {
	AccessToken    string `json:"access_token" yaml:"access_token"`
	RefreshToken   string `json:"refresh_token" yaml:"refresh_token"`
	ExpiresIn      int64  `json:"expires_in" yaml:"expires_in"`
	TokenType      string `json:"token_type" yaml:"token_type"`
	UserID         string `json:"user_id" yaml:"user_id"`
	UserName       string `json:"user_name" yaml:"user_name"`
	NickName       string `json:"nick_name" yaml:"nick_name"`
	DefaultDriveID string `json:"default_drive_id" yaml:"default_drive_id"`
	ExpireTime     string `json:"expire_time" yaml:"expire_time"`

	// ObtainedAt is set locally when the token is received.
	ObtainedAt time.Time `json:"-" yaml:"-"`
}

// ExpiresAt prefers the provider's expire_time, then expires_in counted from ObtainedAt, then the
// access token's own exp claim.  It returns the zero time when none is known.
func (t *AccessToken) ExpiresAt() time.Time {
	if t.ExpireTime != "" {
		if at, err := time.Parse(time.RFC3339, t.ExpireTime); err == nil {
			return at
		}
	}
	if t.ExpiresIn > 0 && !t.ObtainedAt.IsZero() {
		return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if claims, err := t.Claims(); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Time{}
}

// OAuth2 returns the token in the form oauth2 HTTP clients consume.
func (t *AccessToken) OAuth2() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    tokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt(),
	}
}

// Claims decodes the access token's JWT claims without verifying its signature.
func (t *AccessToken) Claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJWT, err)
	}
	return claims, nil
}

// Subject returns the sub claim of the access token, or "" when it has none or is not a JWT.
func (t *AccessToken) Subject() string {
	claims, err := t.Claims()
	if err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

func (t *AccessToken) String() string {
	return fmt.Sprintf("AccessToken{user_id=%s, token_type=%s, expires=%s}", t.UserID, t.TokenType, t.ExpiresAt().Format(time.RFC3339))
}
