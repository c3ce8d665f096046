// Package oauth2 implements the OIDC login flow against an external
// identity provider. The rest of the application treats it as an opaque
// source of verified identities.
package oauth2

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"skillswap/cfg"
)

// UserInfo is the verified identity extracted from the provider's ID token.
type UserInfo struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}

// CallbackInfo tells the HTTP layer how to finish the login: which session
// cookie to set and where to send the browser.
type CallbackInfo struct {
	SessionToken string
	RedirectURL  string
}

// CallbackFunc is invoked after the provider round-trip with a verified
// identity. It is where account upsert and profile provisioning happen.
type CallbackFunc func(ctx context.Context, provider string, userInfo *UserInfo, tokenSet *TokenSet) (*CallbackInfo, error)

type Manager struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config

	CallbackHandler CallbackFunc
}

func NewManager(ctx context.Context, conf *cfg.OAuth2Config) (*Manager, error) {
	provider, err := oidc.NewProvider(ctx, conf.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &Manager{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: conf.ClientID}),
		config: oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			RedirectURL:  conf.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthURL returns the provider authorization URL together with the state
// value the caller must persist for CSRF verification.
func (m *Manager) AuthURL() (url, state string, err error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state = base64.RawURLEncoding.EncodeToString(buf)
	return m.config.AuthCodeURL(state), state, nil
}

// Exchange trades the authorization code for tokens and verifies the ID token.
func (m *Manager) Exchange(ctx context.Context, code string) (*UserInfo, *TokenSet, error) {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("code exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, nil, fmt.Errorf("no id_token in token response")
	}

	idToken, err := m.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("parse claims: %w", err)
	}

	userInfo := &UserInfo{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}
	tokenSet := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      rawIDToken,
	}
	return userInfo, tokenSet, nil
}

const stateCookie = "oauth_state"

// GoogleCallbackHandler finishes the Google login round-trip and delegates
// account handling to the manager's CallbackHandler.
func GoogleCallbackHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := c.Cookie(stateCookie)
		if err != nil || state == "" || state != c.Query("state") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
			return
		}
		// The state is single-use; expire it so a replayed callback URL
		// fails the check above.
		c.SetCookie(stateCookie, "", -1, "/", "", false, true)

		userInfo, tokenSet, err := m.Exchange(c.Request.Context(), c.Query("code"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}

		if m.CallbackHandler == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		info, err := m.CallbackHandler(c.Request.Context(), "google", userInfo, tokenSet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.SetCookie("session", info.SessionToken, int((7 * 24 * 3600)), "/", "", false, true)
		c.Redirect(http.StatusSeeOther, info.RedirectURL)
	}
}
