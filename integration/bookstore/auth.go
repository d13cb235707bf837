package bookstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bookhaven/storefront/core/session"
)

// TokenCookie is the cookie the API may use instead of a token in the body.
const TokenCookie = "token"

var _ session.Authenticator = (*Client)(nil)

// CheckSession asks who token belongs to.
func (c *Client) CheckSession(ctx context.Context, token string) (session.Identity, error) {
	if token == "" {
		return session.Identity{}, ErrUnauthorized
	}
	resp, err := c.do(ctx, request{op: "check_session", method: http.MethodGet, path: "/auth/me", token: token})
	if err != nil {
		return session.Identity{}, err
	}
	identity := parseIdentity(resp.json())
	if identity.ID == "" {
		return session.Identity{}, fmt.Errorf("%w: check_session: no user id", ErrUnexpectedResponse)
	}
	return identity, nil
}

// Login exchanges credentials for an identity and a bearer token.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.Identity, string, error) {
	body, err := json.Marshal(map[string]string{"email": creds.Email, "password": creds.Password})
	if err != nil {
		return session.Identity{}, "", err
	}
	resp, err := c.do(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return session.Identity{}, "", err
	}

	parsed := resp.json()
	identity := parseIdentity(parsed)
	token := parseToken(parsed)
	if token == "" {
		for _, ck := range resp.cookies {
			if ck.Name == TokenCookie {
				token = ck.Value
			}
		}
	}
	if identity.ID == "" || token == "" {
		return session.Identity{}, "", fmt.Errorf("%w: login: missing user or token", ErrUnexpectedResponse)
	}
	return identity, token, nil
}

// Logout invalidates the server-side session of token.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, request{op: "logout", method: http.MethodPost, path: "/auth/logout", token: token})
	return err
}
