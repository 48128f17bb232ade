// Package ledgerauth supplies bearer credentials for the RPC ledger backend
// through the OAuth2 client-credentials grant.
package ledgerauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	portssvc "github.com/orsa-labs/coa_ledger/internal/core/ports/services"
)

// TokenSource hands out an access token per request. The underlying oauth2
// source caches the token and refreshes it when expired, so asking before
// every ledger call is cheap.
type TokenSource struct {
	source oauth2.TokenSource
}

// NewTokenSource builds a token source for the given token endpoint.
func NewTokenSource(ctx context.Context, tokenURL, clientID, clientSecret string) *TokenSource {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &TokenSource{source: cfg.TokenSource(ctx)}
}

var _ portssvc.BearerTokenSource = (*TokenSource)(nil)

// BearerToken returns a currently valid access token.
func (s *TokenSource) BearerToken(ctx context.Context) (string, error) {
	token, err := s.source.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain ledger access token: %w", err)
	}
	return token.AccessToken, nil
}
