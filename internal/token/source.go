package token

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/zalando-stups/stups-auth-adapter/internal/credentials"
)

// CredentialsLoader provides the client credentials used for a grant.
type CredentialsLoader interface {
	Load() (credentials.Client, error)
}

// ClientCredentialsSource obtains service tokens with the OAuth2 client credentials grant.
// It reloads client.json for every grant and does no caching, the Supplier does that.
type ClientCredentialsSource struct {
	tokenURL string
	scopes   []string
	store    CredentialsLoader
	client   *http.Client
}

// NewClientCredentialsSource creates a source posting to tokenURL, which already carries the realm selector.
func NewClientCredentialsSource(
	tokenURL string,
	scopes []string,
	store CredentialsLoader,
	client *http.Client,
) *ClientCredentialsSource {
	return &ClientCredentialsSource{
		tokenURL: tokenURL,
		scopes:   scopes,
		store:    store,
		client:   client,
	}
}

// Token implements oauth2.TokenSource.
func (s *ClientCredentialsSource) Token() (*oauth2.Token, error) {
	creds, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load client credentials: %w", err)
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     s.tokenURL,
		Scopes:       s.scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.client)

	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("client credentials grant: %w", err)
	}

	return tok, nil
}
