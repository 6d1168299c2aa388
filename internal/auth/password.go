package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zalando-stups/stups-auth-adapter/internal/credentials"
	"github.com/zalando-stups/stups-auth-adapter/internal/metrics"
)

// maxTokenResponseSize bounds the token document read from the issuer.
const maxTokenResponseSize = 1 << 20

// CredentialsLoader provides the client credentials of this application.
type CredentialsLoader interface {
	Load() (credentials.Client, error)
}

// PasswordConfig holds the issuer settings for password verification.
type PasswordConfig struct {
	// TokenURL is the token endpoint including the employee realm selector.
	TokenURL string
	// Scopes requested with the grant.
	Scopes []string
}

// PasswordVerifier checks username/password pairs with a password grant.
type PasswordVerifier struct {
	config PasswordConfig
	store  CredentialsLoader
	http   *http.Client
}

// NewPasswordVerifier creates a new password verifier.
func NewPasswordVerifier(config PasswordConfig, store CredentialsLoader, httpClient *http.Client) *PasswordVerifier {
	return &PasswordVerifier{
		config: config,
		store:  store,
		http:   httpClient,
	}
}

// Verify asks the issuer whether password is valid for username.
// It never retries and never uses the service token.
func (p *PasswordVerifier) Verify(ctx context.Context, username, password string) Result {
	res := p.verify(ctx, username, password)

	metrics.AuthAttempts.WithLabelValues(res.Outcome.String()).Inc()

	return res
}

func (p *PasswordVerifier) verify(ctx context.Context, username, password string) Result {
	if p.config.TokenURL == "" {
		return internalError(username, ErrTokenURLNotSet)
	}

	client, err := p.store.Load()
	if err != nil {
		return internalError(username, err)
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}

	if len(p.config.Scopes) > 0 {
		form.Set("scope", strings.Join(p.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return internalError(username, fmt.Errorf("build token request: %w", err))
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(client.ClientID, client.ClientSecret)

	resp, err := p.http.Do(req)
	if err != nil {
		return internalError(username, describeTransportError(err))
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Str("username", username).
			Int("status", resp.StatusCode).
			Str("reason", reasonPhrase(resp)).
			Msg("user authentication rejected")

		return Result{Outcome: Rejected, Username: username}
	}

	var doc map[string]any
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseSize)).Decode(&doc); err != nil || doc == nil {
		return internalError(username, ErrUnexpectedBody)
	}

	log.Info().Str("username", username).Msg("user authenticated")

	return Result{Outcome: Authenticated, Username: username}
}

func internalError(username string, err error) Result {
	log.Error().Err(err).Str("username", username).Msg("user authentication failed")

	return Result{Outcome: InternalError, Username: username, Detail: err.Error()}
}

// describeTransportError keeps the operation and cause of a transport error, without the request url.
func describeTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("token request: %s: %w", urlErr.Op, urlErr.Err)
	}

	return fmt.Errorf("token request: %w", err)
}

// reasonPhrase returns the reason phrase sent by the issuer, falling back to the standard text.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}

	return reason
}
