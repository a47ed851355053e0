package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/reliability/circuitbreaker"
	"github.com/yourorg/servicetracker/internal/reliability/retry"
)

// RemoteVerifier delegates verification to an external identity provider over
// HTTP (GET {base}/auth/v1/user with the bearer token). Transient provider
// failures are retried with backoff; repeated failures trip a circuit breaker
// so requests fail fast instead of piling up on a dead provider.
type RemoteVerifier struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   *retry.Config
	logger  *slog.Logger
}

// NewRemoteVerifier creates a verifier against the provider at baseURL.
func NewRemoteVerifier(baseURL string, logger *slog.Logger) *RemoteVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("identity provider circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &RemoteVerifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		breaker: breaker,
		retry: &retry.Config{
			MaxAttempts:       3,
			InitialBackoff:    100 * time.Millisecond,
			MaxBackoff:        2 * time.Second,
			BackoffMultiplier: 2.0,
			// A rejected token will stay rejected; only provider
			// failures are worth retrying.
			RetryIf: func(err error) bool {
				return domain.ErrorCode(err) != domain.EUnauthorized
			},
		},
		logger: logger,
	}
}

type remoteUserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// Verify implements Verifier.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, domain.Errorf(domain.EUnauthorized, "no authorization token provided")
	}
	if !v.breaker.AllowRequest() {
		return nil, domain.Errorf(domain.EInternal, "identity provider unavailable")
	}

	ident, err := retry.Do(ctx, v.retry, v.logger, "identity.verify", func(ctx context.Context) (*Identity, error) {
		return v.fetchUser(ctx, token)
	})
	if err != nil {
		// Rejected tokens are the caller's problem, not provider health.
		if domain.ErrorCode(err) == domain.EUnauthorized {
			v.breaker.RecordSuccess()
			return nil, err
		}
		v.breaker.RecordFailure()
		return nil, domain.OpError(domain.EInternal, "identity.RemoteVerifier.Verify", err)
	}

	v.breaker.RecordSuccess()
	return ident, nil
}

func (v *RemoteVerifier) fetchUser(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.Errorf(domain.EUnauthorized, "invalid token")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, body)
	}

	var user remoteUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, domain.Errorf(domain.EUnauthorized, "invalid token")
	}

	return &Identity{ID: user.ID, Email: user.Email, Name: user.UserMetadata.FullName}, nil
}
