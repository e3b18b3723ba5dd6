package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tuli_go/internal/domain"

	"golang.org/x/time/rate"
)

// MaxProfileAddresses is the largest batch the profile service accepts.
const MaxProfileAddresses = 100

const maxProfileBody = 4 << 20

type profileRequest struct {
	Addresses []string `json:"addresses"`
}

type profileRecorder interface {
	ProfileRequest(outcome string)
}

type nopProfileRecorder struct{}

func (nopProfileRecorder) ProfileRequest(string) {}

// ProfileClient looks up user profiles by address on the profile service.
type ProfileClient struct {
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	store      domain.ProfileRepository
	metrics    profileRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// ProfileOption configures a ProfileClient.
type ProfileOption func(*ProfileClient)

// WithProfileStore caches every returned profile that carries an address.
func WithProfileStore(store domain.ProfileRepository) ProfileOption {
	return func(c *ProfileClient) { c.store = store }
}

func WithProfileMetrics(m *Metrics) ProfileOption {
	return func(c *ProfileClient) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithProfileLogger(l *slog.Logger) ProfileOption {
	return func(c *ProfileClient) { c.logger = l.With(slog.String("module", "profiles")) }
}

// NewProfileClient creates a client for apiURL. A zero timeout means 10s and
// a non-positive rps disables the client-side rate limit.
func NewProfileClient(apiURL string, timeout time.Duration, rps float64, opts ...ProfileOption) *ProfileClient {
	if apiURL == "" {
		apiURL = DefaultProfilesURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	c := &ProfileClient{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
		metrics: nopProfileRecorder{},
		logger:  slog.Default().With(slog.String("module", "profiles")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profiles posts addresses to the profile service and returns the raw
// profile objects. The batch must hold 1 to MaxProfileAddresses entries;
// otherwise no request is sent.
func (c *ProfileClient) Profiles(ctx context.Context, addresses []string) ([]json.RawMessage, error) {
	switch {
	case len(addresses) == 0:
		c.metrics.ProfileRequest("rejected")
		return nil, domain.ErrEmptyAddresses
	case len(addresses) > MaxProfileAddresses:
		c.metrics.ProfileRequest("rejected")
		return nil, domain.ErrTooManyAddresses
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	profiles, err := c.doRequest(ctx, addresses)
	if err != nil {
		c.metrics.ProfileRequest(profileOutcome(err))
		return nil, err
	}
	c.metrics.ProfileRequest("ok")

	if c.store != nil {
		if err := c.cache(profiles); err != nil {
			c.logger.Warn("profile cache write failed", slog.Any("error", err))
		}
	}
	return profiles, nil
}

func (c *ProfileClient) doRequest(ctx context.Context, addresses []string) ([]json.RawMessage, error) {
	body, err := json.Marshal(profileRequest{Addresses: addresses})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("profiles", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBody))
	if err != nil {
		return nil, domain.NewNetworkError("profiles", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	// null, {} and [] all count as a failed retrieval.
	var profiles []json.RawMessage
	if err := json.Unmarshal(data, &profiles); err != nil || len(profiles) == 0 {
		return nil, domain.ErrProfileRetrieval
	}

	c.logger.Debug("profiles retrieved",
		slog.Int("requested", len(addresses)),
		slog.Int("returned", len(profiles)),
	)
	return profiles, nil
}

func (c *ProfileClient) cache(profiles []json.RawMessage) error {
	now := c.now()
	recs := make([]domain.ProfileRecord, 0, len(profiles))
	for _, p := range profiles {
		var head struct {
			Address string `json:"address"`
		}
		if err := json.Unmarshal(p, &head); err != nil || head.Address == "" {
			continue
		}
		recs = append(recs, domain.ProfileRecord{
			Address:   strings.ToLower(head.Address),
			Payload:   string(p),
			FetchedAt: now,
		})
	}
	if len(recs) == 0 {
		return nil
	}
	return c.store.UpsertProfiles(recs)
}

// Cached returns the last stored profile for address, if any.
func (c *ProfileClient) Cached(address string) (json.RawMessage, bool, error) {
	if c.store == nil {
		return nil, false, nil
	}
	rec, err := c.store.GetProfile(strings.ToLower(address))
	if err != nil {
		return nil, false, fmt.Errorf("profile cache: %w", err)
	}
	if rec == nil {
		return nil, false, nil
	}
	return json.RawMessage(rec.Payload), true, nil
}

func profileOutcome(err error) string {
	switch err.(type) {
	case *domain.APIError:
		return "api_error"
	case *domain.NetworkError:
		return "network_error"
	}
	if err == domain.ErrProfileRetrieval {
		return "empty"
	}
	return "error"
}
