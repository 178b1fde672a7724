package satoken

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTokenURL is the ArborDB identity endpoint for the JWT-bearer
	// grant.
	DefaultTokenURL = "https://oauth.arbordb.io/token"

	// DefaultTTL is how long an issued token is considered usable. It sits
	// well under the provider's real one-hour lifetime so a token never
	// expires mid-request.
	DefaultTTL = 55 * time.Minute

	grantType         = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime = time.Hour
)

// DefaultScopes grant read/write access to the datastore.
var DefaultScopes = []string{
	"https://api.arbordb.io/auth/datastore",
	"https://api.arbordb.io/auth/userinfo.email",
}

// Option configures a Provider.
type Option func(*Provider)

// WithCache attaches an external token cache shared across clients.
func WithCache(cache Cache) Option {
	return func(p *Provider) { p.cache = cache }
}

// WithHTTPClient overrides the HTTP client used for the token exchange.
func WithHTTPClient(h *http.Client) Option {
	return func(p *Provider) {
		if h != nil {
			p.httpClient = h
		}
	}
}

// WithLogger attaches a logger; swallowed cache failures are reported there.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// WithScopes overrides the requested OAuth scopes.
func WithScopes(scopes ...string) Option {
	return func(p *Provider) {
		if len(scopes) > 0 {
			p.scopes = scopes
		}
	}
}

// WithTokenURL overrides the identity endpoint, e.g. for tests.
func WithTokenURL(tokenURL string) Option {
	return func(p *Provider) {
		if tokenURL != "" {
			p.tokenURL = tokenURL
		}
	}
}

// WithTTL overrides the lifetime applied to issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock overrides the time source, e.g. for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// Provider exchanges service-account credentials for bearer tokens and
// caches the result. It is safe for concurrent use.
type Provider struct {
	creds      Credentials
	signingKey *rsa.PrivateKey
	scopes     []string
	tokenURL   string
	ttl        time.Duration
	cache      Cache
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time

	mu      sync.Mutex
	current Record
	group   singleflight.Group
}

// New validates the credentials, parses the PEM private key and returns a
// ready Provider.
func New(creds Credentials, opts ...Option) (*Provider, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(creds.normalizedPrivateKey())
	if err != nil {
		return nil, fmt.Errorf("satoken: parse private key: %w", err)
	}

	p := &Provider{
		creds:      creds,
		signingKey: key,
		scopes:     DefaultScopes,
		tokenURL:   DefaultTokenURL,
		ttl:        DefaultTTL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	if creds.TokenURI != "" {
		p.tokenURL = creds.TokenURI
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Token returns a bearer token, refreshing it when the cached one has
// expired. Concurrent callers needing a refresh share a single exchange.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if rec, ok := p.currentValid(); ok {
		return rec.Token, nil
	}

	v, err, _ := p.group.Do("token", func() (any, error) {
		return p.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(Record).Token, nil
}

func (p *Provider) currentValid() (Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.current
	return rec, rec.Valid(p.now())
}

func (p *Provider) refresh(ctx context.Context) (Record, error) {
	// Another caller may have completed a refresh while this one was queued
	// on the singleflight group.
	if rec, ok := p.currentValid(); ok {
		return rec, nil
	}

	now := p.now()

	if p.cache != nil {
		rec, err := p.cache.Get(ctx)
		if err != nil {
			p.logger.Warn().Err(err).Msg("satoken: token cache read failed")
		} else if rec != nil && rec.Valid(now) {
			p.store(*rec)
			return *rec, nil
		}
	}

	rec, err := p.exchange(ctx, now)
	if err != nil {
		return Record{}, err
	}
	p.store(rec)

	if p.cache != nil {
		if err := p.cache.Set(ctx, rec); err != nil {
			p.logger.Warn().Err(err).Msg("satoken: token cache write failed")
		}
	}
	return rec, nil
}

func (p *Provider) store(rec Record) {
	p.mu.Lock()
	p.current = rec
	p.mu.Unlock()
}

func (p *Provider) exchange(ctx context.Context, now time.Time) (Record, error) {
	assertion, err := p.signAssertion(now)
	if err != nil {
		return Record{}, err
	}

	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Record{}, fmt.Errorf("satoken: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("satoken: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, fmt.Errorf("satoken: read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Record{}, fmt.Errorf("satoken: token exchange failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Record{}, fmt.Errorf("satoken: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return Record{}, fmt.Errorf("satoken: token response missing access_token")
	}

	return Record{
		Token:     payload.AccessToken,
		ExpiresAt: now.Add(p.ttl).UnixMilli(),
	}, nil
}

func (p *Provider) signAssertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   p.creds.ClientEmail,
		"sub":   p.creds.ClientEmail,
		"aud":   p.tokenURL,
		"scope": strings.Join(p.scopes, " "),
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if p.creds.PrivateKeyID != "" {
		token.Header["kid"] = p.creds.PrivateKeyID
	}
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("satoken: sign assertion: %w", err)
	}
	return signed, nil
}
