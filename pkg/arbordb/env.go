package arbordb

import (
	"fmt"
	"os"
	"strings"

	"github.com/arbordb/arbordb_sdk_go/pkg/arbordb/mock"
	"github.com/arbordb/arbordb_sdk_go/pkg/satoken"
)

const (
	envMode            = "ARBORDB_RUNTIME_MODE"
	envURL             = "ARBORDB_URL"
	envCredentialsFile = "ARBORDB_CREDENTIALS_FILE"
	envMockSeed        = "ARBORDB_MOCK_SEED"

	modeAuto = "auto"
	modeHTTP = "http"
	modeMock = "mock"

	// mockBaseURL is a placeholder host; the mock transport never dials it.
	mockBaseURL = "sandbox.arbordb.io"
)

// NewFromEnv initialises a Client from ArborDB environment variables and
// returns the resolved mode ("http" or "mock"). Auto mode picks http when
// ARBORDB_URL is set and otherwise falls back to an in-process mock store,
// optionally seeded from ARBORDB_MOCK_SEED.
func NewFromEnv(opts ...Option) (client *Client, mode string, err error) {
	mode = strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	databaseURL := strings.TrimSpace(os.Getenv(envURL))

	switch mode {
	case "", modeAuto:
		if databaseURL != "" {
			return newEnvHTTPClient(databaseURL, opts)
		}
		return newEnvMockClient(opts)
	case modeHTTP:
		if databaseURL == "" {
			return nil, "", fmt.Errorf("arbordb: HTTP mode requires %s", envURL)
		}
		return newEnvHTTPClient(databaseURL, opts)
	case modeMock:
		return newEnvMockClient(opts)
	default:
		return nil, "", fmt.Errorf("arbordb: unsupported %s value %q", envMode, mode)
	}
}

func newEnvHTTPClient(databaseURL string, opts []Option) (*Client, string, error) {
	if path := strings.TrimSpace(os.Getenv(envCredentialsFile)); path != "" {
		creds, err := satoken.LoadCredentialsFile(path)
		if err != nil {
			return nil, "", err
		}
		provider, err := satoken.New(creds)
		if err != nil {
			return nil, "", err
		}
		opts = append([]Option{WithTokenSource(provider)}, opts...)
	}

	client, err := New(databaseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("arbordb: init HTTP client: %w", err)
	}
	return client, modeHTTP, nil
}

func newEnvMockClient(opts []Option) (*Client, string, error) {
	store := mock.New()
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		if err := store.SeedFile(path); err != nil {
			return nil, "", fmt.Errorf("arbordb: load mock seed: %w", err)
		}
	}

	opts = append([]Option{WithHTTPClient(store.HTTPClient())}, opts...)
	client, err := New(mockBaseURL, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("arbordb: init mock client: %w", err)
	}
	return client, modeMock, nil
}
