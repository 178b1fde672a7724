package satoken

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Credentials identify a service account. The JSON field names match the
// key file downloaded from the ArborDB console, so a file can be decoded
// straight into this struct.
type Credentials struct {
	ProjectID    string `json:"project_id" validate:"required"`
	ClientEmail  string `json:"client_email" validate:"required,email"`
	PrivateKey   string `json:"private_key" validate:"required"`
	PrivateKeyID string `json:"private_key_id"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri" validate:"omitempty,url"`
}

var credentialsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the required credential fields are present.
func (c Credentials) Validate() error {
	if err := credentialsValidator.Struct(c); err != nil {
		return fmt.Errorf("satoken: invalid credentials: %w", err)
	}
	return nil
}

// normalizedPrivateKey undoes the literal "\n" escaping that key material
// picks up when it travels through environment variables or single-line JSON.
func (c Credentials) normalizedPrivateKey() []byte {
	return []byte(strings.ReplaceAll(c.PrivateKey, `\n`, "\n"))
}

// LoadCredentialsFile reads a service-account key file.
func LoadCredentialsFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("satoken: read credentials file: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("satoken: decode credentials file: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
