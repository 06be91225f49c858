package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccountKey represents a Google service account key file
type ServiceAccountKey struct {
	Type         string `json:"type" validate:"required,eq=service_account"`
	ProjectID    string `json:"project_id" validate:"required"`
	PrivateKeyID string `json:"private_key_id" validate:"required"`
	PrivateKey   string `json:"private_key" validate:"required"`
	ClientEmail  string `json:"client_email" validate:"required,email"`
	ClientID     string `json:"client_id,omitempty"`
	AuthURI      string `json:"auth_uri,omitempty" validate:"omitempty,url"`
	TokenURI     string `json:"token_uri" validate:"required,url"`

	// raw holds the file contents as read, for handing to the google auth library
	raw []byte
}

// LoadServiceAccountFromPath loads and validates a service account key file
func LoadServiceAccountFromPath(path string) (*ServiceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if err := ValidateServiceAccount(&key); err != nil {
		return nil, err
	}

	key.raw = data
	return &key, nil
}

// ValidateServiceAccount validates the service account key
func ValidateServiceAccount(key *ServiceAccountKey) error {
	if err := validate.Struct(key); err != nil {
		return fmt.Errorf("credentials validation failed: %w", err)
	}

	return nil
}

// JSON returns the key as JSON suitable for google.JWTConfigFromJSON
func (k *ServiceAccountKey) JSON() ([]byte, error) {
	if len(k.raw) > 0 {
		return k.raw, nil
	}
	data, err := json.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return data, nil
}
