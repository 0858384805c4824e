package transport

// secrets.go defines the secret-store contract used to resolve transport
// credentials at send time.
//
// The secret-store client itself is an external collaborator; the pipeline
// only depends on this interface. Secrets are resolved fresh for every
// delivery attempt and never cached by the pipeline.

import (
	"context"
	"crypto/tls"
)

// SecretStore retrieves named secrets from a vault. Implementations are
// shared, stateless collaborators safe for concurrent use.
type SecretStore interface {
	// Secret returns the named secret value from the given vault.
	Secret(ctx context.Context, vault, name string) (string, error)

	// Certificate returns the named certificate (with private key) from the
	// given vault.
	Certificate(ctx context.Context, vault, name string) (tls.Certificate, error)
}
