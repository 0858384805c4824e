package localstore

// localstore.go provides filesystem-backed implementations of the blob-store
// and secret-store interfaces for development and single-node deployments.
// Production deployments substitute the platform's blob and vault clients.

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBlobStore serves attachment blobs from a directory tree:
// <root>/<container>/<path>.
type FileBlobStore struct {
	root string
}

// NewFileBlobStore creates a blob store rooted at dir.
func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{root: dir}
}

// Fetch reads the blob at container/path. Reads are confined to the store's
// root directory.
func (s *FileBlobStore) Fetch(_ context.Context, container, path string) ([]byte, error) {
	root, err := os.OpenRoot(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob root %s: %w", s.root, err)
	}
	defer root.Close()

	content, err := root.ReadFile(filepath.Join(container, path))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s/%s: %w", container, path, err)
	}
	return content, nil
}

// FileSecretStore serves secrets from a directory tree: <root>/<vault>/<name>
// holds the secret value; certificates are stored as a <name>.pem /
// <name>-key.pem pair.
type FileSecretStore struct {
	root string
}

// NewFileSecretStore creates a secret store rooted at dir.
func NewFileSecretStore(dir string) *FileSecretStore {
	return &FileSecretStore{root: dir}
}

// Secret returns the named secret from the vault subdirectory, with trailing
// whitespace trimmed.
func (s *FileSecretStore) Secret(_ context.Context, vault, name string) (string, error) {
	root, err := os.OpenRoot(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to open secrets root %s: %w", s.root, err)
	}
	defer root.Close()

	content, err := root.ReadFile(filepath.Join(vault, name))
	if err != nil {
		return "", fmt.Errorf("failed to read secret %s/%s: %w", vault, name, err)
	}
	return strings.TrimRight(string(content), "\r\n"), nil
}

// Certificate loads the named certificate/key pair from the vault subdirectory.
func (s *FileSecretStore) Certificate(_ context.Context, vault, name string) (tls.Certificate, error) {
	root, err := os.OpenRoot(s.root)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to open secrets root %s: %w", s.root, err)
	}
	defer root.Close()

	certPEM, err := root.ReadFile(filepath.Join(vault, name+".pem"))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to read certificate %s/%s: %w", vault, name, err)
	}
	keyPEM, err := root.ReadFile(filepath.Join(vault, name+"-key.pem"))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to read certificate key %s/%s: %w", vault, name, err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("invalid certificate %s/%s: %w", vault, name, err)
	}
	return cert, nil
}
