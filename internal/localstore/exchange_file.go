package localstore

// exchange_file.go loads exchange configs and catalog entities from JSON
// files. The authoring system that maintains these records (and the scope
// precedence that picks one config per customer) lives elsewhere; the files
// hold already-resolved configs keyed by platform and billing customer.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// exchangeEntry is one resolved config binding in the exchange file.
// An entry with a nil CustomerID is the platform default.
type exchangeEntry struct {
	Platform   string                   `json:"platform"`
	CustomerID uuid.UUID                `json:"customerId,omitempty"`
	Config     *delivery.ExchangeConfig `json:"config"`
}

// FileConfigResolver resolves exchange configs from a JSON file.
type FileConfigResolver struct {
	entries []exchangeEntry
}

// NewFileConfigResolver loads the exchange file.
func NewFileConfigResolver(path string) (*FileConfigResolver, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from server configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange config file %s: %w", path, err)
	}

	var entries []exchangeEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("exchange config file %s is invalid: %w", path, err)
	}

	return &FileConfigResolver{entries: entries}, nil
}

// Resolve returns the config bound to (platform, customer), falling back to
// the platform default. Returns nil when nothing matches.
func (r *FileConfigResolver) Resolve(_ context.Context, platform string, customerID uuid.UUID) (*delivery.ExchangeConfig, error) {
	var platformDefault *delivery.ExchangeConfig

	for _, e := range r.entries {
		if e.Platform != platform {
			continue
		}
		if e.CustomerID == customerID {
			return e.Config, nil
		}
		if e.CustomerID == uuid.Nil {
			platformDefault = e.Config
		}
	}

	return platformDefault, nil
}

// catalogFile is the on-disk shape of the catalog.
type catalogFile struct {
	SourceFields      []delivery.SourceField      `json:"sourceFields"`
	DestinationFields []delivery.DestinationField `json:"destinationFields"`
	ValueFormats      []delivery.ValueFormat      `json:"valueFormats"`
}

// FileCatalog serves catalog entities from a JSON file.
type FileCatalog struct {
	sourceFields      map[uuid.UUID]delivery.SourceField
	destinationFields map[uuid.UUID]delivery.DestinationField
	valueFormats      map[uuid.UUID]delivery.ValueFormat
}

// NewFileCatalog loads the catalog file.
func NewFileCatalog(path string) (*FileCatalog, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from server configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("catalog file %s is invalid: %w", path, err)
	}

	c := &FileCatalog{
		sourceFields:      make(map[uuid.UUID]delivery.SourceField, len(file.SourceFields)),
		destinationFields: make(map[uuid.UUID]delivery.DestinationField, len(file.DestinationFields)),
		valueFormats:      make(map[uuid.UUID]delivery.ValueFormat, len(file.ValueFormats)),
	}
	for _, f := range file.SourceFields {
		c.sourceFields[f.ID] = f
	}
	for _, f := range file.DestinationFields {
		c.destinationFields[f.ID] = f
	}
	for _, f := range file.ValueFormats {
		c.valueFormats[f.ID] = f
	}
	return c, nil
}

func (c *FileCatalog) SourceFields(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]delivery.SourceField, error) {
	out := make(map[uuid.UUID]delivery.SourceField, len(ids))
	for _, id := range ids {
		if f, ok := c.sourceFields[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}

func (c *FileCatalog) DestinationFields(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]delivery.DestinationField, error) {
	out := make(map[uuid.UUID]delivery.DestinationField, len(ids))
	for _, id := range ids {
		if f, ok := c.destinationFields[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}

func (c *FileCatalog) ValueFormats(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]delivery.ValueFormat, error) {
	out := make(map[uuid.UUID]delivery.ValueFormat, len(ids))
	for _, id := range ids {
		if f, ok := c.valueFormats[id]; ok {
			out[id] = f
		}
	}
	return out, nil
}
