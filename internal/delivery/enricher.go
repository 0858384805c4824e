package delivery

// enricher.go resolves the catalog entities referenced by the active delivery
// configuration's mappings (source fields, destination fields, value formats).

import (
	"context"

	"github.com/google/uuid"
)

// SourceField is a catalog entry describing where a mapped value comes from
// in the source payload.
type SourceField struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
}

// DestinationField is a catalog entry describing a target field on the
// destination document.
type DestinationField struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	DataType string    `json:"dataType"`
}

// ValueFormat is a catalog entry describing how a mapped value is rendered.
type ValueFormat struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Pattern string    `json:"pattern"`
}

// CatalogClient batch-fetches catalog entities by id. Implementations are
// shared, stateless collaborators safe for concurrent use.
type CatalogClient interface {
	SourceFields(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]SourceField, error)
	DestinationFields(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]DestinationField, error)
	ValueFormats(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ValueFormat, error)
}

// Enricher populates a context's Lookups from the catalog.
type Enricher struct {
	catalog CatalogClient
}

// NewEnricher creates an Enricher backed by the supplied catalog client.
func NewEnricher(catalog CatalogClient) *Enricher {
	return &Enricher{catalog: catalog}
}

// Enrich batch-fetches the entities referenced by the active delivery
// configuration and stores them on dctx.Lookups.
//
// Each of the three id sets is fetched only when non-empty; an empty set
// yields an empty map without a catalog call. No other state is touched.
func (e *Enricher) Enrich(ctx context.Context, dctx *Context) error {
	cfg := dctx.ActiveConfiguration()
	if cfg == nil {
		return NewInternalError("cannot enrich before the exchange config is resolved")
	}

	lookups := Lookups{
		SourceFields:      map[uuid.UUID]SourceField{},
		DestinationFields: map[uuid.UUID]DestinationField{},
		Formats:           map[uuid.UUID]ValueFormat{},
	}

	if ids := cfg.SourceFieldIDs(); len(ids) > 0 {
		fields, err := e.catalog.SourceFields(ctx, ids)
		if err != nil {
			return WrapInternalError(err, "failed to fetch source fields")
		}
		lookups.SourceFields = fields
	}

	if ids := cfg.DestinationFieldIDs(); len(ids) > 0 {
		fields, err := e.catalog.DestinationFields(ctx, ids)
		if err != nil {
			return WrapInternalError(err, "failed to fetch destination fields")
		}
		lookups.DestinationFields = fields
	}

	if ids := cfg.FormatIDs(); len(ids) > 0 {
		formats, err := e.catalog.ValueFormats(ctx, ids)
		if err != nil {
			return WrapInternalError(err, "failed to fetch value formats")
		}
		lookups.Formats = formats
	}

	dctx.Lookups = lookups
	return nil
}
