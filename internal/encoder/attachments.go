package encoder

// attachments.go implements the attachment step shared by every encoder:
// fetch the referenced blobs, apply content-type-driven compression, and
// enforce the configured size limit.
//
// Oversize or unfetchable attachments are skipped with a warning rather than
// aborting the delivery; the remaining attachments still ship.

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/haulage-networks/exchange-delivery/internal/compression"
	"github.com/haulage-networks/exchange-delivery/internal/delivery"
)

// BlobStore fetches attachment content from blob storage. Implementations are
// shared, stateless collaborators safe for concurrent use.
type BlobStore interface {
	Fetch(ctx context.Context, container, path string) ([]byte, error)
}

// FetchedAttachment is one attachment after fetch and optional compression.
type FetchedAttachment struct {
	Ref         delivery.AttachmentRef
	Data        []byte
	ContentType string
	Filename    string
}

// AttachmentFetcher runs the shared attachment step.
type AttachmentFetcher struct {
	blobs       BlobStore
	compressors *compression.Registry
	logger      *slog.Logger

	// concurrency caps how many attachments are fetched at once.
	concurrency int
}

// NewAttachmentFetcher creates the shared attachment step.
func NewAttachmentFetcher(blobs BlobStore, compressors *compression.Registry, logger *slog.Logger, concurrency int) *AttachmentFetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AttachmentFetcher{
		blobs:       blobs,
		compressors: compressors,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Fetch retrieves and compresses the request's attachments when the active
// adapter settings accept attachments. Returns nil when attachments are
// disabled or the request has none.
//
// Attachments are fetched concurrently; the returned slice preserves the
// request's attachment order. Skipped attachments (fetch failure, oversize)
// leave a gap that is compacted out.
func (f *AttachmentFetcher) Fetch(ctx context.Context, dctx *delivery.Context) ([]FetchedAttachment, error) {
	settings := dctx.ActiveConfiguration().Adapter
	if !settings.AcceptsAttachments || len(dctx.Request.Attachments) == 0 {
		return nil, nil
	}

	fetched := make([]*FetchedAttachment, len(dctx.Request.Attachments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, ref := range dctx.Request.Attachments {
		g.Go(func() error {
			att, err := f.fetchOne(gctx, ref, settings)
			if err != nil {
				// Skip and log: a bad attachment must not abort the delivery.
				f.logger.Warn("skipping attachment",
					slog.String("correlation_id", dctx.Request.CorrelationID),
					slog.String("attachment", ref.Filename),
					slog.String("error", err.Error()),
				)
				return nil
			}
			fetched[i] = att
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, delivery.WrapAttachmentError(err, "attachment fetch was cancelled")
	}

	out := make([]FetchedAttachment, 0, len(fetched))
	for _, att := range fetched {
		if att != nil {
			out = append(out, *att)
		}
	}
	return out, nil
}

// FetchParts runs Fetch and wraps the results as attachment parts for
// encoders that emit attachments as separate output parts.
func (f *AttachmentFetcher) FetchParts(ctx context.Context, dctx *delivery.Context) ([]*delivery.EncodedPart, error) {
	fetched, err := f.Fetch(ctx, dctx)
	if err != nil {
		return nil, err
	}

	parts := make([]*delivery.EncodedPart, 0, len(fetched))
	for _, att := range fetched {
		part := delivery.NewPart(att.Data, att.ContentType)
		part.IsAttachment = true
		part.Filename = att.Filename
		parts = append(parts, part)
	}
	return parts, nil
}

func (f *AttachmentFetcher) fetchOne(ctx context.Context, ref delivery.AttachmentRef, settings delivery.AdapterSettings) (*FetchedAttachment, error) {
	data, err := f.blobs.Fetch(ctx, ref.Container, ref.Path)
	if err != nil {
		return nil, delivery.WrapAttachmentError(err, fmt.Sprintf("failed to fetch %s/%s", ref.Container, ref.Path))
	}

	if settings.MaxAttachmentSize > 0 && int64(len(data)) > settings.MaxAttachmentSize {
		return nil, delivery.NewAttachmentError(fmt.Sprintf(
			"attachment %s is %d bytes, exceeding the %d byte limit", ref.Filename, len(data), settings.MaxAttachmentSize))
	}

	att := &FetchedAttachment{
		Ref:         ref,
		Data:        data,
		ContentType: ref.ContentType,
		Filename:    ref.Filename,
	}

	if c, ok := f.compressors.Lookup(ref.ContentType, settings.PreferredCompression); ok {
		compressed, err := c.Compress(ref.Filename, data)
		if err != nil {
			return nil, delivery.WrapAttachmentError(err, fmt.Sprintf("failed to compress %s", ref.Filename))
		}
		att.Data = compressed
		att.ContentType = c.ContentType()
	}

	return att, nil
}
