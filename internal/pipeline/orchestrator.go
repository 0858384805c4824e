package pipeline

// orchestrator.go sequences one delivery request through the pipeline:
// validate → resolve config → enrich → encode → transport → respond.
//
// The state machine is linear; there are no branching revisits. Failed is a
// terminal state reachable from every step, and the delivery context (with
// its encoded output) is released unconditionally on exit.

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/haulage-networks/exchange-delivery/internal/database"
	"github.com/haulage-networks/exchange-delivery/internal/delivery"
	"github.com/haulage-networks/exchange-delivery/internal/encoder"
	"github.com/haulage-networks/exchange-delivery/internal/transport"
)

// State names one step of the delivery state machine.
type State string

const (
	StateReceived       State = "Received"
	StateValidated      State = "Validated"
	StateConfigResolved State = "ConfigResolved"
	StateEnriched       State = "Enriched"
	StateEncoded        State = "Encoded"
	StateTransported    State = "Transported"
	StateResponded      State = "Responded"
	StateFailed         State = "Failed"
)

// RecordStore persists delivery records. Implemented by database.Store.
type RecordStore interface {
	InsertReceived(ctx context.Context, rec *database.DeliveryRecord) error
	MarkDelivered(ctx context.Context, id uuid.UUID, receiptNumber string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// MediumTransformer optionally rewrites the working JSON before encoding.
// The field-mapping engine that backs this in production is external; the
// orchestrator only invokes it.
type MediumTransformer func(ctx context.Context, dctx *delivery.Context) error

// Orchestrator runs the delivery pipeline for one request per call.
// It holds only shared, stateless collaborators and is safe for concurrent
// use across simultaneously processing requests.
type Orchestrator struct {
	resolver   delivery.ConfigResolver
	enricher   *delivery.Enricher
	selector   *encoder.Selector
	transports *transport.Strategy
	secrets    transport.SecretStore
	vault      string
	store      RecordStore
	transform  MediumTransformer
	logger     *slog.Logger
}

// NewOrchestrator wires the pipeline's collaborators together. transform may
// be nil when no pre-encoding rewrite is configured.
func NewOrchestrator(
	resolver delivery.ConfigResolver,
	enricher *delivery.Enricher,
	selector *encoder.Selector,
	transports *transport.Strategy,
	secrets transport.SecretStore,
	vault string,
	store RecordStore,
	transform MediumTransformer,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:   resolver,
		enricher:   enricher,
		selector:   selector,
		transports: transports,
		secrets:    secrets,
		vault:      vault,
		store:      store,
		transform:  transform,
		logger:     logger,
	}
}

// Process runs one delivery request through the pipeline and returns the
// response envelope for the caller to persist or publish.
//
// The raw inbound message is stored before any processing. On any failure the
// record is marked failed, the error is logged with the correlation id, and
// the error propagates so the trigger layer can decide on redelivery.
func (o *Orchestrator) Process(ctx context.Context, rawMessage []byte, req *delivery.DeliveryRequest) (*delivery.DeliveryResponse, error) {
	dctx := delivery.NewContext(req)

	// The audit record exists whether or not the pipeline succeeds.
	checksum, err := delivery.PayloadChecksum(req.Payload)
	if err != nil {
		checksum = ""
	}
	if err := o.store.InsertReceived(ctx, &database.DeliveryRecord{
		ID:              dctx.RequestID,
		CorrelationID:   req.CorrelationID,
		SourceSystemID:  req.SourceSystemID,
		MessageType:     req.MessageType,
		RawMessage:      rawMessage,
		PayloadChecksum: checksum,
	}); err != nil {
		return nil, delivery.WrapInternalError(err, "failed to persist delivery record")
	}

	resp, err := o.run(ctx, dctx)

	// Guaranteed stream release on every exit path.
	if closeErr := dctx.Close(); closeErr != nil {
		o.logger.Warn("failed to release encoded output",
			slog.String("correlation_id", req.CorrelationID),
			slog.String("error", closeErr.Error()),
		)
	}

	if err != nil {
		o.fail(ctx, dctx, err)
		return nil, err
	}

	if err := o.store.MarkDelivered(ctx, dctx.RequestID, req.InvoiceID()); err != nil {
		o.logger.Error("failed to mark delivery record delivered",
			slog.String("correlation_id", req.CorrelationID),
			slog.String("record_id", dctx.RequestID.String()),
			slog.String("error", err.Error()),
		)
	}

	return resp, nil
}

// run advances the state machine. Any returned error sends the delivery to
// the terminal Failed state.
func (o *Orchestrator) run(ctx context.Context, dctx *delivery.Context) (*delivery.DeliveryResponse, error) {
	req := dctx.Request
	state := StateReceived

	// Received → Validated
	if errs := delivery.ValidateRequest(req); len(errs) > 0 {
		return nil, delivery.NewValidationError(strings.Join(errs, "; "))
	}
	state = StateValidated
	o.step(dctx, state)

	// Validated → ConfigResolved
	cfg, err := o.resolver.Resolve(ctx, req.Platform(), req.BillingCustomerID())
	if err != nil {
		return nil, delivery.WrapConfigurationError(err, "failed to resolve exchange config")
	}
	if cfg == nil {
		return nil, delivery.NewConfigurationError("no exchange config matches the request")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dctx.Config = cfg
	state = StateConfigResolved
	o.step(dctx, state)

	// ConfigResolved → Enriched
	if err := o.enricher.Enrich(ctx, dctx); err != nil {
		return nil, err
	}
	state = StateEnriched
	o.step(dctx, state)

	// Optional pre-encoding rewrite of the medium.
	if o.transform != nil {
		if err := o.transform(ctx, dctx); err != nil {
			return nil, delivery.WrapInternalError(err, "medium transform failed")
		}
	}

	// Enriched → Encoded
	enc, err := o.selector.Select(dctx.ActiveConfiguration().AdapterType)
	if err != nil {
		return nil, err
	}
	encoded, err := enc.EncodeMessage(ctx, dctx)
	if err != nil {
		return nil, err
	}
	dctx.Encoded = encoded
	state = StateEncoded
	o.step(dctx, state)

	// Encoded → Transported
	instructions, err := transport.ResolveInstructions(ctx, o.secrets, o.vault, dctx.ActiveConfiguration())
	if err != nil {
		return nil, err
	}
	if err := o.transports.Deliver(ctx, instructions, encoded); err != nil {
		return nil, err
	}
	state = StateTransported
	o.step(dctx, state)

	// Transported → Responded
	resp, err := delivery.ResponseFor(req)
	if err != nil {
		return nil, err
	}
	o.step(dctx, StateResponded)

	return resp, nil
}

func (o *Orchestrator) step(dctx *delivery.Context, state State) {
	o.logger.Debug("delivery state transition",
		slog.String("correlation_id", dctx.Request.CorrelationID),
		slog.String("record_id", dctx.RequestID.String()),
		slog.String("state", string(state)),
	)
}

func (o *Orchestrator) fail(ctx context.Context, dctx *delivery.Context, err error) {
	o.logger.Error("delivery failed",
		slog.String("correlation_id", dctx.Request.CorrelationID),
		slog.String("record_id", dctx.RequestID.String()),
		slog.String("error_code", string(delivery.CodeOf(err))),
		slog.Bool("retryable", delivery.IsRetryable(err)),
		slog.String("error", err.Error()),
	)

	if dbErr := o.store.MarkFailed(ctx, dctx.RequestID, err.Error()); dbErr != nil {
		o.logger.Error("failed to mark delivery record failed",
			slog.String("record_id", dctx.RequestID.String()),
			slog.String("error", dbErr.Error()),
		)
	}
}
