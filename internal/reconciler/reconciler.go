package reconciler

// reconciler.go polls the receiving system's receipt-status endpoint and maps
// the reported statuses back onto local delivery records.
//
// The receiving system has no push channel, so reconciliation is a periodic
// pull: gather outstanding receipt numbers, query in one batch, update. A
// failed poll is logged and retried on the next tick; it never crashes the
// process or blocks later ticks, and ticks never overlap.

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/haulage-networks/exchange-delivery/internal/transport"
)

// Receipt statuses reported by the receiving system. The set is open: unknown
// statuses are stored as-is and treated as unsettled.
const (
	StatusSubmitted = "Submitted"
	StatusApproved  = "Approved"
	StatusDisputed  = "Disputed"
	StatusCancelled = "Cancelled"
	StatusSaved     = "Saved"
)

// settledStatuses are terminal: records with these statuses drop out of the
// outstanding set.
var settledStatuses = map[string]bool{
	StatusApproved:  true,
	StatusDisputed:  true,
	StatusCancelled: true,
}

// ReceiptStore is the slice of the delivery-record store the reconciler needs.
// Implemented by database.Store.
type ReceiptStore interface {
	OutstandingReceipts(ctx context.Context, limit int) ([]string, error)
	UpdateReceiptStatus(ctx context.Context, receiptNumber, status string, settled bool) error
}

// Config carries the reconciler's settings.
type Config struct {
	// BaseURL is the receipt-status endpoint host.
	BaseURL string

	// Vault and CertName locate the client certificate in the secret store.
	Vault    string
	CertName string

	Interval    time.Duration
	BatchSize   int
	HTTPTimeout time.Duration
}

// Reconciler runs the periodic receipt-status poll.
type Reconciler struct {
	store   ReceiptStore
	secrets transport.SecretStore
	cfg     Config
	logger  *slog.Logger

	// inFlight guards against overlapping polls (single-flight per tick).
	inFlight atomic.Bool
}

// New creates a Reconciler.
func New(store ReceiptStore, secrets transport.SecretStore, cfg Config, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:   store,
		secrets: secrets,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run polls on the configured interval until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("status reconciler started",
		slog.String("base_url", r.cfg.BaseURL),
		slog.Duration("interval", r.cfg.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("status reconciler stopped")
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one poll unless a previous poll is still in flight. Errors are
// logged, never returned: the next tick retries.
func (r *Reconciler) Tick(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Warn("skipping reconciliation tick: previous poll still in flight")
		return
	}
	defer r.inFlight.Store(false)

	if err := r.pollOnce(ctx); err != nil {
		r.logger.Error("reconciliation poll failed",
			slog.String("error", err.Error()),
		)
	}
}

// receiptStatus is one entry of the poll response.
type receiptStatus struct {
	ReceiptNumber string `json:"receiptNumber"`
	Status        string `json:"status"`
}

func (r *Reconciler) pollOnce(ctx context.Context) error {
	receipts, err := r.store.OutstandingReceipts(ctx, r.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to gather outstanding receipts: %w", err)
	}
	if len(receipts) == 0 {
		return nil
	}

	statuses, err := r.queryStatuses(ctx, receipts)
	if err != nil {
		return err
	}

	updated := 0
	for _, st := range statuses {
		if st.ReceiptNumber == "" {
			continue
		}
		if err := r.store.UpdateReceiptStatus(ctx, st.ReceiptNumber, st.Status, settledStatuses[st.Status]); err != nil {
			r.logger.Error("failed to update receipt status",
				slog.String("receipt_number", st.ReceiptNumber),
				slog.String("status", st.Status),
				slog.String("error", err.Error()),
			)
			continue
		}
		updated++
	}

	r.logger.Info("reconciliation poll complete",
		slog.Int("queried", len(receipts)),
		slog.Int("updated", updated),
	)
	return nil
}

// queryStatuses sends the batch to the receipt-status endpoint over a
// certificate-authenticated channel, retrying transient failures with
// backoff within the tick.
func (r *Reconciler) queryStatuses(ctx context.Context, receipts []string) ([]receiptStatus, error) {
	client, err := r.newClient(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string][]string{"receiptNumbers": receipts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal receipt batch: %w", err)
	}

	var statuses []receiptStatus
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(time.Second))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/receipt-status", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("receipt-status endpoint returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("receipt-status endpoint returned %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(data, &statuses)
	})
	if err != nil {
		return nil, fmt.Errorf("receipt-status query failed: %w", err)
	}

	return statuses, nil
}

// newClient builds the HTTP client for one poll, resolving the client
// certificate from the secret store. The certificate is never cached across
// polls.
func (r *Reconciler) newClient(ctx context.Context) (*http.Client, error) {
	client := &http.Client{Timeout: r.cfg.HTTPTimeout}

	if r.cfg.CertName == "" {
		return client, nil
	}

	cert, err := r.secrets.Certificate(ctx, r.cfg.Vault, r.cfg.CertName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receipt-status certificate: %w", err)
	}

	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		},
	}
	return client, nil
}
