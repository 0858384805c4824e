package database

// store.go persists delivery-request records.
//
// The raw inbound message is stored verbatim before the pipeline runs, so the
// audit trail exists independently of pipeline success or failure.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeliveryRecord is one persisted delivery request.
type DeliveryRecord struct {
	ID              uuid.UUID
	CorrelationID   string
	SourceSystemID  string
	MessageType     string
	Status          string
	RawMessage      []byte
	PayloadChecksum string
	FailureReason   string
	ReceiptNumber   string
	ReceiptStatus   string
	Reconciled      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Delivery record statuses set by the pipeline. Reconciliation statuses
// reported by the receiving system are stored separately in ReceiptStatus.
const (
	StatusReceived  = "received"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Store reads and writes delivery records.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertReceived stores the raw inbound message keyed by the generated id.
// Called before any processing begins.
func (s *Store) InsertReceived(ctx context.Context, rec *DeliveryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO delivery_records
			(id, correlation_id, source_system_id, message_type, status, raw_message, payload_checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.CorrelationID, rec.SourceSystemID, rec.MessageType, StatusReceived, rec.RawMessage, rec.PayloadChecksum,
	)
	if err != nil {
		return fmt.Errorf("failed to insert delivery record %s: %w", rec.ID, err)
	}
	return nil
}

// MarkDelivered records a successful transport handoff and the receipt number
// (when the receiving system issued one) for later reconciliation.
func (s *Store) MarkDelivered(ctx context.Context, id uuid.UUID, receiptNumber string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = $2, receipt_number = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`,
		id, StatusDelivered, receiptNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to mark delivery record %s delivered: %w", id, err)
	}
	return nil
}

// MarkFailed records a terminal pipeline failure with its reason.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE delivery_records
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1`,
		id, StatusFailed, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to mark delivery record %s failed: %w", id, err)
	}
	return nil
}

// OutstandingReceipts returns the receipt numbers of delivered records still
// awaiting a settled status from the receiving system.
func (s *Store) OutstandingReceipts(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT receipt_number
		FROM delivery_records
		WHERE status = $1 AND receipt_number IS NOT NULL AND NOT reconciled
		ORDER BY updated_at
		LIMIT $2`,
		StatusDelivered, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outstanding receipts: %w", err)
	}
	defer rows.Close()

	var receipts []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan receipt number: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// UpdateReceiptStatus stores the status reported by the receiving system for
// a receipt. settled marks the record as reconciled so it drops out of the
// outstanding set.
func (s *Store) UpdateReceiptStatus(ctx context.Context, receiptNumber, status string, settled bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE delivery_records
		SET receipt_status = $2, reconciled = $3, updated_at = now()
		WHERE receipt_number = $1`,
		receiptNumber, status, settled,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt %s: %w", receiptNumber, err)
	}
	return nil
}

// GetByID returns one delivery record.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*DeliveryRecord, error) {
	var rec DeliveryRecord
	var failureReason, receiptNumber, receiptStatus *string

	err := s.pool.QueryRow(ctx, `
		SELECT id, correlation_id, source_system_id, message_type, status, raw_message,
		       payload_checksum, failure_reason, receipt_number, receipt_status, reconciled,
		       created_at, updated_at
		FROM delivery_records
		WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &rec.CorrelationID, &rec.SourceSystemID, &rec.MessageType, &rec.Status,
		&rec.RawMessage, &rec.PayloadChecksum, &failureReason, &receiptNumber, &receiptStatus,
		&rec.Reconciled, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery record %s: %w", id, err)
	}

	if failureReason != nil {
		rec.FailureReason = *failureReason
	}
	if receiptNumber != nil {
		rec.ReceiptNumber = *receiptNumber
	}
	if receiptStatus != nil {
		rec.ReceiptStatus = *receiptStatus
	}
	return &rec, nil
}
