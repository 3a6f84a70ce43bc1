package ports

import (
	"context"

	"tradepilot/internal/domain"
)

// TradeJournal stores the append-only log of trade records for the lifetime of
// one process. Records are never updated or deleted.
type TradeJournal interface {
	// Append stores one trade record.
	Append(ctx context.Context, record *domain.TradeRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.TradeRecord, error)

	// CountByStatus returns how many records carry the given terminal status.
	CountByStatus(ctx context.Context, status domain.TradeStatus) (int, error)

	// Close releases the underlying store.
	Close() error
}
