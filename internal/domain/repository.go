package domain

import "context"

// DonationRepository handles donation persistence. Implementations must make
// MarkSuccess a conditional transition so that racing confirmations for the
// same reference cannot both report updated=true.
type DonationRepository interface {
	// Create inserts a new pending record. The reference must be unused.
	Create(ctx context.Context, donation *Donation) error
	// GetByReference returns the record, or ErrNotFound.
	GetByReference(ctx context.Context, reference string) (*Donation, error)
	// MarkSuccess transitions the record from pending to success. It returns
	// the record and whether this call performed the transition; an
	// already-successful record comes back with updated=false and no error.
	// An absent reference returns ErrNotFound.
	MarkSuccess(ctx context.Context, reference string) (donation *Donation, updated bool, err error)
	// SumSuccess returns the sum of Amount over all success records.
	SumSuccess(ctx context.Context) (int64, error)
	// ListRecentSuccess returns success records, newest first.
	ListRecentSuccess(ctx context.Context, limit int) ([]Donation, error)
}
