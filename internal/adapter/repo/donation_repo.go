package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DonationRepositoryPG implements DonationRepository using PostgreSQL.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// Create inserts a new donation record.
func (r *DonationRepositoryPG) Create(ctx context.Context, donation *domain.Donation) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO donations (reference, amount, donor_email, donor_name, comment, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`, donation.Reference, donation.Amount, donation.DonorEmail, donation.DonorName, donation.Comment, donation.Status, donation.CreatedAt)
	return err
}

// GetByReference returns the record for the given reference.
func (r *DonationRepositoryPG) GetByReference(ctx context.Context, ref string) (*domain.Donation, error) {
	row := r.pool.QueryRow(ctx, `
SELECT reference, amount, donor_email, donor_name, comment, status, created_at
FROM donations
WHERE reference = $1;
`, ref)
	return scanDonation(row)
}

// MarkSuccess performs the pending→success transition. The conditional WHERE
// clause is what serializes racing confirmations for the same reference:
// only one UPDATE can match the pending row.
func (r *DonationRepositoryPG) MarkSuccess(ctx context.Context, ref string) (*domain.Donation, bool, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE donations
SET status = $2
WHERE reference = $1 AND status = $3
RETURNING reference, amount, donor_email, donor_name, comment, status, created_at;
`, ref, domain.StatusSuccess, domain.StatusPending)

	donation, err := scanDonation(row)
	if err == nil {
		return donation, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	// No pending row matched: either the reference is unknown or the record
	// was already confirmed. Look it up to tell the two apart.
	donation, err = r.GetByReference(ctx, ref)
	if err != nil {
		return nil, false, err
	}
	return donation, false, nil
}

// SumSuccess computes the confirmed total. The aggregate is always derived
// from the rows, never stored, so it cannot drift.
func (r *DonationRepositoryPG) SumSuccess(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0)::bigint
FROM donations
WHERE status = $1;
`, domain.StatusSuccess).Scan(&total)
	return total, err
}

// ListRecentSuccess returns confirmed donations, newest first.
func (r *DonationRepositoryPG) ListRecentSuccess(ctx context.Context, limit int) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT reference, amount, donor_email, donor_name, comment, status, created_at
FROM donations
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2;
`, domain.StatusSuccess, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var donation domain.Donation
		if err := rows.Scan(&donation.Reference, &donation.Amount, &donation.DonorEmail, &donation.DonorName, &donation.Comment, &donation.Status, &donation.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, donation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var donation domain.Donation
	err := row.Scan(&donation.Reference, &donation.Amount, &donation.DonorEmail, &donation.DonorName, &donation.Comment, &donation.Status, &donation.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
