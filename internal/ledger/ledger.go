// Package ledger orchestrates the donation lifecycle: pledge creation,
// webhook-driven confirmation, and the derived running total.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/reference"
	"server/internal/signature"
)

// EventChargeSuccess is the provider event type that confirms a charge.
const EventChargeSuccess = "charge.success"

// Broadcaster pushes an event to all currently connected viewers without
// blocking the caller.
type Broadcaster interface {
	Publish(v any)
}

// Event is the payload fanned out to viewers after a confirmation.
type Event struct {
	Type      string `json:"type"`
	DonorName string `json:"donor_name"`
	Amount    int64  `json:"amount"`
	Comment   string `json:"comment,omitempty"`
	Total     int64  `json:"total"`
}

// CreateRequest carries a pledge submission.
type CreateRequest struct {
	Email   string
	Amount  int64
	Name    string
	Comment string
}

// Confirmation is the outcome of a confirmed pledge: the record that
// transitioned and the new success total.
type Confirmation struct {
	Donation *domain.Donation
	Total    int64
}

// Summary is the read model for the landing page.
type Summary struct {
	Total  int64
	Recent []domain.Donation
}

// Options tunes the ledger. SecretKey is the webhook HMAC key.
type Options struct {
	MinAmount      int64
	SecretKey      string
	StorageTimeout time.Duration
	RecentLimit    int
}

// Ledger is the sole writer of status transitions. The store and broadcaster
// are injected once at startup.
type Ledger struct {
	repo   domain.DonationRepository
	bus    Broadcaster
	logger zerolog.Logger
	opts   Options
}

func New(repo domain.DonationRepository, bus Broadcaster, logger zerolog.Logger, opts Options) *Ledger {
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	return &Ledger{repo: repo, bus: bus, logger: logger, opts: opts}
}

// CreatePledge validates and persists a new pending record, returning its
// reference. Nothing is stored when validation fails.
func (l *Ledger) CreatePledge(ctx context.Context, req CreateRequest) (string, error) {
	if strings.TrimSpace(req.Email) == "" {
		return "", &domain.ValidationError{Field: "email", Reason: "is required"}
	}
	if req.Amount < l.opts.MinAmount {
		return "", &domain.ValidationError{Field: "amount", Reason: "is below the minimum"}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = domain.AnonymousDonor
	}

	donation := &domain.Donation{
		Reference:  reference.New(),
		Amount:     req.Amount,
		DonorEmail: strings.TrimSpace(req.Email),
		DonorName:  name,
		Comment:    strings.TrimSpace(req.Comment),
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.StorageTimeout)
	defer cancel()
	if err := l.repo.Create(ctx, donation); err != nil {
		return "", &domain.StorageError{Op: "create pledge", Err: err}
	}

	l.logger.Info().
		Str("reference", donation.Reference).
		Int64("amount", donation.Amount).
		Msg("pledge created")
	return donation.Reference, nil
}

// providerEvent mirrors the provider's notification payload. Only the fields
// the ledger acts on are decoded.
type providerEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
	} `json:"data"`
}

// ConfirmPledge authenticates a provider notification and, on the first
// delivery for a pending reference, transitions the record to success,
// recomputes the total, and publishes one viewer event. Replays and unknown
// references are benign no-ops returning (nil, nil). The raw body bytes must
// be passed exactly as received.
func (l *Ledger) ConfirmPledge(ctx context.Context, rawBody []byte, providedSignature string) (*Confirmation, error) {
	if !signature.Verify([]byte(l.opts.SecretKey), rawBody, providedSignature) {
		return nil, domain.ErrInvalidSignature
	}

	var evt providerEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		l.logger.Warn().Err(err).Msg("signed notification with undecodable body")
		return nil, nil
	}
	if evt.Event != EventChargeSuccess {
		l.logger.Debug().Str("event", evt.Event).Msg("ignoring non-success provider event")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.StorageTimeout)
	defer cancel()

	donation, updated, err := l.repo.MarkSuccess(ctx, evt.Data.Reference)
	if errors.Is(err, domain.ErrNotFound) {
		// Notifications for foreign or stale references are expected noise.
		l.logger.Warn().Str("reference", evt.Data.Reference).Msg("notification for unknown reference")
		return nil, nil
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "confirm pledge", Err: err}
	}
	if !updated {
		// Providers redeliver; the first delivery already won.
		l.logger.Info().Str("reference", donation.Reference).Msg("duplicate notification ignored")
		return nil, nil
	}

	if evt.Data.Amount != 0 && evt.Data.Amount != donation.Amount {
		// The pledged amount is immutable; the mismatch is an investigation
		// signal, not a state change.
		l.logger.Error().
			Str("reference", donation.Reference).
			Int64("pledged", donation.Amount).
			Int64("reported", evt.Data.Amount).
			Msg("provider-reported amount differs from pledge")
	}

	total, err := l.repo.SumSuccess(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "sum donations", Err: err}
	}

	l.bus.Publish(Event{
		Type:      "donation",
		DonorName: donation.DonorName,
		Amount:    donation.Amount,
		Comment:   donation.Comment,
		Total:     total,
	})

	l.logger.Info().
		Str("reference", donation.Reference).
		Int64("amount", donation.Amount).
		Int64("total", total).
		Msg("pledge confirmed")
	return &Confirmation{Donation: donation, Total: total}, nil
}

// Summary returns the success total and the most recent confirmed records.
func (l *Ledger) Summary(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.StorageTimeout)
	defer cancel()

	total, err := l.repo.SumSuccess(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "sum donations", Err: err}
	}
	recent, err := l.repo.ListRecentSuccess(ctx, l.opts.RecentLimit)
	if err != nil {
		return nil, &domain.StorageError{Op: "list donations", Err: err}
	}
	return &Summary{Total: total, Recent: recent}, nil
}
