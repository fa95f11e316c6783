package domain

import "time"

// DonationStatus enumerates the lifecycle states of a donation record.
type DonationStatus string

const (
	// StatusPending marks a pledge that has been submitted but not yet
	// confirmed by the payment provider.
	StatusPending DonationStatus = "pending"
	// StatusSuccess marks a confirmed donation. The state is terminal.
	StatusSuccess DonationStatus = "success"
)

// AnonymousDonor is the display name used when a donor leaves the name blank.
const AnonymousDonor = "Anonymous"

// Donation represents a supporter contribution record. Reference is the only
// key external systems use to correlate a provider notification with a
// record; every other field is immutable after creation except Status, which
// moves pending→success exactly once.
type Donation struct {
	Reference  string
	Amount     int64 // smallest currency unit
	DonorEmail string
	DonorName  string
	Comment    string
	Status     DonationStatus
	CreatedAt  time.Time
}
