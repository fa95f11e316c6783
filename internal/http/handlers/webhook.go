package handlers

import (
	"errors"
	"io"
	"net/http"

	"server/internal/domain"
)

// SignatureHeader carries the provider's HMAC over the request body.
const SignatureHeader = "X-Callback-Signature"

// webhookBodyLimit bounds what we are willing to buffer for verification.
const webhookBodyLimit = 1 << 20

// PaymentWebhook receives provider notifications. Contract with the provider:
// always answer 200 once a body was read, whatever happens internally, so a
// transient failure on our side cannot trigger a retry storm. The ledger
// reports outcomes honestly; this boundary is the one place that swallows
// them.
func (a *App) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		// Not a payment outcome, just a broken request.
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}

	res, err := a.Ledger.ConfirmPledge(r.Context(), body, r.Header.Get(SignatureHeader))
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		a.Logger.Warn().
			Str("remote", r.RemoteAddr).
			Msg("webhook signature mismatch")
	case err != nil:
		a.Logger.Error().Err(err).Msg("webhook processing failed")
	case res != nil:
		a.Logger.Info().
			Str("reference", res.Donation.Reference).
			Int64("total", res.Total).
			Msg("webhook confirmed donation")
	}

	a.json(w, http.StatusOK, map[string]bool{"received": true})
}
