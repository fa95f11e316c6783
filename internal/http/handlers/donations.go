package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/ledger"
	"server/internal/middleware"
)

type donationRequest struct {
	Email   string `json:"email"`
	Amount  int64  `json:"amount"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// Donor-facing validation messages. Everything else in the API stays English.
var validationMessages = map[string]map[string]string{
	"en": {
		"email":  "email is required",
		"amount": "amount is below the minimum donation",
	},
	"id": {
		"email":  "email wajib diisi",
		"amount": "nominal di bawah donasi minimum",
	},
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	ref, err := a.Ledger.CreatePledge(r.Context(), ledger.CreateRequest{
		Email:   req.Email,
		Amount:  req.Amount,
		Name:    req.Name,
		Comment: req.Comment,
	})
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			a.error(w, http.StatusBadRequest, "bad_request", a.validationMessage(r, verr))
			return
		}
		a.Logger.Error().Err(err).Msg("create pledge failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create donation")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"reference": ref})
}

func (a *App) validationMessage(r *http.Request, verr *domain.ValidationError) string {
	locale := middleware.LocaleFromContext(r.Context())
	if msgs, ok := validationMessages[locale]; ok {
		if msg, ok := msgs[verr.Field]; ok {
			return msg
		}
	}
	if msg, ok := validationMessages["en"][verr.Field]; ok {
		return msg
	}
	return verr.Error()
}

// Summary answers the landing page: confirmed total, the goal, the provider
// public key for the checkout widget, and recent confirmed donations. Donor
// emails are never serialized.
func (a *App) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := a.Ledger.Summary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("load summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load summary")
		return
	}

	recent := make([]map[string]any, 0, len(s.Recent))
	for _, d := range s.Recent {
		recent = append(recent, map[string]any{
			"name":       d.DonorName,
			"amount":     d.Amount,
			"comment":    d.Comment,
			"created_at": d.CreatedAt.Format(time.RFC3339),
		})
	}
	a.json(w, http.StatusOK, map[string]any{
		"total":              s.Total,
		"goal":               a.Cfg.FundraisingGoal,
		"payment_public_key": a.Cfg.PaymentPublicKey,
		"recent":             recent,
	})
}
