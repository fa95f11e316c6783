package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/broadcast"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/ledger"
)

const testSecret = "whsec_test"

// memoryRepo is a threadsafe in-memory DonationRepository for handler tests.
type memoryRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Donation
	order   []string
	failAll error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]*domain.Donation)}
}

func (r *memoryRepo) Create(_ context.Context, d *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	cp := *d
	r.records[d.Reference] = &cp
	r.order = append(r.order, d.Reference)
	return nil
}

func (r *memoryRepo) GetByReference(_ context.Context, ref string) (*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	d, ok := r.records[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memoryRepo) MarkSuccess(_ context.Context, ref string) (*domain.Donation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, false, r.failAll
	}
	d, ok := r.records[ref]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	if d.Status == domain.StatusSuccess {
		cp := *d
		return &cp, false, nil
	}
	d.Status = domain.StatusSuccess
	cp := *d
	return &cp, true, nil
}

func (r *memoryRepo) SumSuccess(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return 0, r.failAll
	}
	var total int64
	for _, d := range r.records {
		if d.Status == domain.StatusSuccess {
			total += d.Amount
		}
	}
	return total, nil
}

func (r *memoryRepo) ListRecentSuccess(_ context.Context, limit int) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var items []domain.Donation
	for i := len(r.order) - 1; i >= 0 && len(items) < limit; i-- {
		if d := r.records[r.order[i]]; d.Status == domain.StatusSuccess {
			items = append(items, *d)
		}
	}
	return items, nil
}

func newTestApp(repo *memoryRepo) (*App, *broadcast.Hub) {
	logger := zerolog.Nop()
	hub := broadcast.NewHub(logger)
	cfg := &infra.Config{
		PaymentPublicKey:  "pk_test",
		PaymentSecretKey:  testSecret,
		FundraisingGoal:   1_000_000,
		MinDonationAmount: 100,
		RecentLimit:       10,
		StorageTimeout:    time.Second,
	}
	led := ledger.New(repo, hub, logger, ledger.Options{
		MinAmount:      cfg.MinDonationAmount,
		SecretKey:      cfg.PaymentSecretKey,
		StorageTimeout: cfg.StorageTimeout,
		RecentLimit:    cfg.RecentLimit,
	})
	return NewApp(led, hub, cfg, logger), hub
}

func TestDonationsCreateReturnsReference(t *testing.T) {
	repo := newMemoryRepo()
	app, _ := newTestApp(repo)

	body := `{"email":"a@x.com","amount":500,"name":"Ada","comment":"semangat"}`
	req := httptest.NewRequest(http.MethodPost, "/donate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(payload.Reference, "don_") {
		t.Fatalf("reference %q missing prefix", payload.Reference)
	}
	d, err := repo.GetByReference(context.Background(), payload.Reference)
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if d.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", d.Status)
	}
}

func TestDonationsCreateValidationFailure(t *testing.T) {
	repo := newMemoryRepo()
	app, _ := newTestApp(repo)

	req := httptest.NewRequest(http.MethodPost, "/donate", strings.NewReader(`{"email":"a@x.com","amount":5}`))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(repo.records) != 0 {
		t.Fatal("record created despite validation failure")
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "bad_request" {
		t.Fatalf("error code = %q", payload.Error.Code)
	}
	if payload.Error.Message != validationMessages["en"]["amount"] {
		t.Fatalf("message = %q", payload.Error.Message)
	}
}

func TestDonationsCreateMalformedBody(t *testing.T) {
	app, _ := newTestApp(newMemoryRepo())

	req := httptest.NewRequest(http.MethodPost, "/donate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestDonationsCreateStorageFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failAll = errors.New("connection refused")
	app, _ := newTestApp(repo)

	req := httptest.NewRequest(http.MethodPost, "/donate", strings.NewReader(`{"email":"a@x.com","amount":500}`))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestSummaryNeverExposesDonorEmail(t *testing.T) {
	repo := newMemoryRepo()
	app, _ := newTestApp(repo)

	seedConfirmed(t, repo, "don_seed1", 500, "Ada")
	seedConfirmed(t, repo, "don_seed2", 2500, "Grace")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	app.Summary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "@x.com") {
		t.Fatalf("donor email leaked: %s", rr.Body.String())
	}

	var payload struct {
		Total            int64            `json:"total"`
		Goal             int64            `json:"goal"`
		PaymentPublicKey string           `json:"payment_public_key"`
		Recent           []map[string]any `json:"recent"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 3000 {
		t.Fatalf("total = %d, want 3000", payload.Total)
	}
	if payload.Goal != 1_000_000 || payload.PaymentPublicKey != "pk_test" {
		t.Fatalf("goal/public key wrong: %+v", payload)
	}
	if len(payload.Recent) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(payload.Recent))
	}
}

func seedConfirmed(t *testing.T, repo *memoryRepo, ref string, amount int64, name string) {
	t.Helper()
	if err := repo.Create(context.Background(), &domain.Donation{
		Reference:  ref,
		Amount:     amount,
		DonorEmail: name + "@x.com",
		DonorName:  name,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed create: %v", err)
	}
	if _, _, err := repo.MarkSuccess(context.Background(), ref); err != nil {
		t.Fatalf("seed confirm: %v", err)
	}
}
