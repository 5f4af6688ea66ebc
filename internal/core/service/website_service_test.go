package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/core/domain"
	"github.com/hearthline/homeservices-api/internal/core/ports"
)

type stubQuoteRepo struct {
	quotes []*domain.Quote
	err    error
}

func (r *stubQuoteRepo) Create(_ context.Context, q *domain.Quote) error {
	if r.err != nil {
		return r.err
	}
	r.quotes = append(r.quotes, q)
	return nil
}

func (r *stubQuoteRepo) List(_ context.Context, status string) ([]*domain.Quote, error) {
	var out []*domain.Quote
	for _, q := range r.quotes {
		if status == "" || string(q.Status) == status {
			out = append(out, q)
		}
	}
	return out, r.err
}

type stubReviewRepo struct {
	reviews map[string]*domain.Review
}

func (r *stubReviewRepo) Create(_ context.Context, rv *domain.Review) error {
	r.reviews[rv.ID] = rv
	return nil
}

func (r *stubReviewRepo) ListApproved(_ context.Context, serviceID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, rv := range r.reviews {
		if rv.Approved && (serviceID == "" || rv.ServiceID == serviceID) {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *stubReviewRepo) Approve(_ context.Context, id string) error {
	rv, ok := r.reviews[id]
	if !ok {
		return domain.ErrReviewNotFound
	}
	rv.Approved = true
	return nil
}

func TestCatalogService_CreateAndList(t *testing.T) {
	catalog := newStubCatalog()
	svc := NewCatalogService(catalog, zerolog.Nop())

	created, err := svc.CreateService(context.Background(), ports.CreateServiceInput{
		Slug:            "window-washing",
		Name:            "Window washing",
		PriceFrom:       120,
		DurationMinutes: 120,
	})
	if err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	if !created.Active || created.Currency != "USD" {
		t.Fatalf("unexpected defaults: %+v", created)
	}

	got, err := svc.GetService(context.Background(), created.ID)
	if err != nil || got.Slug != "window-washing" {
		t.Fatalf("GetService returned %+v, %v", got, err)
	}

	list, err := svc.ListServices(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one service, got %d (%v)", len(list), err)
	}

	if _, err := svc.GetService(context.Background(), "missing"); !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestCatalogService_CreateValidation(t *testing.T) {
	svc := NewCatalogService(newStubCatalog(), zerolog.Nop())

	cases := map[string]ports.CreateServiceInput{
		"bad slug":       {Slug: "Window Washing", Name: "Window washing"},
		"missing name":   {Slug: "window-washing"},
		"negative price": {Slug: "window-washing", Name: "Window washing", PriceFrom: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.CreateService(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestQuoteService_RequestQuote(t *testing.T) {
	repo := &stubQuoteRepo{}
	notifier := &stubNotifier{}
	catalog := newStubCatalog(&domain.Service{ID: "gutters", Name: "Gutter cleaning", Active: true})
	svc := NewQuoteService(repo, catalog, notifier, "office@example.com", zerolog.Nop())

	q, err := svc.RequestQuote(context.Background(), ports.QuoteRequestInput{
		ServiceID: "gutters",
		Name:      "Ben",
		Email:     "ben@example.com",
		Phone:     "555-0101",
		Details:   "Two storey house, about 40m of gutter.",
	})
	if err != nil {
		t.Fatalf("RequestQuote failed: %v", err)
	}
	if q.Status != domain.QuoteStatusNew || len(repo.quotes) != 1 {
		t.Fatalf("expected stored new quote, got %+v", q)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Kind != ports.NotifyQuoteInternal || notifier.sent[0].To != "office@example.com" {
		t.Fatalf("expected internal quote notification, got %+v", notifier.sent)
	}

	_, err = svc.RequestQuote(context.Background(), ports.QuoteRequestInput{
		ServiceID: "unknown", Name: "Ben", Email: "ben@example.com", Phone: "1", Details: "x",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown service, got %v", err)
	}

	_, err = svc.RequestQuote(context.Background(), ports.QuoteRequestInput{Name: "Ben", Email: "nope", Phone: "1", Details: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad email, got %v", err)
	}
}

func TestQuoteService_ListQuotes(t *testing.T) {
	repo := &stubQuoteRepo{quotes: []*domain.Quote{
		{ID: "1", Status: domain.QuoteStatusNew},
		{ID: "2", Status: domain.QuoteStatusClosed},
	}}
	svc := NewQuoteService(repo, newStubCatalog(), nil, "", zerolog.Nop())

	items, err := svc.ListQuotes(context.Background(), "closed")
	if err != nil || len(items) != 1 || items[0].ID != "2" {
		t.Fatalf("unexpected result: %v, %v", items, err)
	}
	if _, err := svc.ListQuotes(context.Background(), "lost"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	repo.err = errors.New("timeout")
	if _, err := svc.ListQuotes(context.Background(), ""); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestReviewService_Moderation(t *testing.T) {
	repo := &stubReviewRepo{reviews: map[string]*domain.Review{}}
	svc := NewReviewService(repo, zerolog.Nop())

	r, err := svc.SubmitReview(context.Background(), ports.SubmitReviewInput{
		ServiceID: "gutters", AuthorName: "Cleo", Rating: 5, Comment: "Quick and tidy.",
	})
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if r.Approved {
		t.Fatal("new reviews must await moderation")
	}

	visible, _ := svc.ListReviews(context.Background(), "")
	if len(visible) != 0 {
		t.Fatalf("expected no visible reviews before approval, got %d", len(visible))
	}

	if err := svc.ApproveReview(context.Background(), r.ID); err != nil {
		t.Fatalf("ApproveReview failed: %v", err)
	}
	visible, _ = svc.ListReviews(context.Background(), "gutters")
	if len(visible) != 1 {
		t.Fatalf("expected approved review to be listed, got %d", len(visible))
	}

	if err := svc.ApproveReview(context.Background(), "missing"); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestReviewService_Validation(t *testing.T) {
	svc := NewReviewService(&stubReviewRepo{reviews: map[string]*domain.Review{}}, zerolog.Nop())

	cases := map[string]ports.SubmitReviewInput{
		"rating too low":  {AuthorName: "a", Rating: 0, Comment: "ok"},
		"rating too high": {AuthorName: "a", Rating: 6, Comment: "ok"},
		"missing author":  {Rating: 4, Comment: "ok"},
		"missing comment": {AuthorName: "a", Rating: 4},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.SubmitReview(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
