package domain

import "time"

// Service is an offering listed on the website (e.g. "Gutter cleaning").
type Service struct {
	ID              string    `json:"id" bson:"_id"`
	Slug            string    `json:"slug" bson:"slug"`
	Name            string    `json:"name" bson:"name"`
	Description     string    `json:"description" bson:"description"`
	PriceFrom       float64   `json:"price_from" bson:"price_from"`
	Currency        string    `json:"currency" bson:"currency"`
	DurationMinutes int       `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty"`
	Active          bool      `json:"active" bson:"active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// Duration returns the appointment length for the service, or fallback when
// the service does not define one.
func (s *Service) Duration(fallback time.Duration) time.Duration {
	if s == nil || s.DurationMinutes <= 0 {
		return fallback
	}
	return time.Duration(s.DurationMinutes) * time.Minute
}

// QuoteStatus tracks follow-up on a quote request.
type QuoteStatus string

const (
	QuoteStatusNew       QuoteStatus = "new"
	QuoteStatusContacted QuoteStatus = "contacted"
	QuoteStatusClosed    QuoteStatus = "closed"
)

// Quote is a request for a price estimate.
type Quote struct {
	ID        string      `json:"id" bson:"_id"`
	ServiceID string      `json:"service_id" bson:"service_id"`
	Name      string      `json:"name" bson:"name"`
	Email     string      `json:"email" bson:"email"`
	Phone     string      `json:"phone" bson:"phone"`
	Address   string      `json:"address,omitempty" bson:"address,omitempty"`
	Details   string      `json:"details" bson:"details"`
	Status    QuoteStatus `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Review is a customer review. Reviews are hidden until approved.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	ServiceID  string    `json:"service_id,omitempty" bson:"service_id,omitempty"`
	AuthorName string    `json:"author_name" bson:"author_name"`
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment" bson:"comment"`
	Approved   bool      `json:"approved" bson:"approved"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
