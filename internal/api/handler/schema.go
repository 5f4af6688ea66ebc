package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	BookingID string `json:"booking_id,omitempty"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// --- Bookings ---

type createBookingRequest struct {
	ServiceID       string `json:"service_id"       validate:"required"`
	ClientName      string `json:"client_name"      validate:"required,max=200"`
	ClientEmail     string `json:"client_email"     validate:"required,email"`
	ClientPhone     string `json:"client_phone"     validate:"required,max=50"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	Notes           string `json:"notes"            validate:"max=2000"`
}

type bookingLinks struct {
	Self string `json:"self"`
}

type bookingResponse struct {
	ID              string       `json:"id"`
	ServiceID       string       `json:"service_id"`
	ServiceName     string       `json:"service_name"`
	ClientName      string       `json:"client_name"`
	ClientEmail     string       `json:"client_email"`
	ClientPhone     string       `json:"client_phone"`
	AppointmentDate time.Time    `json:"appointment_date"`
	EndDate         time.Time    `json:"end_date"`
	TimeZone        string       `json:"time_zone"`
	Notes           string       `json:"notes,omitempty"`
	Status          string       `json:"status"`
	Confirmed       bool         `json:"confirmed"`
	CalendarEventID string       `json:"calendar_event_id,omitempty"`
	CalendarError   string       `json:"calendar_error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	ConfirmedAt     *time.Time   `json:"confirmed_at,omitempty"`
	Links           bookingLinks `json:"_links"`
}

type listBookingsResponse struct {
	Items      []bookingResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type slotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type availabilityResponse struct {
	Date      string         `json:"date"`
	ServiceID string         `json:"service_id,omitempty"`
	Slots     []slotResponse `json:"slots"`
}

// --- Catalog, quotes, reviews ---

type createServiceRequest struct {
	Slug            string  `json:"slug"             validate:"required"`
	Name            string  `json:"name"             validate:"required"`
	Description     string  `json:"description"`
	PriceFrom       float64 `json:"price_from"       validate:"gte=0"`
	Currency        string  `json:"currency"         validate:"omitempty,len=3"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0,lte=720"`
}

type createQuoteRequest struct {
	ServiceID string `json:"service_id"`
	Name      string `json:"name"    validate:"required,max=200"`
	Email     string `json:"email"   validate:"required,email"`
	Phone     string `json:"phone"   validate:"required,max=50"`
	Address   string `json:"address" validate:"max=500"`
	Details   string `json:"details" validate:"required,max=5000"`
}

type createReviewRequest struct {
	ServiceID  string `json:"service_id"`
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Rating     int    `json:"rating"      validate:"required,min=1,max=5"`
	Comment    string `json:"comment"     validate:"required,max=2000"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email"    validate:"required,email"`
	Role     string `json:"role"     validate:"required,oneof=admin staff"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}
