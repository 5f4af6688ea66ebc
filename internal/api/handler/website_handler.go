package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hearthline/homeservices-api/internal/core/ports"
)

// WebsiteHandler serves the catalog, quote and review endpoints of the public site.
type WebsiteHandler struct {
	catalog ports.CatalogService
	quotes  ports.QuoteService
	reviews ports.ReviewService
}

func NewWebsiteHandler(catalog ports.CatalogService, quotes ports.QuoteService, reviews ports.ReviewService) *WebsiteHandler {
	return &WebsiteHandler{catalog: catalog, quotes: quotes, reviews: reviews}
}

// ListServices handles GET /v1/services.
//
// @Summary      List bookable services
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  domain.Service
// @Router       /v1/services [get]
func (h *WebsiteHandler) ListServices(c echo.Context) error {
	items, err := h.catalog.ListServices(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// GetService handles GET /v1/services/:id.
//
// @Summary      Get a service by id or slug
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Service ID or slug"
// @Success      200  {object}  domain.Service
// @Failure      404  {object}  errorResponse
// @Router       /v1/services/{id} [get]
func (h *WebsiteHandler) GetService(c echo.Context) error {
	svc, err := h.catalog.GetService(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, svc)
}

// CreateService handles POST /v1/services.
//
// @Summary      Add a service to the catalog
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createServiceRequest  true  "Service"
// @Success      201   {object}  domain.Service
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/services [post]
func (h *WebsiteHandler) CreateService(c echo.Context) error {
	var req createServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	svc, err := h.catalog.CreateService(c.Request().Context(), ports.CreateServiceInput{
		Slug:            req.Slug,
		Name:            req.Name,
		Description:     req.Description,
		PriceFrom:       req.PriceFrom,
		Currency:        req.Currency,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, svc)
}

// RequestQuote handles POST /v1/quotes.
//
// @Summary      Request a quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body      createQuoteRequest  true  "Quote request"
// @Success      201   {object}  domain.Quote
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/quotes [post]
func (h *WebsiteHandler) RequestQuote(c echo.Context) error {
	var req createQuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	q, err := h.quotes.RequestQuote(c.Request().Context(), ports.QuoteRequestInput{
		ServiceID: req.ServiceID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Details:   req.Details,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, q)
}

// ListQuotes handles GET /v1/quotes.
//
// @Summary      List quote requests
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "new, contacted or closed"
// @Success      200     {array}   domain.Quote
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/quotes [get]
func (h *WebsiteHandler) ListQuotes(c echo.Context) error {
	items, err := h.quotes.ListQuotes(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// SubmitReview handles POST /v1/reviews.
//
// @Summary      Submit a review
// @Description  Reviews are published after approval.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        body  body      createReviewRequest  true  "Review"
// @Success      202   {object}  acceptedResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/reviews [post]
func (h *WebsiteHandler) SubmitReview(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.reviews.SubmitReview(c.Request().Context(), ports.SubmitReviewInput{
		ServiceID:  req.ServiceID,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "review received and awaiting moderation"})
}

// ListReviews handles GET /v1/reviews.
//
// @Summary      List approved reviews
// @Tags         reviews
// @Produce      json
// @Param        service_id  query     string  false  "Only reviews for this service"
// @Success      200         {array}   domain.Review
// @Router       /v1/reviews [get]
func (h *WebsiteHandler) ListReviews(c echo.Context) error {
	items, err := h.reviews.ListReviews(c.Request().Context(), c.QueryParam("service_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// ApproveReview handles PATCH /v1/reviews/:id/approve.
//
// @Summary      Approve a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        id   path  string  true  "Review ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/reviews/{id}/approve [patch]
func (h *WebsiteHandler) ApproveReview(c echo.Context) error {
	if err := h.reviews.ApproveReview(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
