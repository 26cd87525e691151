package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmaldonado/nestdesk/pkg/api/errors"
	"github.com/dmaldonado/nestdesk/pkg/billing"
	"github.com/dmaldonado/nestdesk/pkg/middleware"
	"github.com/dmaldonado/nestdesk/pkg/models"
)

// BillingHandler handles subscription endpoints
type BillingHandler struct {
	billing   *billing.Service
	validator *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *billing.Service) *BillingHandler {
	return &BillingHandler{
		billing:   billingService,
		validator: validator.New(),
	}
}

// Checkout godoc
// @Summary Start a subscription checkout
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Subscription tier"
// @Success 200 {object} models.CheckoutResponse "Hosted checkout URL"
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(c echo.Context) error {
	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.Validation(c, err)
	}

	resp, err := h.billing.CreateCheckoutSession(c.Request().Context(), middleware.UserID(c), req.Tier)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Portal opens the Stripe billing portal for the caller.
func (h *BillingHandler) Portal(c echo.Context) error {
	returnURL := c.QueryParam("return_url")
	resp, err := h.billing.CreateCustomerPortalSession(c.Request().Context(), middleware.UserID(c), returnURL)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Webhook receives Stripe events. Unauthenticated; the signature header
// is the trust anchor.
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.BadRequest(c, err)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return errors.BadRequest(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
