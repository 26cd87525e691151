// Package billing handles Stripe subscriptions: checkout, the customer
// portal, and the webhook that keeps the user's tier current.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v76"
	billingportalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/domain"
	"github.com/dmaldonado/nestdesk/pkg/models"
	"github.com/dmaldonado/nestdesk/pkg/repository"
)

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceSolo     string
	PriceTeam     string
	SuccessURL    string
	CancelURL     string
}

// Service handles Stripe billing operations
type Service struct {
	users  *repository.UserRepository
	config *StripeConfig
}

// NewService creates a new billing service
func NewService(users *repository.UserRepository, config *StripeConfig) *Service {
	stripe.Key = config.SecretKey

	return &Service{
		users:  users,
		config: config,
	}
}

// CreateCheckoutSession starts a subscription checkout for the tier and
// returns the hosted checkout URL.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, tier string) (*models.CheckoutResponse, error) {
	priceID, err := s.priceIDForTier(tier)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(user.Email),
			Name:  stripe.String(user.Name),
			Metadata: map[string]string{
				"user_id": userID,
			},
		}
		cust, err := customer.New(params)
		if err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		customerID = cust.ID

		if err := s.users.UpdateTier(ctx, userID, user.SubscriptionTier, customerID); err != nil {
			return nil, fmt.Errorf("save customer ID: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"user_id": userID,
			"tier":    tier,
		},
	}
	session, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &models.CheckoutResponse{URL: session.URL}, nil
}

// CreateCustomerPortalSession opens the Stripe billing portal for a
// subscribed user.
func (s *Service) CreateCustomerPortalSession(ctx context.Context, userID, returnURL string) (*models.CheckoutResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == "" {
		return nil, domain.NewBadRequestError("no billing account yet")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	}
	session, err := billingportalsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create portal session: %w", err)
	}

	return &models.CheckoutResponse{URL: session.URL}, nil
}

// HandleWebhook verifies and applies a Stripe event.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		log.Printf("⚠️ Stripe invoice payment failed: %s", event.ID)
		return nil
	default:
		// Unhandled event types are acknowledged, not errors.
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	userID := session.Metadata["user_id"]
	tier := session.Metadata["tier"]
	if userID == "" || (tier != crm.TierSolo && tier != crm.TierTeam) {
		return fmt.Errorf("checkout session %s missing user or tier metadata", session.ID)
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	if err := s.users.UpdateTier(ctx, userID, tier, customerID); err != nil {
		return fmt.Errorf("apply tier %s to user %s: %w", tier, userID, err)
	}

	log.Printf("✅ Subscription activated: user=%s tier=%s", userID, tier)
	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}

	user, err := s.users.FindByStripeCustomer(ctx, sub.Customer.ID)
	if err != nil {
		if domain.IsNotFound(err) {
			// Customer deleted before the webhook arrived.
			return nil
		}
		return err
	}

	if err := s.users.UpdateTier(ctx, user.ID, crm.TierFree, ""); err != nil {
		return fmt.Errorf("downgrade user %s: %w", user.ID, err)
	}

	log.Printf("🛑 Subscription ended: user=%s back to free", user.ID)
	return nil
}

func (s *Service) priceIDForTier(tier string) (string, error) {
	switch tier {
	case crm.TierSolo:
		return s.config.PriceSolo, nil
	case crm.TierTeam:
		return s.config.PriceTeam, nil
	default:
		return "", domain.NewValidationError("unknown tier: " + tier)
	}
}
