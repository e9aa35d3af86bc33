package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"qr-restaurant-backend/kafka"
	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateIntentRequest struct {
	OrderID  string `json:"orderId" binding:"required"`
	Currency string `json:"currency"`
}

type CreateIntentResponse struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	Provider        string  `json:"provider"`
	Totals          float64 `json:"totals"`
}

// PaymentService drives the payment half of the order lifecycle: intent
// creation and asynchronous reconciliation from provider webhooks.
type PaymentService struct {
	orderRepo       repository.OrderRepository
	provider        PaymentProvider
	verifier        WebhookVerifier // nil when no provider is configured
	currencyDefault string
	events          *kafka.OrderEventProducer
	logger          *zap.Logger
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	provider PaymentProvider,
	verifier WebhookVerifier,
	currencyDefault string,
	events *kafka.OrderEventProducer,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orderRepo:       orderRepo,
		provider:        provider,
		verifier:        verifier,
		currencyDefault: currencyDefault,
		events:          events,
		logger:          logger,
	}
}

// CreateIntent creates a provider payment intent for an order's total.
// Amounts are already stored in minor units, so the card-API amount is the
// stored total verbatim.
func (s *PaymentService) CreateIntent(ctx context.Context, identity *Identity, req *CreateIntentRequest) (*CreateIntentResponse, *ServiceError) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, errBadRequest("Invalid order ID format")
	}

	order, findErr := s.orderRepo.FindByID(ctx, orderID)
	if findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", req.OrderID), zap.Error(findErr))
		return nil, errInternal("Failed to fetch order")
	}

	if identity == nil {
		return nil, errUnauthorized("Authentication required")
	}
	if !identity.IsStaff() && !identity.Owns(order.CustomerID) {
		return nil, errForbidden("Access denied to create payment for this order")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currencyDefault
	}

	intent, err := s.provider.CreateIntent(ctx, order.TotalCents, currency, order.ID.String())
	if err != nil {
		s.logger.Error("Payment provider call failed", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, errInternal("Failed to create payment intent")
	}

	updates := map[string]interface{}{
		"payment_provider":          intent.Provider,
		"payment_payment_intent_id": intent.ID,
		"payment_client_secret":     intent.ClientSecret,
		"payment_status":            models.PaymentStatusPending,
	}
	if serviceErr := s.persistPayment(ctx, order, updates); serviceErr != nil {
		return nil, serviceErr
	}

	return &CreateIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          order.TotalCents,
		Currency:        currency,
		Provider:        intent.Provider,
		Totals:          float64(order.TotalCents) / 100,
	}, nil
}

// HandleWebhook verifies and applies a provider webhook. After signature
// verification every outcome is an acknowledgement: a missing order or a
// lost write is logged and swallowed, because a non-2xx would only make
// the provider retry a delivery that can never succeed.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) *ServiceError {
	if s.verifier == nil {
		// demo mode: acknowledge without processing
		return nil
	}

	event, err := s.verifier.VerifyAndParse(payload, sigHeader)
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return errBadRequest("Webhook signature verification failed")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		s.handlePaymentIntentEvent(ctx, event, models.PaymentStatusPaid)
	case "payment_intent.payment_failed":
		s.handlePaymentIntentEvent(ctx, event, models.PaymentStatusFailed)
	case "charge.refunded":
		s.handleChargeRefunded(ctx, event)
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	return nil
}

func (s *PaymentService) handlePaymentIntentEvent(ctx context.Context, event stripe.Event, status string) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("Failed to unmarshal payment intent", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	orderIDStr := pi.Metadata["orderId"]
	if orderIDStr == "" {
		s.logger.Warn("Payment intent event missing orderId metadata", zap.String("payment_intent_id", pi.ID))
		return
	}
	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		s.logger.Warn("Payment intent event carries malformed orderId metadata",
			zap.String("payment_intent_id", pi.ID),
			zap.String("order_id", orderIDStr),
		)
		return
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Order not found for payment intent event",
				zap.String("payment_intent_id", pi.ID),
				zap.String("order_id", orderIDStr),
			)
		} else {
			s.logger.Error("Failed to fetch order for webhook", zap.String("order_id", orderIDStr), zap.Error(err))
		}
		return
	}

	s.applyPaymentStatus(ctx, order, map[string]interface{}{
		"payment_provider":          ProviderStripe,
		"payment_payment_intent_id": pi.ID,
		"payment_status":            status,
	}, status)
}

func (s *PaymentService) handleChargeRefunded(ctx context.Context, event stripe.Event) {
	var charge stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		s.logger.Error("Failed to unmarshal charge", zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	// charge.refunded carries no order metadata; resolve through the
	// payment intent id stored when the intent was created.
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		s.logger.Warn("Refund event without a payment intent reference", zap.String("charge_id", charge.ID))
		return
	}

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, charge.PaymentIntent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("No order matches refunded payment intent",
				zap.String("payment_intent_id", charge.PaymentIntent.ID),
			)
		} else {
			s.logger.Error("Failed to fetch order for refund webhook",
				zap.String("payment_intent_id", charge.PaymentIntent.ID),
				zap.Error(err),
			)
		}
		return
	}

	s.applyPaymentStatus(ctx, order, map[string]interface{}{
		"payment_status": models.PaymentStatusRefunded,
	}, models.PaymentStatusRefunded)
}

// applyPaymentStatus writes the webhook-implied status. Re-delivery of the
// same event rewrites the same value, so the handler is idempotent without
// tracking event ids.
func (s *PaymentService) applyPaymentStatus(ctx context.Context, order *models.Order, updates map[string]interface{}, status string) {
	err := s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	if errors.Is(err, repository.ErrStaleOrder) {
		fresh, findErr := s.orderRepo.FindByID(ctx, order.ID)
		if findErr != nil {
			s.logger.Error("Failed to reload order for webhook retry", zap.String("order_id", order.ID.String()), zap.Error(findErr))
			return
		}
		order = fresh
		err = s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	}
	if err != nil {
		s.logger.Error("Failed to persist webhook payment status",
			zap.String("order_id", order.ID.String()),
			zap.String("status", status),
			zap.Error(err),
		)
		return
	}

	order.Payment.Status = status
	if eventErr := s.events.Publish(ctx, kafka.OrderEvent{
		Type:          kafka.EventOrderPaymentChanged,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: status,
		Timestamp:     time.Now().UTC(),
	}); eventErr != nil {
		s.logger.Warn("Failed to publish payment event", zap.String("order_id", order.ID.String()), zap.Error(eventErr))
	}
}

// persistPayment mirrors applyVersioned for the intent-creation path but
// surfaces failures to the caller, since the client needs the persisted
// client secret to proceed.
func (s *PaymentService) persistPayment(ctx context.Context, order *models.Order, updates map[string]interface{}) *ServiceError {
	err := s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	if errors.Is(err, repository.ErrStaleOrder) {
		fresh, findErr := s.orderRepo.FindByID(ctx, order.ID)
		if findErr != nil {
			s.logger.Error("Failed to reload order", zap.String("order_id", order.ID.String()), zap.Error(findErr))
			return errInternal("Failed to save payment details")
		}
		*order = *fresh
		err = s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	}
	if err != nil {
		s.logger.Error("Failed to save payment details", zap.String("order_id", order.ID.String()), zap.Error(err))
		return errInternal("Failed to save payment details")
	}
	order.Version++
	return nil
}
