package service

import (
	"context"
	"errors"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/apperr"
	"github.com/mwarren02/storefront-api/internal/models"
	"github.com/mwarren02/storefront-api/internal/store"
	"github.com/mwarren02/storefront-api/internal/stripe"
)

// IntentCreator is the outbound payment-processor boundary. Satisfied by
// *stripe.Client.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*stripe.Intent, error)
}

// PaymentService bridges pending orders to the external payment
// processor.
type PaymentService struct {
	store     store.Store
	processor IntentCreator
	currency  string
	logger    *zap.Logger
}

func NewPaymentService(st store.Store, processor IntentCreator, currency string, logger *zap.Logger) *PaymentService {
	return &PaymentService{store: st, processor: processor, currency: currency, logger: logger}
}

// CreateIntent requests a payment intent for a PENDING order owned by the
// caller. The stored order total is converted to the processor's minor
// currency unit, and the order and user ids travel as opaque metadata so
// the webhook can correlate the confirmation back to the order. Processor
// failures surface immediately; there is no retry here.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID int64) (*models.PaymentIntentView, error) {
	order, err := s.store.Orders().GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("order not found with id: %d", orderID)
		}
		return nil, apperr.Internal("failed to load order", err)
	}

	if order.Status != models.OrderStatusPending {
		return nil, apperr.Conflict("order %d is not PENDING. current status: %s", orderID, order.Status)
	}

	amountMinor := int64(math.Round(order.TotalAmount * 100))
	metadata := map[string]string{
		"orderId": strconv.FormatInt(order.ID, 10),
		"userId":  strconv.FormatInt(userID, 10),
	}

	intent, err := s.processor.CreateIntent(ctx, amountMinor, s.currency, metadata)
	if err != nil {
		s.logger.Error("payment intent creation failed",
			zap.Int64("order_id", orderID), zap.Error(err))
		return nil, apperr.External("failed to create payment intent", err)
	}

	s.logger.Info("payment intent created",
		zap.Int64("order_id", orderID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_minor", amountMinor))

	return &models.PaymentIntentView{
		ClientSecret: intent.ClientSecret,
		OrderID:      order.ID,
		Amount:       order.TotalAmount,
		Currency:     s.currency,
		Status:       intent.Status,
	}, nil
}
