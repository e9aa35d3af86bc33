package services

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"qr-restaurant-backend/kafka"
	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const orderListLimit = 200

type OrderItemRequest struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Qty        int     `json:"qty"`
	Note       string  `json:"note"`
}

type OrderMeta struct {
	QRSlug     string `json:"qrSlug"`
	DeviceInfo string `json:"deviceInfo"`
}

type CreateOrderRequest struct {
	TableID string             `json:"tableId"`
	Items   []OrderItemRequest `json:"items"`
	Meta    OrderMeta          `json:"meta"`
}

// CreateOrderResponse deliberately excludes the item echo; the caller
// already has the cart contents.
type CreateOrderResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Totals      float64   `json:"totals"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderService struct {
	orderRepo repository.OrderRepository
	events    *kafka.OrderEventProducer
	logger    *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, events *kafka.OrderEventProducer, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		events:    events,
		logger:    logger,
	}
}

// CreateOrder validates and prices a cart, then persists it as a placed
// order. Prices and names are captured as a snapshot; later menu edits do
// not touch existing orders.
func (s *OrderService) CreateOrder(ctx context.Context, identity *Identity, req *CreateOrderRequest) (*CreateOrderResponse, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, errBadRequest("Order must contain at least one item")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var totalCents int64
	for i, it := range req.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, errBadRequest(fmt.Sprintf("Item at index %d is missing a name", i))
		}

		priceCents := int64(math.Round(it.Price * 100))
		if math.IsNaN(it.Price) || math.IsInf(it.Price, 0) || it.Price <= 0 || priceCents < 1 {
			return nil, errBadRequest(fmt.Sprintf("Item '%s' at index %d has an invalid price", name, i))
		}

		if it.Qty < 1 {
			return nil, errBadRequest(fmt.Sprintf("Item '%s' at index %d has an invalid quantity", name, i))
		}

		var menuItemID *uuid.UUID
		if trimmed := strings.TrimSpace(it.MenuItemID); trimmed != "" {
			parsed, err := uuid.Parse(trimmed)
			if err != nil {
				return nil, errBadRequest(fmt.Sprintf("Item '%s' at index %d has an invalid menu item id", name, i))
			}
			menuItemID = &parsed
		}

		items = append(items, models.OrderItem{
			MenuItemID: menuItemID,
			Name:       name,
			PriceCents: priceCents,
			Qty:        it.Qty,
			Note:       it.Note,
		})
		totalCents += priceCents * int64(it.Qty)
	}

	var tableID *uuid.UUID
	if trimmed := strings.TrimSpace(req.TableID); trimmed != "" {
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return nil, errBadRequest("Invalid table ID format")
		}
		tableID = &parsed
	}

	var customerID *uuid.UUID
	if identity != nil {
		id := identity.UserID
		customerID = &id
	}

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: generateOrderNumber(),
		TableID:     tableID,
		CustomerID:  customerID,
		Items:       items,
		TotalCents:  totalCents,
		Status:      models.OrderStatusPlaced,
		Payment:     models.Payment{Status: models.PaymentStatusPending},
		QRSlug:      req.Meta.QRSlug,
		DeviceInfo:  req.Meta.DeviceInfo,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		// Order numbers are time+random; a collision is vanishingly rare but
		// the unique index is the real guarantee. Regenerate and retry once.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			order.OrderNumber = generateOrderNumber()
			err = s.orderRepo.Create(ctx, order)
		}
		if err != nil {
			s.logger.Error("Failed to save order", zap.Error(err))
			return nil, errInternal("Failed to place order")
		}
	}

	s.publishEvent(ctx, kafka.EventOrderPlaced, order)

	return &CreateOrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Totals:      float64(order.TotalCents) / 100,
		CreatedAt:   order.CreatedAt,
	}, nil
}

// ListOrders returns orders visible to the caller, newest first, capped at
// a fixed page size. Staff and admins see everything and may filter by
// table or status; customers are implicitly scoped to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, identity *Identity, tableID, status string) ([]models.Order, *ServiceError) {
	if identity == nil {
		return nil, errUnauthorized("Authentication required to list orders")
	}

	filter := repository.OrderFilter{Limit: orderListLimit}
	if identity.IsStaff() {
		if tableID != "" {
			parsed, err := uuid.Parse(tableID)
			if err != nil {
				return nil, errBadRequest("Invalid table ID format")
			}
			filter.TableID = &parsed
		}
		if status != "" {
			if !models.IsValidOrderStatus(status) {
				return nil, errBadRequest("Invalid status filter")
			}
			filter.Status = status
		}
	} else {
		id := identity.UserID
		filter.CustomerID = &id
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to fetch orders", zap.Error(err))
		return nil, errInternal("Failed to retrieve orders")
	}
	return orders, nil
}

// GetOrder fetches one order, enforcing the visibility rules: staff and
// admins see any order, customers only their own. Anonymous callers may
// view guest orders (no customerId); that is a deliberately weak trust
// model — anyone holding the order id can read a guest order's status.
func (s *OrderService) GetOrder(ctx context.Context, identity *Identity, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, serviceErr := s.loadOrder(ctx, orderID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if identity != nil {
		if !identity.IsStaff() && !identity.Owns(order.CustomerID) {
			return nil, errForbidden("Access denied to this order")
		}
	} else if order.CustomerID != nil {
		return nil, errUnauthorized("Authentication required")
	}

	return order, nil
}

// UpdateStatus overwrites the workflow status. Role gating (staff/admin)
// happens at the route layer; this method validates the token and applies
// the write under the order's version guard.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.IsValidOrderStatus(status) {
		return nil, errBadRequest("Invalid status")
	}

	order, serviceErr := s.loadOrder(ctx, orderID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if !models.IsStatusTransitionAllowed(order.Status, status) {
		return nil, errBadRequest(fmt.Sprintf("Cannot move order from '%s' to '%s'", order.Status, status))
	}

	if serviceErr := s.applyVersioned(ctx, order, map[string]interface{}{"status": status}); serviceErr != nil {
		return nil, serviceErr
	}
	order.Status = status

	s.publishEvent(ctx, kafka.EventOrderStatusChanged, order)
	return order, nil
}

// UpdatePaymentStatus is the staff-driven manual override path. It does
// not consult the payment provider; the webhook path is authoritative for
// provider-driven changes.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.IsValidPaymentStatus(status) {
		return nil, errBadRequest("Invalid payment status")
	}

	order, serviceErr := s.loadOrder(ctx, orderID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr := s.applyVersioned(ctx, order, map[string]interface{}{"payment_status": status}); serviceErr != nil {
		return nil, serviceErr
	}
	order.Payment.Status = status

	s.publishEvent(ctx, kafka.EventOrderPaymentChanged, order)
	return order, nil
}

// CancelOrder sets the terminal canceled status. Owner or staff/admin
// only; there is no already-served guard, matching the floor workflow
// where staff cancel mistaken orders at any point.
func (s *OrderService) CancelOrder(ctx context.Context, identity *Identity, orderID uuid.UUID) (*models.Order, *ServiceError) {
	if identity == nil {
		return nil, errUnauthorized("Authentication required")
	}

	order, serviceErr := s.loadOrder(ctx, orderID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if !identity.IsStaff() && !identity.Owns(order.CustomerID) {
		return nil, errForbidden("Access denied to cancel this order")
	}

	if serviceErr := s.applyVersioned(ctx, order, map[string]interface{}{"status": models.OrderStatusCanceled}); serviceErr != nil {
		return nil, serviceErr
	}
	order.Status = models.OrderStatusCanceled

	s.publishEvent(ctx, kafka.EventOrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Order not found")
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, errInternal("Failed to fetch order")
	}
	return order, nil
}

// applyVersioned performs a conditional write guarded by the order's
// version column and retries once after re-reading on a lost race.
func (s *OrderService) applyVersioned(ctx context.Context, order *models.Order, updates map[string]interface{}) *ServiceError {
	err := s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	if errors.Is(err, repository.ErrStaleOrder) {
		fresh, serviceErr := s.loadOrder(ctx, order.ID)
		if serviceErr != nil {
			return serviceErr
		}
		*order = *fresh
		err = s.orderRepo.UpdateVersioned(ctx, order.ID, order.Version, updates)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			return &ServiceError{StatusCode: 409, Message: "Order was modified concurrently, please retry"}
		}
		s.logger.Error("Failed to update order", zap.String("order_id", order.ID.String()), zap.Error(err))
		return errInternal("Failed to update order")
	}
	order.Version++
	return nil
}

func (s *OrderService) publishEvent(ctx context.Context, eventType string, order *models.Order) {
	if err := s.events.Publish(ctx, kafka.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.Payment.Status,
		Timestamp:     time.Now().UTC(),
	}); err != nil {
		// best effort; the order write already succeeded
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

const orderNumberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateOrderNumber builds a human-readable code: prefix, base36
// timestamp, 6 random characters. Uniqueness is ultimately enforced by the
// database index, not this generator.
func generateOrderNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 6)
	if _, err := crand.Read(buf); err != nil {
		// crypto/rand failing is a platform problem; fall back to the clock
		for i := range buf {
			buf[i] = byte(time.Now().UnixNano() >> (i * 8))
		}
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}

	return fmt.Sprintf("ORD-%s-%s", ts, string(suffix))
}
