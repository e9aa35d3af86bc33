package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeOrderRepo is an in-memory OrderRepository with switches to force
// the failure modes the service has to handle.
type fakeOrderRepo struct {
	orders map[uuid.UUID]*models.Order

	createErrs    []error // consumed per Create call
	createCalls   int
	updateErrOnce error
	lastUpdates   map[string]interface{}
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) FindByPaymentIntentID(_ context.Context, intentID string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.Payment.PaymentIntentID != nil && *order.Payment.PaymentIntentID == intentID {
			clone := *order
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	var result []models.Order
	for _, order := range f.orders {
		if filter.CustomerID != nil {
			if order.CustomerID == nil || *order.CustomerID != *filter.CustomerID {
				continue
			}
		}
		if filter.TableID != nil {
			if order.TableID == nil || *order.TableID != *filter.TableID {
				continue
			}
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateVersioned(_ context.Context, id uuid.UUID, version int, updates map[string]interface{}) error {
	if f.updateErrOnce != nil {
		err := f.updateErrOnce
		f.updateErrOnce = nil
		return err
	}

	order, ok := f.orders[id]
	if !ok || order.Version != version {
		return repository.ErrStaleOrder
	}

	f.lastUpdates = updates
	if status, ok := updates["status"].(string); ok {
		order.Status = status
	}
	if status, ok := updates["payment_status"].(string); ok {
		order.Payment.Status = status
	}
	if provider, ok := updates["payment_provider"].(string); ok {
		order.Payment.Provider = provider
	}
	if intentID, ok := updates["payment_payment_intent_id"].(string); ok {
		order.Payment.PaymentIntentID = &intentID
	}
	if secret, ok := updates["payment_client_secret"].(string); ok {
		order.Payment.ClientSecret = &secret
	}
	order.Version++
	return nil
}

func newOrderService(repo repository.OrderRepository) *OrderService {
	return NewOrderService(repo, nil, zap.NewNop())
}

func staffIdentity() *Identity {
	return &Identity{UserID: uuid.New(), Role: models.RoleStaff}
}

func customerIdentity() *Identity {
	return &Identity{UserID: uuid.New(), Role: models.RoleCustomer}
}

func TestCreateOrderComputesTotal(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{
			{Name: "Margherita", Price: 2.50, Qty: 1},
			{Name: "Cola", Price: 2.74, Qty: 2},
		},
	})
	require.Nil(t, serviceErr)

	assert.InDelta(t, 7.98, resp.Totals, 0.0001)
	assert.Equal(t, models.OrderStatusPlaced, resp.Status)
	assert.True(t, strings.HasPrefix(resp.OrderNumber, "ORD-"))

	stored := repo.orders[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, int64(798), stored.TotalCents)
	assert.Nil(t, stored.CustomerID)
	assert.Equal(t, models.PaymentStatusPending, stored.Payment.Status)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	_, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{})
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
	assert.Equal(t, "Order must contain at least one item", serviceErr.Message)
}

func TestCreateOrderItemValidation(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	tests := []struct {
		name    string
		item    OrderItemRequest
		message string
	}{
		{
			name:    "missing name",
			item:    OrderItemRequest{Name: "  ", Price: 2.50, Qty: 1},
			message: "Item at index 0 is missing a name",
		},
		{
			name:    "zero price",
			item:    OrderItemRequest{Name: "Cola", Price: 0, Qty: 1},
			message: "Item 'Cola' at index 0 has an invalid price",
		},
		{
			name:    "negative price",
			item:    OrderItemRequest{Name: "Cola", Price: -1, Qty: 1},
			message: "Item 'Cola' at index 0 has an invalid price",
		},
		{
			name:    "sub-cent price",
			item:    OrderItemRequest{Name: "Cola", Price: 0.001, Qty: 1},
			message: "Item 'Cola' at index 0 has an invalid price",
		},
		{
			name:    "zero quantity",
			item:    OrderItemRequest{Name: "Cola", Price: 2.50, Qty: 0},
			message: "Item 'Cola' at index 0 has an invalid quantity",
		},
		{
			name:    "negative quantity",
			item:    OrderItemRequest{Name: "Cola", Price: 2.50, Qty: -2},
			message: "Item 'Cola' at index 0 has an invalid quantity",
		},
		{
			name:    "malformed menu item id",
			item:    OrderItemRequest{MenuItemID: "not-a-uuid", Name: "Cola", Price: 2.50, Qty: 1},
			message: "Item 'Cola' at index 0 has an invalid menu item id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
				Items: []OrderItemRequest{tc.item},
			})
			require.NotNil(t, serviceErr)
			assert.Equal(t, http.StatusBadRequest, serviceErr.StatusCode)
			assert.Equal(t, tc.message, serviceErr.Message)
		})
	}
}

func TestCreateOrderRejectsBadTableID(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	_, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		TableID: "table-7",
		Items:   []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.NotNil(t, serviceErr)
	assert.Equal(t, "Invalid table ID format", serviceErr.Message)
}

func TestCreateOrderStampsCustomer(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)
	identity := customerIdentity()

	resp, serviceErr := service.CreateOrder(context.Background(), identity, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	stored := repo.orders[resp.ID]
	require.NotNil(t, stored.CustomerID)
	assert.Equal(t, identity.UserID, *stored.CustomerID)
}

func TestCreateOrderRetriesOnDuplicateOrderNumber(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.createErrs = []error{gorm.ErrDuplicatedKey}
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)
	assert.Equal(t, 2, repo.createCalls)
	assert.NotEmpty(t, resp.OrderNumber)
}

func TestListOrdersRequiresAuth(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	_, serviceErr := service.ListOrders(context.Background(), nil, "", "")
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)
}

func TestListOrdersScopesCustomers(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	mine := customerIdentity()
	other := customerIdentity()

	for _, identity := range []*Identity{mine, other, nil} {
		_, serviceErr := service.CreateOrder(context.Background(), identity, &CreateOrderRequest{
			Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
		})
		require.Nil(t, serviceErr)
	}

	orders, serviceErr := service.ListOrders(context.Background(), mine, "", "")
	require.Nil(t, serviceErr)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.UserID, *orders[0].CustomerID)

	all, serviceErr := service.ListOrders(context.Background(), staffIdentity(), "", "")
	require.Nil(t, serviceErr)
	assert.Len(t, all, 3)
}

func TestListOrdersRejectsBadStatusFilter(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	_, serviceErr := service.ListOrders(context.Background(), staffIdentity(), "", "frozen")
	require.NotNil(t, serviceErr)
	assert.Equal(t, "Invalid status filter", serviceErr.Message)
}

func TestGetOrderGuestVisibility(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	guestResp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	owner := customerIdentity()
	ownedResp, serviceErr := service.CreateOrder(context.Background(), owner, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	// anonymous callers may read guest orders
	order, serviceErr := service.GetOrder(context.Background(), nil, guestResp.ID)
	require.Nil(t, serviceErr)
	assert.Equal(t, guestResp.ID, order.ID)

	// but never customer-owned orders
	_, serviceErr = service.GetOrder(context.Background(), nil, ownedResp.ID)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)

	// a different customer is rejected with 403
	_, serviceErr = service.GetOrder(context.Background(), customerIdentity(), ownedResp.ID)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusForbidden, serviceErr.StatusCode)

	// staff read anything
	_, serviceErr = service.GetOrder(context.Background(), staffIdentity(), ownedResp.ID)
	assert.Nil(t, serviceErr)
}

func TestGetOrderNotFound(t *testing.T) {
	service := newOrderService(newFakeOrderRepo())

	_, serviceErr := service.GetOrder(context.Background(), staffIdentity(), uuid.New())
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusNotFound, serviceErr.StatusCode)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	order, serviceErr := service.UpdateStatus(context.Background(), resp.ID, models.OrderStatusPreparing)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Equal(t, models.OrderStatusPreparing, repo.orders[resp.ID].Status)

	// workflow is deliberately permissive, including moving backwards
	order, serviceErr = service.UpdateStatus(context.Background(), resp.ID, models.OrderStatusPlaced)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)

	_, serviceErr = service.UpdateStatus(context.Background(), resp.ID, "burnt")
	require.NotNil(t, serviceErr)
	assert.Equal(t, "Invalid status", serviceErr.Message)
}

func TestUpdateStatusRetriesStaleVersion(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.updateErrOnce = repository.ErrStaleOrder
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	order, serviceErr := service.UpdateStatus(context.Background(), resp.ID, models.OrderStatusServed)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.OrderStatusServed, order.Status)
}

func TestUpdatePaymentStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	order, serviceErr := service.UpdatePaymentStatus(context.Background(), resp.ID, models.PaymentStatusPaid)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.PaymentStatusPaid, order.Payment.Status)

	_, serviceErr = service.UpdatePaymentStatus(context.Background(), resp.ID, "comped")
	require.NotNil(t, serviceErr)
	assert.Equal(t, "Invalid payment status", serviceErr.Message)
}

func TestCancelOrderPermissions(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	owner := customerIdentity()
	resp, serviceErr := service.CreateOrder(context.Background(), owner, &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	_, serviceErr = service.CancelOrder(context.Background(), nil, resp.ID)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)

	_, serviceErr = service.CancelOrder(context.Background(), customerIdentity(), resp.ID)
	require.NotNil(t, serviceErr)
	assert.Equal(t, http.StatusForbidden, serviceErr.StatusCode)

	order, serviceErr := service.CancelOrder(context.Background(), owner, resp.ID)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.OrderStatusCanceled, order.Status)
}

func TestCancelOrderByStaff(t *testing.T) {
	repo := newFakeOrderRepo()
	service := newOrderService(repo)

	resp, serviceErr := service.CreateOrder(context.Background(), customerIdentity(), &CreateOrderRequest{
		Items: []OrderItemRequest{{Name: "Cola", Price: 2.50, Qty: 1}},
	})
	require.Nil(t, serviceErr)

	order, serviceErr := service.CancelOrder(context.Background(), staffIdentity(), resp.ID)
	require.Nil(t, serviceErr)
	assert.Equal(t, models.OrderStatusCanceled, order.Status)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := generateOrderNumber()
		assert.Regexp(t, `^ORD-[0-9A-Z]+-[0-9A-Z]{6}$`, number)
		seen[number] = true
	}
	// 6 random chars on top of a millisecond timestamp; collisions across
	// 100 draws would indicate a broken generator
	assert.Greater(t, len(seen), 95)
}
