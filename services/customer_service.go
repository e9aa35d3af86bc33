package services

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"qr-restaurant-backend/models"
	"qr-restaurant-backend/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerSessionRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CustomerTableRef struct {
	ID     uuid.UUID `json:"id"`
	Number int       `json:"number"`
}

type CustomerSessionResponse struct {
	Customer CustomerProfile  `json:"customer"`
	Table    CustomerTableRef `json:"table"`
	Token    string           `json:"token"`
}

type CustomerProfile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

// CustomerService manages guest sessions: a customer record is created
// when a guest scans a table's QR code and introduces themselves, and a
// 24-hour token is their only credential. One active customer per table;
// a second scan at the same table reuses the existing session.
type CustomerService struct {
	customerRepo repository.CustomerRepository
	tableRepo    repository.TableRepository
	tokens       *TokenService
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	tableRepo repository.TableRepository,
	tokens *TokenService,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		tableRepo:    tableRepo,
		tokens:       tokens,
		logger:       logger,
	}
}

// CreateSession starts or refreshes the guest session at the table the
// QR slug resolves to. The table must have been activated by a scan.
func (s *CustomerService) CreateSession(ctx context.Context, qrSlug string, req *CustomerSessionRequest) (*CustomerSessionResponse, *ServiceError) {
	table, err := s.tableRepo.FindByQRSlug(ctx, qrSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Table not found")
		}
		s.logger.Error("Failed to fetch table by slug", zap.Error(err))
		return nil, errInternal("Failed to create customer session")
	}

	if table.ActiveSessionID == nil {
		return nil, errBadRequest("Table is not activated. Please scan the QR code again.")
	}

	if serviceErr := validateCustomerFields(req); serviceErr != nil {
		return nil, serviceErr
	}

	customer, err := s.customerRepo.FindActiveByTable(ctx, table.ID)
	switch {
	case err == nil:
		applyCustomerFields(customer, req)
		customer.LastActivity = time.Now()
		if err := s.customerRepo.Update(ctx, customer); err != nil {
			s.logger.Error("Failed to refresh customer session", zap.Error(err))
			return nil, errInternal("Failed to create customer session")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = &models.Customer{
			ID:           uuid.New(),
			Name:         "Guest",
			TableID:      table.ID,
			SessionToken: generateCustomerSessionToken(),
			IsActive:     true,
			LastActivity: time.Now(),
		}
		applyCustomerFields(customer, req)
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			s.logger.Error("Failed to create customer", zap.Error(err))
			return nil, errInternal("Failed to create customer session")
		}
	default:
		s.logger.Error("Failed to fetch customer", zap.Error(err))
		return nil, errInternal("Failed to create customer session")
	}

	token, err := s.tokens.GenerateCustomerToken(customer.ID)
	if err != nil {
		s.logger.Error("Failed to issue customer token", zap.Error(err))
		return nil, errInternal("Failed to create customer session")
	}

	return &CustomerSessionResponse{
		Customer: profileOf(customer),
		Table:    CustomerTableRef{ID: table.ID, Number: table.Number},
		Token:    token,
	}, nil
}

// GetProfile returns the caller's guest profile and touches the session.
func (s *CustomerService) GetProfile(ctx context.Context, customerID uuid.UUID) (*CustomerProfile, *ServiceError) {
	customer, serviceErr := s.loadActive(ctx, customerID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	customer.LastActivity = time.Now()
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Warn("Failed to touch customer session", zap.Error(err))
	}

	profile := profileOf(customer)
	return &profile, nil
}

func (s *CustomerService) UpdateProfile(ctx context.Context, customerID uuid.UUID, req *CustomerSessionRequest) (*CustomerProfile, *ServiceError) {
	customer, serviceErr := s.loadActive(ctx, customerID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr := validateCustomerFields(req); serviceErr != nil {
		return nil, serviceErr
	}

	applyCustomerFields(customer, req)
	customer.LastActivity = time.Now()
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Error("Failed to update customer profile", zap.Error(err))
		return nil, errInternal("Failed to update profile")
	}

	profile := profileOf(customer)
	return &profile, nil
}

// EndSession deactivates the session. The token remains well-formed but
// every customer endpoint rejects it once the record is inactive.
func (s *CustomerService) EndSession(ctx context.Context, customerID uuid.UUID) *ServiceError {
	customer, serviceErr := s.loadActive(ctx, customerID)
	if serviceErr != nil {
		return serviceErr
	}

	customer.IsActive = false
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		s.logger.Error("Failed to end customer session", zap.Error(err))
		return errInternal("Failed to end session")
	}
	return nil
}

func (s *CustomerService) loadActive(ctx context.Context, customerID uuid.UUID) (*models.Customer, *ServiceError) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Customer not found")
		}
		s.logger.Error("Failed to fetch customer", zap.Error(err))
		return nil, errInternal("Failed to fetch customer")
	}

	if !customer.IsActive {
		return nil, errUnauthorized("Customer session expired")
	}
	return customer, nil
}

func validateCustomerFields(req *CustomerSessionRequest) *ServiceError {
	if name := strings.TrimSpace(req.Name); name != "" && len(name) > 100 {
		return errBadRequest("Name must be 1-100 characters")
	}
	if email := strings.TrimSpace(req.Email); email != "" && !emailPattern.MatchString(email) {
		return errBadRequest("Invalid email format")
	}
	return nil
}

func applyCustomerFields(customer *models.Customer, req *CustomerSessionRequest) {
	if name := strings.TrimSpace(req.Name); name != "" {
		customer.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		customer.Email = email
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		customer.Phone = phone
	}
}

func profileOf(customer *models.Customer) CustomerProfile {
	return CustomerProfile{
		ID:    customer.ID,
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	}
}

func generateCustomerSessionToken() string {
	buf := make([]byte, 12)
	if _, err := crand.Read(buf); err != nil {
		return fmt.Sprintf("cust-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("cust-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
