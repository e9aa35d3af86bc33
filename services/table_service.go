package services

import (
	"context"
	"crypto/sha256"
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

type TableRequest struct {
	Number int `json:"number"`
}

// TableWithQR decorates a table with the URL the printed QR code encodes.
type TableWithQR struct {
	models.Table
	QRUrl string `json:"qrUrl"`
}

// TableScanResponse is returned when a guest resolves a table by scanning
// its QR code; SessionID tags subsequent guest activity at the table.
type TableScanResponse struct {
	Table     TableWithQR `json:"table"`
	SessionID string      `json:"sessionId"`
}

type TableService struct {
	tableRepo   repository.TableRepository
	frontendURL string
	logger      *zap.Logger
}

func NewTableService(tableRepo repository.TableRepository, frontendURL string, logger *zap.Logger) *TableService {
	return &TableService{
		tableRepo:   tableRepo,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *TableService) CreateTable(ctx context.Context, req *TableRequest) (*TableWithQR, *ServiceError) {
	if req.Number < 1 || req.Number > 999 {
		return nil, errBadRequest("Table number must be a positive integer between 1 and 999")
	}

	if _, err := s.tableRepo.FindByNumber(ctx, req.Number); err == nil {
		return nil, errBadRequest("Table number already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check table number", zap.Error(err))
		return nil, errInternal("Failed to create table")
	}

	table := &models.Table{
		Number: req.Number,
		QRSlug: generateQRSlug(req.Number),
	}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errBadRequest("Table number already exists")
		}
		s.logger.Error("Failed to create table", zap.Error(err))
		return nil, errInternal("Failed to create table")
	}

	return s.withQR(table), nil
}

func (s *TableService) ListTables(ctx context.Context) ([]TableWithQR, *ServiceError) {
	tables, err := s.tableRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch tables", zap.Error(err))
		return nil, errInternal("Failed to retrieve tables")
	}

	result := make([]TableWithQR, 0, len(tables))
	for i := range tables {
		result = append(result, *s.withQR(&tables[i]))
	}
	return result, nil
}

func (s *TableService) GetTable(ctx context.Context, id uuid.UUID) (*TableWithQR, *ServiceError) {
	table, serviceErr := s.loadTable(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}
	return s.withQR(table), nil
}

// ResolveByQRSlug is the public scan entry point. Each scan mints a fresh
// session id stored on the table.
func (s *TableService) ResolveByQRSlug(ctx context.Context, qrSlug, userAgent, clientIP string) (*TableScanResponse, *ServiceError) {
	table, err := s.tableRepo.FindByQRSlug(ctx, qrSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Table not found")
		}
		s.logger.Error("Failed to fetch table by slug", zap.Error(err))
		return nil, errInternal("Failed to fetch table")
	}

	sessionID := generateTableSessionID(qrSlug, userAgent, clientIP)
	table.ActiveSessionID = &sessionID
	if err := s.tableRepo.Update(ctx, table); err != nil {
		s.logger.Error("Failed to store table session", zap.Error(err))
		return nil, errInternal("Failed to fetch table")
	}

	return &TableScanResponse{Table: *s.withQR(table), SessionID: sessionID}, nil
}

// UpdateTable renumbers a table. A new number invalidates the printed QR
// code, so the slug is regenerated in the same write.
func (s *TableService) UpdateTable(ctx context.Context, id uuid.UUID, req *TableRequest) (*TableWithQR, *ServiceError) {
	table, serviceErr := s.loadTable(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if req.Number != 0 && req.Number != table.Number {
		if req.Number < 1 || req.Number > 999 {
			return nil, errBadRequest("Table number must be a positive integer between 1 and 999")
		}
		if existing, err := s.tableRepo.FindByNumber(ctx, req.Number); err == nil && existing.ID != id {
			return nil, errBadRequest("Table number already in use")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Failed to check table number", zap.Error(err))
			return nil, errInternal("Failed to update table")
		}
		table.Number = req.Number
		table.QRSlug = generateQRSlug(req.Number)
	}

	if err := s.tableRepo.Update(ctx, table); err != nil {
		s.logger.Error("Failed to update table", zap.Error(err))
		return nil, errInternal("Failed to update table")
	}
	return s.withQR(table), nil
}

func (s *TableService) SetOccupancy(ctx context.Context, id uuid.UUID, occupied bool) (*TableWithQR, *ServiceError) {
	table, serviceErr := s.loadTable(ctx, id)
	if serviceErr != nil {
		return nil, serviceErr
	}

	table.Occupied = occupied
	if !occupied {
		table.ActiveSessionID = nil
	}
	if err := s.tableRepo.Update(ctx, table); err != nil {
		s.logger.Error("Failed to update table occupancy", zap.Error(err))
		return nil, errInternal("Failed to update table")
	}
	return s.withQR(table), nil
}

func (s *TableService) DeleteTable(ctx context.Context, id uuid.UUID) *ServiceError {
	if _, serviceErr := s.loadTable(ctx, id); serviceErr != nil {
		return serviceErr
	}

	if err := s.tableRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete table", zap.Error(err))
		return errInternal("Failed to delete table")
	}
	return nil
}

func (s *TableService) loadTable(ctx context.Context, id uuid.UUID) (*models.Table, *ServiceError) {
	table, err := s.tableRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Table not found")
		}
		s.logger.Error("Failed to fetch table", zap.Error(err))
		return nil, errInternal("Failed to fetch table")
	}
	return table, nil
}

func (s *TableService) withQR(table *models.Table) *TableWithQR {
	return &TableWithQR{
		Table: *table,
		QRUrl: fmt.Sprintf("%s/t/%s", strings.TrimRight(s.frontendURL, "/"), table.QRSlug),
	}
}

// generateQRSlug builds the opaque public identifier encoded in the QR
// code. The table number never appears in it.
func generateQRSlug(number int) string {
	raw := fmt.Sprintf("%d:%s:%d", number, uuid.NewString(), time.Now().UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

func generateTableSessionID(qrSlug, userAgent, clientIP string) string {
	raw := fmt.Sprintf("%s:%s:%s:%d", qrSlug, userAgent, clientIP, time.Now().UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:24]
}
