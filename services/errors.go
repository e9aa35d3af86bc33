package services

import (
	"net/http"

	"github.com/google/uuid"

	"qr-restaurant-backend/models"
)

// ServiceError carries an HTTP-mappable status code alongside a message
// safe to echo to clients. Internal detail stays in logs.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func errBadRequest(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: message}
}

func errUnauthorized(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Message: message}
}

func errForbidden(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: message}
}

func errNotFound(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: message}
}

func errInternal(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: message}
}

// Identity is the authenticated caller. A nil *Identity means the request
// is anonymous (guest).
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// IsStaff reports whether the identity may operate on any order.
func (i *Identity) IsStaff() bool {
	return i != nil && models.IsStaff(i.Role)
}

// Owns reports whether the identity is the customer the order belongs to.
func (i *Identity) Owns(customerID *uuid.UUID) bool {
	return i != nil && customerID != nil && *customerID == i.UserID
}
