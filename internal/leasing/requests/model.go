package requests

import (
	"fmt"
	"time"

	"github.com/pcpedia/leasing-api/internal/shared"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusQuoted   RequestStatus = "QUOTED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// Request is a client's stated intent to lease product models for a duration.
// Status advances PENDING→QUOTED or PENDING→REJECTED and never moves again.
type Request struct {
	ID             int64         `json:"id" db:"id"`
	ClientID       int64         `json:"client_id" db:"client_id"`
	Status         RequestStatus `json:"status" db:"status"`
	DurationMonths int           `json:"duration_months" db:"duration_months"`
	Notes          *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	Items          []RequestItem `json:"items,omitempty" db:"-"`
}

// RequestItem is one (product model, quantity) row owned by the request.
type RequestItem struct {
	ID             int64 `json:"id" db:"id"`
	RequestID      int64 `json:"request_id" db:"request_id"`
	ProductModelID int64 `json:"product_model_id" db:"product_model_id"`
	Quantity       int   `json:"quantity" db:"quantity"`
}

// IsPending reports whether the request can still be quoted or rejected.
func (r *Request) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Reject transitions PENDING→REJECTED.
func (r *Request) Reject() error {
	if r.Status != RequestStatusPending {
		return fmt.Errorf("%w: only pending requests can be rejected (current %s)", shared.ErrConflict, r.Status)
	}
	r.Status = RequestStatusRejected
	return nil
}
