package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateQuoteRequest struct {
	RequestID      int64            `json:"request_id" validate:"required,gt=0"`
	DurationMonths int              `json:"duration_months" validate:"required,gte=1"`
	ValidUntil     *time.Time       `json:"valid_until,omitempty"`
	Terms          *string          `json:"terms,omitempty"`
	Items          []QuoteItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateQuoteRequest struct {
	DurationMonths int              `json:"duration_months" validate:"required,gte=1"`
	ValidUntil     *time.Time       `json:"valid_until,omitempty"`
	Terms          *string          `json:"terms,omitempty"`
	Items          []QuoteItemInput `json:"items" validate:"required,min=1,dive"`
}

type QuoteItemInput struct {
	EquipmentID int64           `json:"equipment_id" validate:"required,gt=0"`
	Quantity    int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type ListQuotesRequest struct {
	ClientID *int64
	Status   *QuoteStatus
	Page     int
	PerPage  int
}

type QuoteItemResponse struct {
	ID             int64           `json:"id"`
	EquipmentID    int64           `json:"equipment_id"`
	EquipmentName  string          `json:"equipment_name,omitempty"`
	EquipmentBrand string          `json:"equipment_brand,omitempty"`
	EquipmentModel string          `json:"equipment_model,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type QuoteResponse struct {
	ID             int64               `json:"id"`
	RequestID      *int64              `json:"request_id,omitempty"`
	ClientID       int64               `json:"client_id"`
	ClientName     string              `json:"client_name,omitempty"`
	CompanyName    string              `json:"company_name,omitempty"`
	Status         QuoteStatus         `json:"status"`
	TotalMonthly   decimal.Decimal     `json:"total_monthly"`
	DurationMonths int                 `json:"duration_months"`
	ValidUntil     *time.Time          `json:"valid_until,omitempty"`
	Terms          *string             `json:"terms,omitempty"`
	SentAt         *time.Time          `json:"sent_at,omitempty"`
	Items          []QuoteItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
}
