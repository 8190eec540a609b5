package requests

import "time"

type CreateRequestRequest struct {
	DurationMonths int                `json:"duration_months" validate:"required,gte=1"`
	Notes          *string            `json:"notes,omitempty"`
	Items          []RequestItemInput `json:"items" validate:"required,min=1,dive"`
}

type RequestItemInput struct {
	ProductModelID int64 `json:"product_model_id" validate:"required,gt=0"`
	Quantity       int   `json:"quantity" validate:"required,gte=1"`
}

type ListRequestsRequest struct {
	ClientID *int64
	Status   *RequestStatus
	Page     int
	PerPage  int
}

type RequestItemResponse struct {
	ID                int64  `json:"id"`
	ProductModelID    int64  `json:"product_model_id"`
	ProductModelName  string `json:"product_model_name,omitempty"`
	ProductModelBrand string `json:"product_model_brand,omitempty"`
	ProductModelModel string `json:"product_model_model,omitempty"`
	Quantity          int    `json:"quantity"`
}

type RequestResponse struct {
	ID             int64                 `json:"id"`
	ClientID       int64                 `json:"client_id"`
	ClientName     string                `json:"client_name,omitempty"`
	CompanyName    string                `json:"company_name,omitempty"`
	Status         RequestStatus         `json:"status"`
	DurationMonths int                   `json:"duration_months"`
	Notes          *string               `json:"notes,omitempty"`
	Items          []RequestItemResponse `json:"items"`
	CreatedAt      time.Time             `json:"created_at"`
}
