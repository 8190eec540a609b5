package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateContractRequest struct {
	QuoteID   int64     `json:"quote_id" validate:"required,gt=0"`
	StartDate time.Time `json:"start_date" validate:"required"`
	Terms     *string   `json:"terms,omitempty"`
}

type RenewContractRequest struct {
	AdditionalMonths int `json:"additional_months" validate:"required,gte=1"`
}

type ListContractsRequest struct {
	ClientID *int64
	Status   *ContractStatus
	Page     int
	PerPage  int
}

type ContractItemResponse struct {
	ID                    int64           `json:"id"`
	EquipmentID           int64           `json:"equipment_id"`
	EquipmentName         string          `json:"equipment_name,omitempty"`
	EquipmentBrand        string          `json:"equipment_brand,omitempty"`
	EquipmentModel        string          `json:"equipment_model,omitempty"`
	EquipmentSerialNumber string          `json:"equipment_serial_number,omitempty"`
	Quantity              int             `json:"quantity"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	Subtotal              decimal.Decimal `json:"subtotal"`
}

type ContractResponse struct {
	ID             int64                  `json:"id"`
	QuoteID        int64                  `json:"quote_id"`
	ClientID       int64                  `json:"client_id"`
	ClientName     string                 `json:"client_name,omitempty"`
	CompanyName    string                 `json:"company_name,omitempty"`
	ContractNumber string                 `json:"contract_number"`
	StartDate      time.Time              `json:"start_date"`
	EndDate        time.Time              `json:"end_date"`
	MonthlyAmount  decimal.Decimal        `json:"monthly_amount"`
	Status         ContractStatus         `json:"status"`
	Terms          *string                `json:"terms,omitempty"`
	Items          []ContractItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ClientEquipmentResponse is the equipment-facing projection of a client's
// ACTIVE contracts: catalog attributes joined with the covering contract.
type ClientEquipmentResponse struct {
	EquipmentID       int64          `json:"equipment_id"`
	Name              string         `json:"name"`
	Brand             string         `json:"brand"`
	Model             string         `json:"model"`
	SerialNumber      string         `json:"serial_number"`
	Category          string         `json:"category"`
	ContractNumber    string         `json:"contract_number"`
	ContractStartDate time.Time      `json:"contract_start_date"`
	ContractEndDate   time.Time      `json:"contract_end_date"`
	ContractStatus    ContractStatus `json:"contract_status"`
}
