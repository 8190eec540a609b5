package contracts

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcpedia/leasing-api/internal/shared"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCancelled ContractStatus = "CANCELLED"
	ContractStatusExpired   ContractStatus = "EXPIRED"
	ContractStatusRenewed   ContractStatus = "RENEWED"
)

// Contract is a binding lease agreement created from an accepted quote,
// reserving equipment for a date range. Cancel and renew are legal only
// while ACTIVE; expiry is swept by a background job.
type Contract struct {
	ID             int64           `json:"id" db:"id"`
	QuoteID        int64           `json:"quote_id" db:"quote_id"`
	ClientID       int64           `json:"client_id" db:"client_id"`
	ContractNumber string          `json:"contract_number" db:"contract_number"`
	StartDate      time.Time       `json:"start_date" db:"start_date"`
	EndDate        time.Time       `json:"end_date" db:"end_date"`
	MonthlyAmount  decimal.Decimal `json:"monthly_amount" db:"monthly_amount"`
	Status         ContractStatus  `json:"status" db:"status"`
	Terms          *string         `json:"terms,omitempty" db:"terms"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	Items          []ContractItem  `json:"items,omitempty" db:"-"`
}

// ContractItem is one (equipment, quantity, unit price) row owned by the
// contract. Equipment is referenced by identifier only, never owned.
type ContractItem struct {
	ID          int64           `json:"id" db:"id"`
	ContractID  int64           `json:"contract_id" db:"contract_id"`
	EquipmentID int64           `json:"equipment_id" db:"equipment_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Subtotal is unit price times quantity, decimal-exact.
func (i ContractItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsActive reports whether the contract can be cancelled or renewed.
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// Cancel transitions ACTIVE→CANCELLED.
func (c *Contract) Cancel() error {
	if !c.IsActive() {
		return fmt.Errorf("%w: only active contracts can be cancelled (current %s)", shared.ErrConflict, c.Status)
	}
	c.Status = ContractStatusCancelled
	return nil
}

// MarkRenewed transitions ACTIVE→RENEWED; the successor contract keeps the
// equipment reserved.
func (c *Contract) MarkRenewed() error {
	if !c.IsActive() {
		return fmt.Errorf("%w: only active contracts can be renewed (current %s)", shared.ErrConflict, c.Status)
	}
	c.Status = ContractStatusRenewed
	return nil
}

// FormatNumber renders a contract number for the given year and sequence
// value, CTR-<year>-<zero-padded sequence>.
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("CTR-%d-%05d", year, seq)
}
