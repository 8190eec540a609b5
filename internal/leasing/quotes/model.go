package quotes

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pcpedia/leasing-api/internal/shared"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// Quote is an admin-authored priced proposal against specific equipment
// units, derived from a request. DRAFT quotes are editable; SENT quotes can
// only be accepted or rejected; ACCEPTED and REJECTED are terminal.
type Quote struct {
	ID             int64           `json:"id" db:"id"`
	RequestID      *int64          `json:"request_id,omitempty" db:"request_id"`
	ClientID       int64           `json:"client_id" db:"client_id"`
	Status         QuoteStatus     `json:"status" db:"status"`
	TotalMonthly   decimal.Decimal `json:"total_monthly" db:"total_monthly"`
	DurationMonths int             `json:"duration_months" db:"duration_months"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty" db:"valid_until"`
	Terms          *string         `json:"terms,omitempty" db:"terms"`
	SentAt         *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	Items          []QuoteItem     `json:"items,omitempty" db:"-"`
}

// QuoteItem is one (equipment, quantity, unit price) row owned by the quote.
type QuoteItem struct {
	ID          int64           `json:"id" db:"id"`
	QuoteID     int64           `json:"quote_id" db:"quote_id"`
	EquipmentID int64           `json:"equipment_id" db:"equipment_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Subtotal is unit price times quantity, decimal-exact.
func (i QuoteItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalMonthly sums item subtotals. Pure; invoked after every item mutation
// so the stored total is never stale.
func TotalMonthly(items []QuoteItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ReplaceItems swaps the full item set and recomputes the total.
func (q *Quote) ReplaceItems(items []QuoteItem) {
	q.Items = items
	q.TotalMonthly = TotalMonthly(items)
}

// IsDraft reports whether the quote is still editable.
func (q *Quote) IsDraft() bool {
	return q.Status == QuoteStatusDraft
}

// IsAccepted reports whether the quote can back a contract.
func (q *Quote) IsAccepted() bool {
	return q.Status == QuoteStatusAccepted
}

// Send transitions DRAFT→SENT and stamps the send time.
func (q *Quote) Send(now time.Time) error {
	if q.Status != QuoteStatusDraft {
		return fmt.Errorf("%w: only draft quotes can be sent (current %s)", shared.ErrConflict, q.Status)
	}
	q.Status = QuoteStatusSent
	q.SentAt = &now
	return nil
}

// Accept transitions SENT→ACCEPTED, refusing quotes whose validity date has
// passed. today must carry no time-of-day component.
func (q *Quote) Accept(today time.Time) error {
	if q.Status != QuoteStatusSent {
		return fmt.Errorf("%w: only sent quotes can be accepted (current %s)", shared.ErrConflict, q.Status)
	}
	if q.ValidUntil != nil && q.ValidUntil.Before(today) {
		return fmt.Errorf("%w: quote validity period has passed", shared.ErrConflict)
	}
	q.Status = QuoteStatusAccepted
	return nil
}

// Reject transitions SENT→REJECTED.
func (q *Quote) Reject() error {
	if q.Status != QuoteStatusSent {
		return fmt.Errorf("%w: only sent quotes can be rejected (current %s)", shared.ErrConflict, q.Status)
	}
	q.Status = QuoteStatusRejected
	return nil
}
