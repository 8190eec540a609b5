package catalog

import "time"

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentStatusLeased      EquipmentStatus = "LEASED"
	EquipmentStatusMaintenance EquipmentStatus = "MAINTENANCE"
)

// Equipment is a physical unit clients lease. Managed elsewhere; the
// lifecycle services only read attributes and toggle reservation state.
type Equipment struct {
	ID           int64           `json:"id" db:"id"`
	ProductModelID int64         `json:"product_model_id" db:"product_model_id"`
	Name         string          `json:"name" db:"name"`
	Brand        string          `json:"brand" db:"brand"`
	Model        string          `json:"model" db:"model"`
	SerialNumber string          `json:"serial_number" db:"serial_number"`
	Category     string          `json:"category" db:"category"`
	Status       EquipmentStatus `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Available reports whether the unit can be reserved.
func (e Equipment) Available() bool {
	return e.Status == EquipmentStatusAvailable
}

// ProductModel is a catalog taxonomy entry referenced by leasing requests.
type ProductModel struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Brand     string    `json:"brand" db:"brand"`
	Model     string    `json:"model" db:"model"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ToggleOutcome is the explicit result of a reservation toggle, so callers
// can log or compensate deterministically instead of guessing from a bool.
type ToggleOutcome int

const (
	// ToggleApplied means the state changed.
	ToggleApplied ToggleOutcome = iota
	// ToggleUnchanged means the unit was already in the requested state
	// or is otherwise not eligible for the transition.
	ToggleUnchanged
	// ToggleNotFound means no such equipment record exists.
	ToggleNotFound
)

func (o ToggleOutcome) String() string {
	switch o {
	case ToggleApplied:
		return "applied"
	case ToggleUnchanged:
		return "unchanged"
	case ToggleNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
