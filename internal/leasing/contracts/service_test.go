package contracts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcpedia/leasing-api/internal/catalog"
	"github.com/pcpedia/leasing-api/internal/leasing/quotes"
	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================

type mockRepository struct {
	contracts map[int64]*Contract
	items     map[int64][]ContractItem
	sequences map[int]int64
	nextID    int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		contracts: make(map[int64]*Contract),
		items:     make(map[int64][]ContractItem),
		sequences: make(map[int]int64),
		nextID:    1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *c
	clone.Items = m.items[id]
	return &clone, nil
}

func (m *mockRepository) GetByQuoteID(ctx context.Context, quoteID int64) (*Contract, error) {
	for _, c := range m.contracts {
		if c.QuoteID == quoteID {
			clone := *c
			clone.Items = m.items[c.ID]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	for _, c := range m.contracts {
		if c.ContractNumber == number {
			clone := *c
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListContractsRequest) ([]Contract, int, error) {
	result := []Contract{}
	for _, c := range m.contracts {
		if req.ClientID != nil && c.ClientID != *req.ClientID {
			continue
		}
		if req.Status != nil && c.Status != *req.Status {
			continue
		}
		clone := *c
		clone.Items = m.items[c.ID]
		result = append(result, clone)
	}
	return result, len(result), nil
}

func (m *mockRepository) ListActiveByClient(ctx context.Context, clientID int64) ([]Contract, error) {
	result := []Contract{}
	for _, c := range m.contracts {
		if c.ClientID == clientID && c.Status == ContractStatusActive {
			clone := *c
			clone.Items = m.items[c.ID]
			result = append(result, clone)
		}
	}
	return result, nil
}

func (m *mockRepository) Create(ctx context.Context, contract Contract) (int64, error) {
	// Mirror the partial unique index: one ACTIVE contract per quote.
	for _, c := range m.contracts {
		if c.QuoteID == contract.QuoteID && c.Status == ContractStatusActive {
			return 0, fmt.Errorf("%w: a contract already exists for quote %d", shared.ErrConflict, contract.QuoteID)
		}
	}
	id := m.nextID
	m.nextID++
	contract.ID = id
	contract.CreatedAt = time.Now()
	m.contracts[id] = &contract
	return id, nil
}

func (m *mockRepository) InsertItem(ctx context.Context, item ContractItem) (int64, error) {
	item.ID = int64(len(m.items[item.ContractID]) + 1)
	m.items[item.ContractID] = append(m.items[item.ContractID], item)
	return item.ID, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status ContractStatus) error {
	c, ok := m.contracts[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Status = status
	return nil
}

func (m *mockRepository) NextContractNumber(ctx context.Context, year int) (string, error) {
	m.sequences[year]++
	return FormatNumber(year, m.sequences[year]), nil
}

func (m *mockRepository) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	var expired int64
	for _, c := range m.contracts {
		if c.Status == ContractStatusActive && c.EndDate.Before(asOf) {
			c.Status = ContractStatusExpired
			expired++
		}
	}
	return expired, nil
}

type mockQuoteRepo struct {
	quotes map[int64]*quotes.Quote
}

func (m *mockQuoteRepo) WithTx(ctx context.Context, fn func(context.Context, quotes.Repository) error) error {
	return fn(ctx, m)
}

func (m *mockQuoteRepo) Get(ctx context.Context, id int64) (*quotes.Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (m *mockQuoteRepo) List(ctx context.Context, req quotes.ListQuotesRequest) ([]quotes.Quote, int, error) {
	return nil, 0, nil
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote quotes.Quote) (int64, error) {
	return 0, nil
}

func (m *mockQuoteRepo) UpdateHeader(ctx context.Context, quote *quotes.Quote) error {
	return nil
}

func (m *mockQuoteRepo) InsertItem(ctx context.Context, item quotes.QuoteItem) (int64, error) {
	return 0, nil
}

func (m *mockQuoteRepo) DeleteItems(ctx context.Context, quoteID int64) error {
	return nil
}

func (m *mockQuoteRepo) UpdateStatus(ctx context.Context, quote *quotes.Quote) error {
	return nil
}

func (m *mockQuoteRepo) MarkRequestQuoted(ctx context.Context, requestID int64) error {
	return nil
}

type mockCatalog struct {
	equipment map[int64]*catalog.Equipment
}

func (m *mockCatalog) GetEquipment(ctx context.Context, id int64) (*catalog.Equipment, error) {
	e, ok := m.equipment[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *mockCatalog) GetEquipmentByIDs(ctx context.Context, ids []int64) (map[int64]catalog.Equipment, error) {
	result := make(map[int64]catalog.Equipment)
	for _, id := range ids {
		if e, ok := m.equipment[id]; ok {
			result[id] = *e
		}
	}
	return result, nil
}

func (m *mockCatalog) ProductModelExists(ctx context.Context, id int64) (bool, error) {
	return true, nil
}

func (m *mockCatalog) GetProductModelsByIDs(ctx context.Context, ids []int64) (map[int64]catalog.ProductModel, error) {
	return map[int64]catalog.ProductModel{}, nil
}

func (m *mockCatalog) MarkLeased(ctx context.Context, equipmentID int64) (catalog.ToggleOutcome, error) {
	e, ok := m.equipment[equipmentID]
	if !ok {
		return catalog.ToggleNotFound, nil
	}
	if e.Status != catalog.EquipmentStatusAvailable {
		return catalog.ToggleUnchanged, nil
	}
	e.Status = catalog.EquipmentStatusLeased
	return catalog.ToggleApplied, nil
}

func (m *mockCatalog) MarkAvailable(ctx context.Context, equipmentID int64) (catalog.ToggleOutcome, error) {
	e, ok := m.equipment[equipmentID]
	if !ok {
		return catalog.ToggleNotFound, nil
	}
	if e.Status != catalog.EquipmentStatusLeased {
		return catalog.ToggleUnchanged, nil
	}
	e.Status = catalog.EquipmentStatusAvailable
	return catalog.ToggleApplied, nil
}

type mockUsers struct{}

func (mockUsers) Get(ctx context.Context, id int64) (*users.User, error) {
	return &users.User{ID: id, Name: "Dana", CompanyName: "Dana Construction"}, nil
}

func (mockUsers) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, shared.ErrNotFound
}

func (mockUsers) GetByIDs(ctx context.Context, ids []int64) (map[int64]users.User, error) {
	return map[int64]users.User{}, nil
}

// ============================================================================
// FIXTURES
// ============================================================================

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService() (*Service, *mockRepository, *mockCatalog) {
	terms := "standard terms"
	requestID := int64(1)
	quoteRepo := &mockQuoteRepo{quotes: map[int64]*quotes.Quote{
		5: {
			ID:             5,
			RequestID:      &requestID,
			ClientID:       10,
			Status:         quotes.QuoteStatusAccepted,
			TotalMonthly:   money("3000.99"),
			DurationMonths: 12,
			Terms:          &terms,
			Items: []quotes.QuoteItem{
				{ID: 1, QuoteID: 5, EquipmentID: 100, Quantity: 2, UnitPrice: money("1250.50")},
				{ID: 2, QuoteID: 5, EquipmentID: 101, Quantity: 1, UnitPrice: money("499.99")},
			},
		},
		6: {
			ID:             6,
			ClientID:       10,
			Status:         quotes.QuoteStatusSent,
			TotalMonthly:   money("100.00"),
			DurationMonths: 6,
		},
	}}
	cat := &mockCatalog{equipment: map[int64]*catalog.Equipment{
		100: {ID: 100, Name: "Excavator", Brand: "Acme", Model: "X100", SerialNumber: "SN-100", Status: catalog.EquipmentStatusAvailable},
		101: {ID: 101, Name: "Crane", Brand: "Acme", Model: "C7", SerialNumber: "SN-101", Status: catalog.EquipmentStatusAvailable},
	}}
	repo := newMockRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, quoteRepo, cat, mockUsers{}, shared.FixedClock{Instant: testNow}, logger)
	return svc, repo, cat
}

func startDate() time.Time {
	return time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateContract(t *testing.T) {
	svc, repo, cat := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	contract, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ContractStatusActive, contract.Status)
	assert.Equal(t, int64(10), contract.ClientID)
	assert.Equal(t, "CTR-2026-00001", contract.ContractNumber)
	assert.Equal(t, startDate(), contract.StartDate)
	assert.Equal(t, startDate().AddDate(0, 12, 0), contract.EndDate)
	assert.True(t, contract.MonthlyAmount.Equal(money("3000.99")))
	require.NotNil(t, contract.Terms)
	assert.Equal(t, "standard terms", *contract.Terms)
	require.Len(t, contract.Items, 2)

	// Both referenced units got reserved.
	assert.Equal(t, catalog.EquipmentStatusLeased, cat.equipment[100].Status)
	assert.Equal(t, catalog.EquipmentStatusLeased, cat.equipment[101].Status)
}

func TestCreateContractOverridesTerms(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	custom := "custom terms"
	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate(), Terms: &custom})
	require.NoError(t, err)

	contract, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, contract.Terms)
	assert.Equal(t, custom, *contract.Terms)
}

func TestCreateContractQuoteNotAccepted(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateContractRequest{QuoteID: 6, StartDate: startDate()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateContractQuoteNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateContractRequest{QuoteID: 404, StartDate: startDate()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateContractDuplicateQuote(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestCancelContract(t *testing.T) {
	svc, repo, cat := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, id))

	contract, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ContractStatusCancelled, contract.Status)

	// Cancellation releases the reserved units.
	assert.Equal(t, catalog.EquipmentStatusAvailable, cat.equipment[100].Status)
	assert.Equal(t, catalog.EquipmentStatusAvailable, cat.equipment[101].Status)

	// A second cancel must conflict.
	err = svc.Cancel(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRenewContract(t *testing.T) {
	svc, repo, cat := newTestService()
	ctx := context.Background()

	oldID, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	newID, err := svc.Renew(ctx, oldID, RenewContractRequest{AdditionalMonths: 6})
	require.NoError(t, err)
	assert.NotEqual(t, oldID, newID)

	old, err := repo.Get(ctx, oldID)
	require.NoError(t, err)
	assert.Equal(t, ContractStatusRenewed, old.Status)

	successor, err := repo.Get(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, ContractStatusActive, successor.Status)
	assert.Equal(t, old.QuoteID, successor.QuoteID)
	assert.Equal(t, old.EndDate, successor.StartDate)
	assert.Equal(t, old.EndDate.AddDate(0, 6, 0), successor.EndDate)
	assert.True(t, successor.MonthlyAmount.Equal(old.MonthlyAmount))
	assert.Equal(t, "CTR-2026-00002", successor.ContractNumber)
	require.Len(t, successor.Items, 2)

	// Equipment stays reserved under the successor.
	assert.Equal(t, catalog.EquipmentStatusLeased, cat.equipment[100].Status)
	assert.Equal(t, catalog.EquipmentStatusLeased, cat.equipment[101].Status)
}

func TestRenewCancelledContract(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, id))

	_, err = svc.Renew(ctx, id, RenewContractRequest{AdditionalMonths: 6})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRenewInvalidMonths(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	_, err = svc.Renew(ctx, id, RenewContractRequest{AdditionalMonths: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetContractOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	resp, err := svc.Get(ctx, id, 10, false)
	require.NoError(t, err)
	assert.Equal(t, "Dana", resp.ClientName)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "SN-100", resp.Items[0].EquipmentSerialNumber)

	_, err = svc.Get(ctx, id, 11, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(ctx, id, 99, true)
	require.NoError(t, err)
}

func TestGetContractByNumber(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	resp, err := svc.GetByNumber(ctx, "CTR-2026-00001", 10, false)
	require.NoError(t, err)
	assert.Equal(t, "CTR-2026-00001", resp.ContractNumber)

	_, err = svc.GetByNumber(ctx, "CTR-2026-99999", 10, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.GetByNumber(ctx, "CTR-2026-00001", 11, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestListClientEquipment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	records, err := svc.ListClientEquipment(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CTR-2026-00001", records[0].ContractNumber)
	assert.Equal(t, ContractStatusActive, records[0].ContractStatus)

	// Another client sees nothing.
	records, err = svc.ListClientEquipment(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, records)

	// After cancellation the projection empties out.
	require.NoError(t, svc.Cancel(ctx, id))
	records, err = svc.ListClientEquipment(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetClientEquipmentByID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateContractRequest{QuoteID: 5, StartDate: startDate()})
	require.NoError(t, err)

	record, err := svc.GetClientEquipmentByID(ctx, 10, 101)
	require.NoError(t, err)
	assert.Equal(t, "Crane", record.Name)
	assert.Equal(t, "SN-101", record.SerialNumber)

	_, err = svc.GetClientEquipmentByID(ctx, 10, 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.GetClientEquipmentByID(ctx, 11, 101)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExpireOverdueContracts(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateContractRequest{
		QuoteID:   5,
		StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	expired, err := repo.ExpireOverdue(ctx, shared.Truncate(testNow))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	contract, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ContractStatusExpired, contract.Status)
}

func TestContractNumberFormat(t *testing.T) {
	assert.Equal(t, "CTR-2026-00001", FormatNumber(2026, 1))
	assert.Equal(t, "CTR-2026-00042", FormatNumber(2026, 42))
	assert.Equal(t, "CTR-2027-12345", FormatNumber(2027, 12345))
}
