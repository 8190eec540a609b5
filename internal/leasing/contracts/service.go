package contracts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pcpedia/leasing-api/internal/catalog"
	"github.com/pcpedia/leasing-api/internal/leasing/quotes"
	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

// Service sequences contract lifecycle mutations with quote lookups and the
// equipment reservation gateway. Reservation toggles are best-effort: every
// outcome is logged, and a gateway failure never aborts the surrounding
// operation.
type Service struct {
	repo      Repository
	quoteRepo quotes.Repository
	catalog   catalog.Repository
	users     users.Repository
	clock     shared.Clock
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, quoteRepo quotes.Repository, catalogRepo catalog.Repository, userRepo users.Repository, clock shared.Clock, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		quoteRepo: quoteRepo,
		catalog:   catalogRepo,
		users:     userRepo,
		clock:     clock,
		logger:    logger,
	}
}

// Create materializes an accepted quote into an ACTIVE contract, copying its
// items 1:1 and reserving each referenced equipment unit. At most one
// contract per quote: a lookup gives the friendly conflict, the partial
// unique index closes the race.
func (s *Service) Create(ctx context.Context, req CreateContractRequest) (int64, error) {
	quote, err := s.quoteRepo.Get(ctx, req.QuoteID)
	if err != nil {
		return 0, fmt.Errorf("get quote: %w", err)
	}
	if !quote.IsAccepted() {
		return 0, fmt.Errorf("%w: quote must be accepted before a contract can be created (current %s)", shared.ErrConflict, quote.Status)
	}
	if _, err := s.repo.GetByQuoteID(ctx, req.QuoteID); err == nil {
		return 0, fmt.Errorf("%w: a contract already exists for quote %d", shared.ErrConflict, req.QuoteID)
	} else if !isNotFound(err) {
		return 0, fmt.Errorf("check existing contract: %w", err)
	}

	number, err := s.repo.NextContractNumber(ctx, s.clock.Now().Year())
	if err != nil {
		return 0, err
	}

	terms := req.Terms
	if terms == nil {
		terms = quote.Terms
	}

	startDate := shared.Truncate(req.StartDate)
	contract := Contract{
		QuoteID:        req.QuoteID,
		ClientID:       quote.ClientID,
		ContractNumber: number,
		StartDate:      startDate,
		EndDate:        startDate.AddDate(0, quote.DurationMonths, 0),
		MonthlyAmount:  quote.TotalMonthly,
		Status:         ContractStatusActive,
		Terms:          terms,
	}

	var contractID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, contract)
		if err != nil {
			return err
		}
		contractID = id

		for _, quoteItem := range quote.Items {
			_, err := repo.InsertItem(ctx, ContractItem{
				ContractID:  contractID,
				EquipmentID: quoteItem.EquipmentID,
				Quantity:    quoteItem.Quantity,
				UnitPrice:   quoteItem.UnitPrice,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, quoteItem := range quote.Items {
		s.reserve(ctx, contractID, quoteItem.EquipmentID)
	}
	return contractID, nil
}

// Cancel transitions ACTIVE→CANCELLED and releases every equipment unit the
// contract references.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	contract, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get contract: %w", err)
	}
	if err := contract.Cancel(); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, contract.Status); err != nil {
		return err
	}

	for _, item := range contract.Items {
		s.release(ctx, id, item.EquipmentID)
	}
	return nil
}

// Renew marks the old contract RENEWED and spawns an ACTIVE successor
// starting where the old one ends. Equipment stays reserved under the
// successor; no availability toggles happen.
func (s *Service) Renew(ctx context.Context, id int64, req RenewContractRequest) (int64, error) {
	if req.AdditionalMonths < 1 {
		return 0, fmt.Errorf("%w: additional months must be at least 1", shared.ErrValidation)
	}

	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get contract: %w", err)
	}
	if err := old.MarkRenewed(); err != nil {
		return 0, err
	}

	number, err := s.repo.NextContractNumber(ctx, s.clock.Now().Year())
	if err != nil {
		return 0, err
	}

	successor := Contract{
		QuoteID:        old.QuoteID,
		ClientID:       old.ClientID,
		ContractNumber: number,
		StartDate:      old.EndDate,
		EndDate:        old.EndDate.AddDate(0, req.AdditionalMonths, 0),
		MonthlyAmount:  old.MonthlyAmount,
		Status:         ContractStatusActive,
		Terms:          old.Terms,
	}

	var successorID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		// Flip the predecessor first so the ACTIVE-per-quote index admits
		// the successor.
		if err := repo.UpdateStatus(ctx, id, ContractStatusRenewed); err != nil {
			return err
		}

		newID, err := repo.Create(ctx, successor)
		if err != nil {
			return err
		}
		successorID = newID

		for _, item := range old.Items {
			_, err := repo.InsertItem(ctx, ContractItem{
				ContractID:  successorID,
				EquipmentID: item.EquipmentID,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return successorID, nil
}

// Get returns one contract, enforcing ownership for non-admin callers.
func (s *Service) Get(ctx context.Context, id, callerID int64, isAdmin bool) (*ContractResponse, error) {
	contract, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if !isAdmin && contract.ClientID != callerID {
		return nil, fmt.Errorf("%w: contract belongs to another client", shared.ErrForbidden)
	}
	return s.toResponse(ctx, contract)
}

// GetByNumber resolves a contract by its printed number, with the same
// ownership rules as Get.
func (s *Service) GetByNumber(ctx context.Context, number string, callerID int64, isAdmin bool) (*ContractResponse, error) {
	contract, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get contract by number: %w", err)
	}
	if !isAdmin && contract.ClientID != callerID {
		return nil, fmt.Errorf("%w: contract belongs to another client", shared.ErrForbidden)
	}
	return s.toResponse(ctx, contract)
}

// List returns a page of contracts. Non-admin callers are scoped to their own.
func (s *Service) List(ctx context.Context, req ListContractsRequest, callerID int64, isAdmin bool) ([]ContractResponse, shared.Pagination, error) {
	if !isAdmin {
		req.ClientID = &callerID
	}

	records, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list contracts: %w", err)
	}

	result := make([]ContractResponse, 0, len(records))
	for i := range records {
		resp, err := s.toResponse(ctx, &records[i])
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		result = append(result, *resp)
	}
	return result, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// ListClientEquipment flattens the client's ACTIVE contracts into
// equipment-facing records with catalog attributes attached.
func (s *Service) ListClientEquipment(ctx context.Context, clientID int64) ([]ClientEquipmentResponse, error) {
	active, err := s.repo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list active contracts: %w", err)
	}

	result := []ClientEquipmentResponse{}
	for i := range active {
		contract := &active[i]
		for _, item := range contract.Items {
			equipment, err := s.catalog.GetEquipment(ctx, item.EquipmentID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("get equipment: %w", err)
			}
			result = append(result, clientEquipmentEntry(equipment, contract))
		}
	}
	return result, nil
}

// GetClientEquipmentByID narrows the ACTIVE-contract scan to one equipment
// unit, failing NOT_FOUND when no active contract of the client covers it.
func (s *Service) GetClientEquipmentByID(ctx context.Context, clientID, equipmentID int64) (*ClientEquipmentResponse, error) {
	active, err := s.repo.ListActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list active contracts: %w", err)
	}

	for i := range active {
		contract := &active[i]
		for _, item := range contract.Items {
			if item.EquipmentID != equipmentID {
				continue
			}
			equipment, err := s.catalog.GetEquipment(ctx, equipmentID)
			if err != nil {
				return nil, fmt.Errorf("get equipment: %w", err)
			}
			entry := clientEquipmentEntry(equipment, contract)
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w: no active contract covers equipment %d", shared.ErrNotFound, equipmentID)
}

func (s *Service) reserve(ctx context.Context, contractID, equipmentID int64) {
	outcome, err := s.catalog.MarkLeased(ctx, equipmentID)
	if err != nil {
		s.logger.Warn("mark equipment leased failed",
			slog.Int64("contract_id", contractID),
			slog.Int64("equipment_id", equipmentID),
			slog.Any("error", err))
		return
	}
	if outcome != catalog.ToggleApplied {
		s.logger.Warn("equipment not reserved",
			slog.Int64("contract_id", contractID),
			slog.Int64("equipment_id", equipmentID),
			slog.String("outcome", outcome.String()))
	}
}

func (s *Service) release(ctx context.Context, contractID, equipmentID int64) {
	outcome, err := s.catalog.MarkAvailable(ctx, equipmentID)
	if err != nil {
		s.logger.Warn("mark equipment available failed",
			slog.Int64("contract_id", contractID),
			slog.Int64("equipment_id", equipmentID),
			slog.Any("error", err))
		return
	}
	if outcome != catalog.ToggleApplied {
		s.logger.Warn("equipment not released",
			slog.Int64("contract_id", contractID),
			slog.Int64("equipment_id", equipmentID),
			slog.String("outcome", outcome.String()))
	}
}

func clientEquipmentEntry(equipment *catalog.Equipment, contract *Contract) ClientEquipmentResponse {
	return ClientEquipmentResponse{
		EquipmentID:       equipment.ID,
		Name:              equipment.Name,
		Brand:             equipment.Brand,
		Model:             equipment.Model,
		SerialNumber:      equipment.SerialNumber,
		Category:          equipment.Category,
		ContractNumber:    contract.ContractNumber,
		ContractStartDate: contract.StartDate,
		ContractEndDate:   contract.EndDate,
		ContractStatus:    contract.Status,
	}
}

func (s *Service) toResponse(ctx context.Context, contract *Contract) (*ContractResponse, error) {
	equipmentIDs := make([]int64, 0, len(contract.Items))
	for _, item := range contract.Items {
		equipmentIDs = append(equipmentIDs, item.EquipmentID)
	}
	equipment, err := s.catalog.GetEquipmentByIDs(ctx, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich equipment: %w", err)
	}

	items := make([]ContractItemResponse, 0, len(contract.Items))
	for _, item := range contract.Items {
		entry := ContractItemResponse{
			ID:          item.ID,
			EquipmentID: item.EquipmentID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		}
		if eq, ok := equipment[item.EquipmentID]; ok {
			entry.EquipmentName = eq.Name
			entry.EquipmentBrand = eq.Brand
			entry.EquipmentModel = eq.Model
			entry.EquipmentSerialNumber = eq.SerialNumber
		}
		items = append(items, entry)
	}

	resp := &ContractResponse{
		ID:             contract.ID,
		QuoteID:        contract.QuoteID,
		ClientID:       contract.ClientID,
		ContractNumber: contract.ContractNumber,
		StartDate:      contract.StartDate,
		EndDate:        contract.EndDate,
		MonthlyAmount:  contract.MonthlyAmount,
		Status:         contract.Status,
		Terms:          contract.Terms,
		Items:          items,
		CreatedAt:      contract.CreatedAt,
	}
	if user, err := s.users.Get(ctx, contract.ClientID); err == nil {
		resp.ClientName = user.Name
		resp.CompanyName = user.CompanyName
	}
	return resp, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
