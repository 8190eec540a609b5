package quotes

import (
	"context"
	"fmt"

	"github.com/pcpedia/leasing-api/internal/catalog"
	"github.com/pcpedia/leasing-api/internal/leasing/requests"
	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

// Service sequences quote lifecycle mutations. Quote creation and the source
// request's QUOTED flip commit atomically in one transaction.
type Service struct {
	repo        Repository
	requestRepo requests.Repository
	catalog     catalog.Repository
	users       users.Repository
	clock       shared.Clock
}

// NewService constructs a Service.
func NewService(repo Repository, requestRepo requests.Repository, catalogRepo catalog.Repository, userRepo users.Repository, clock shared.Clock) *Service {
	return &Service{
		repo:        repo,
		requestRepo: requestRepo,
		catalog:     catalogRepo,
		users:       userRepo,
		clock:       clock,
	}
}

// Create builds a DRAFT quote from a request, copying the request's client
// and marking the request QUOTED. Returns the new quote identifier.
func (s *Service) Create(ctx context.Context, req CreateQuoteRequest) (int64, error) {
	if err := validateItems(req.Items); err != nil {
		return 0, err
	}

	request, err := s.requestRepo.Get(ctx, req.RequestID)
	if err != nil {
		return 0, fmt.Errorf("get request: %w", err)
	}

	quote := Quote{
		RequestID:      &req.RequestID,
		ClientID:       request.ClientID,
		Status:         QuoteStatusDraft,
		DurationMonths: req.DurationMonths,
		ValidUntil:     req.ValidUntil,
		Terms:          req.Terms,
	}
	quote.ReplaceItems(buildItems(0, req.Items))

	var quoteID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, quote)
		if err != nil {
			return err
		}
		quoteID = id

		for _, item := range quote.Items {
			item.QuoteID = quoteID
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return err
			}
		}

		return repo.MarkRequestQuoted(ctx, req.RequestID)
	})
	if err != nil {
		return 0, err
	}
	return quoteID, nil
}

// Update replaces the entire item set of a DRAFT quote and recomputes the
// total. Prior items are discarded.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuoteRequest) error {
	if err := validateItems(req.Items); err != nil {
		return err
	}

	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}
	if !quote.IsDraft() {
		return fmt.Errorf("%w: only draft quotes can be updated (current %s)", shared.ErrConflict, quote.Status)
	}

	quote.DurationMonths = req.DurationMonths
	quote.ValidUntil = req.ValidUntil
	quote.Terms = req.Terms
	quote.ReplaceItems(buildItems(id, req.Items))

	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateHeader(ctx, quote); err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		for _, item := range quote.Items {
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Send transitions DRAFT→SENT and stamps the send time.
func (s *Service) Send(ctx context.Context, id int64) error {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}
	if err := quote.Send(s.clock.Now()); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, quote)
}

// Accept lets the owning client accept a SENT, unexpired quote.
func (s *Service) Accept(ctx context.Context, id, callerID int64) error {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}
	if quote.ClientID != callerID {
		return fmt.Errorf("%w: quote belongs to another client", shared.ErrForbidden)
	}
	if err := quote.Accept(s.clock.Today()); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, quote)
}

// Reject lets the owning client reject a SENT quote.
func (s *Service) Reject(ctx context.Context, id, callerID int64) error {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}
	if quote.ClientID != callerID {
		return fmt.Errorf("%w: quote belongs to another client", shared.ErrForbidden)
	}
	if err := quote.Reject(); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, quote)
}

// Get returns one quote, enforcing ownership for non-admin callers.
func (s *Service) Get(ctx context.Context, id, callerID int64, isAdmin bool) (*QuoteResponse, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if !isAdmin && quote.ClientID != callerID {
		return nil, fmt.Errorf("%w: quote belongs to another client", shared.ErrForbidden)
	}
	return s.toResponse(ctx, quote)
}

// List returns a page of quotes. Non-admin callers are scoped to their own.
func (s *Service) List(ctx context.Context, req ListQuotesRequest, callerID int64, isAdmin bool) ([]QuoteResponse, shared.Pagination, error) {
	if !isAdmin {
		req.ClientID = &callerID
	}

	records, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list quotes: %w", err)
	}

	result := make([]QuoteResponse, 0, len(records))
	for i := range records {
		resp, err := s.toResponse(ctx, &records[i])
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		result = append(result, *resp)
	}
	return result, shared.NewPagination(req.Page, req.PerPage, total), nil
}

func validateItems(items []QuoteItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item quantity must be at least 1", shared.ErrValidation)
		}
		if !item.UnitPrice.IsPositive() {
			return fmt.Errorf("%w: item unit price must be positive", shared.ErrValidation)
		}
	}
	return nil
}

func buildItems(quoteID int64, inputs []QuoteItemInput) []QuoteItem {
	items := make([]QuoteItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, QuoteItem{
			QuoteID:     quoteID,
			EquipmentID: in.EquipmentID,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
	}
	return items
}

func (s *Service) toResponse(ctx context.Context, quote *Quote) (*QuoteResponse, error) {
	equipmentIDs := make([]int64, 0, len(quote.Items))
	for _, item := range quote.Items {
		equipmentIDs = append(equipmentIDs, item.EquipmentID)
	}
	equipment, err := s.catalog.GetEquipmentByIDs(ctx, equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich equipment: %w", err)
	}

	items := make([]QuoteItemResponse, 0, len(quote.Items))
	for _, item := range quote.Items {
		entry := QuoteItemResponse{
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
		}
		items = append(items, entry)
	}

	resp := &QuoteResponse{
		ID:             quote.ID,
		RequestID:      quote.RequestID,
		ClientID:       quote.ClientID,
		Status:         quote.Status,
		TotalMonthly:   quote.TotalMonthly,
		DurationMonths: quote.DurationMonths,
		ValidUntil:     quote.ValidUntil,
		Terms:          quote.Terms,
		SentAt:         quote.SentAt,
		Items:          items,
		CreatedAt:      quote.CreatedAt,
	}
	if user, err := s.users.Get(ctx, quote.ClientID); err == nil {
		resp.ClientName = user.Name
		resp.CompanyName = user.CompanyName
	}
	return resp, nil
}
