package requests

import (
	"context"
	"fmt"

	"github.com/pcpedia/leasing-api/internal/catalog"
	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
)

// Service sequences request lifecycle mutations with catalog checks inside a
// single unit of work per operation.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	users   users.Repository
}

// NewService constructs a Service.
func NewService(repo Repository, catalogRepo catalog.Repository, userRepo users.Repository) *Service {
	return &Service{repo: repo, catalog: catalogRepo, users: userRepo}
}

// Create validates every referenced product model and persists a PENDING
// request with its items atomically. Returns the new identifier.
func (s *Service) Create(ctx context.Context, clientID int64, req CreateRequestRequest) (int64, error) {
	if len(req.Items) == 0 {
		return 0, fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}

	for _, item := range req.Items {
		exists, err := s.catalog.ProductModelExists(ctx, item.ProductModelID)
		if err != nil {
			return 0, fmt.Errorf("verify product model: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("%w: product model %d does not exist", shared.ErrValidation, item.ProductModelID)
		}
	}

	request := Request{
		ClientID:       clientID,
		Status:         RequestStatusPending,
		DurationMonths: req.DurationMonths,
		Notes:          req.Notes,
	}

	var requestID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, request)
		if err != nil {
			return err
		}
		requestID = id

		for _, item := range req.Items {
			_, err := repo.InsertItem(ctx, RequestItem{
				RequestID:      requestID,
				ProductModelID: item.ProductModelID,
				Quantity:       item.Quantity,
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
	return requestID, nil
}

// Reject transitions a PENDING request to REJECTED.
func (s *Service) Reject(ctx context.Context, id int64) error {
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if err := request.Reject(); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, request.Status)
}

// Get returns one request, enforcing ownership for non-admin callers.
func (s *Service) Get(ctx context.Context, id, callerID int64, isAdmin bool) (*RequestResponse, error) {
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if !isAdmin && request.ClientID != callerID {
		return nil, fmt.Errorf("%w: request belongs to another client", shared.ErrForbidden)
	}
	return s.toResponse(ctx, request)
}

// List returns a page of requests. Non-admin callers are scoped to their own.
func (s *Service) List(ctx context.Context, req ListRequestsRequest, callerID int64, isAdmin bool) ([]RequestResponse, shared.Pagination, error) {
	if !isAdmin {
		req.ClientID = &callerID
	}

	records, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(records))
	for i := range records {
		resp, err := s.toResponse(ctx, &records[i])
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		result = append(result, *resp)
	}
	return result, shared.NewPagination(req.Page, req.PerPage, total), nil
}

func (s *Service) toResponse(ctx context.Context, request *Request) (*RequestResponse, error) {
	modelIDs := make([]int64, 0, len(request.Items))
	for _, item := range request.Items {
		modelIDs = append(modelIDs, item.ProductModelID)
	}
	models, err := s.catalog.GetProductModelsByIDs(ctx, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("enrich product models: %w", err)
	}

	items := make([]RequestItemResponse, 0, len(request.Items))
	for _, item := range request.Items {
		entry := RequestItemResponse{
			ID:             item.ID,
			ProductModelID: item.ProductModelID,
			Quantity:       item.Quantity,
		}
		if pm, ok := models[item.ProductModelID]; ok {
			entry.ProductModelName = pm.Name
			entry.ProductModelBrand = pm.Brand
			entry.ProductModelModel = pm.Model
		}
		items = append(items, entry)
	}

	resp := &RequestResponse{
		ID:             request.ID,
		ClientID:       request.ClientID,
		Status:         request.Status,
		DurationMonths: request.DurationMonths,
		Notes:          request.Notes,
		Items:          items,
		CreatedAt:      request.CreatedAt,
	}
	if user, err := s.users.Get(ctx, request.ClientID); err == nil {
		resp.ClientName = user.Name
		resp.CompanyName = user.CompanyName
	}
	return resp, nil
}
