package service

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/policy"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"
)

type ItemService interface {
	List(ctx context.Context) ([]dto.ItemResponse, error)
	ListNotInInvoice(ctx context.Context, id policy.Identity, invoiceID uint) ([]dto.ItemResponse, error)
}

type itemService struct {
	items    repository.ItemRepository
	invoices repository.InvoiceRepository
	users    repository.UserRepository
}

func NewItemService(items repository.ItemRepository, invoices repository.InvoiceRepository, users repository.UserRepository) ItemService {
	return &itemService{items: items, invoices: invoices, users: users}
}

func (s *itemService) List(ctx context.Context) ([]dto.ItemResponse, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

// ListNotInInvoice returns the catalog items that can still be added to an
// invoice the principal can read.
func (s *itemService) ListNotInInvoice(ctx context.Context, id policy.Identity, invoiceID uint) ([]dto.ItemResponse, error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.FindByID(ctx, nil, invoiceID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(p, inv) {
		return nil, apierror.AccessDenied()
	}
	items, err := s.items.ListNotInInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

func toItemResponses(items []model.Item) []dto.ItemResponse {
	resp := make([]dto.ItemResponse, len(items))
	for i := range items {
		resp[i] = toItemResponse(&items[i])
	}
	return resp
}
