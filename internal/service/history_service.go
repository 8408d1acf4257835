package service

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event is one auditable change. Quantity and Price are snapshots taken at
// the time of the change.
type Event struct {
	InvoiceID   uint
	ItemID      *uint
	UserID      uint
	Action      model.HistoryAction
	Type        model.HistoryType
	Quantity    int
	Price       decimal.Decimal
	Description string
}

// HistoryService maintains the audit trail. RecordEvent must be called with
// the transaction of the mutation it describes.
type HistoryService interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, ev Event) (*model.History, error)
	ListByInvoice(ctx context.Context, invoiceID uint) ([]model.History, error)
}

type historyService struct {
	repo repository.HistoryRepository
}

func NewHistoryService(repo repository.HistoryRepository) HistoryService {
	return &historyService{repo: repo}
}

// RecordEvent supersedes the record(s) the event replaces and inserts the
// event as the new active record:
//
//   - Item events flip the active record of (invoice, item). Edited and
//     Deleted require one to exist; Added may be the first event for the pair.
//   - Invoice events flip every active record of the invoice.
func (s *historyService) RecordEvent(ctx context.Context, tx *gorm.DB, ev Event) (*model.History, error) {
	switch ev.Type {
	case model.HistoryTypeItem:
		if ev.ItemID == nil {
			return nil, apierror.Integrity("item event for invoice %d has no item", ev.InvoiceID)
		}
		if err := s.supersedeItem(ctx, tx, ev); err != nil {
			return nil, err
		}
	case model.HistoryTypeInvoice:
		n, err := s.repo.DeactivateInvoice(ctx, tx, ev.InvoiceID)
		if err != nil {
			return nil, err
		}
		log.Debug().Uint("invoice_id", ev.InvoiceID).Int64("superseded", n).Msg("invoice history superseded")
	default:
		return nil, apierror.Integrity("unknown history type %q", ev.Type)
	}

	h := &model.History{
		UserID:      ev.UserID,
		ItemID:      ev.ItemID,
		InvoiceID:   ev.InvoiceID,
		Quantity:    ev.Quantity,
		Price:       ev.Price,
		Action:      ev.Action,
		Description: ev.Description,
		Type:        ev.Type,
		Status:      model.HistoryActive,
	}
	if err := s.repo.Create(ctx, tx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *historyService) supersedeItem(ctx context.Context, tx *gorm.DB, ev Event) error {
	prev, err := s.repo.FindActiveItem(ctx, tx, ev.InvoiceID, *ev.ItemID)
	switch {
	case err == nil:
		return s.repo.Deactivate(ctx, tx, prev.ID)
	case apierror.KindOf(err) != apierror.KindNotFound:
		return err
	case ev.Action == model.ActionEdited || ev.Action == model.ActionDeleted:
		return apierror.Integrity("no active history record for invoice %d item %d", ev.InvoiceID, *ev.ItemID)
	default:
		return nil
	}
}

func (s *historyService) ListByInvoice(ctx context.Context, invoiceID uint) ([]model.History, error) {
	return s.repo.ListByInvoice(ctx, nil, invoiceID)
}
