package service

import (
	"context"
	"errors"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/policy"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/worker"

	"github.com/rs/zerolog/log"
)

// ReceiptQueue accepts receipt jobs. *worker.Dispatcher implements it.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) (string, error)
}

// ReceiptService queues a PDF receipt of an invoice for delivery to the
// requesting user's email.
type ReceiptService interface {
	RequestReceipt(ctx context.Context, id policy.Identity, invoiceID uint) (*dto.ReceiptQueuedResponse, error)
}

type receiptService struct {
	invoices repository.InvoiceRepository
	users    repository.UserRepository
	queue    ReceiptQueue
}

func NewReceiptService(invoices repository.InvoiceRepository, users repository.UserRepository, queue ReceiptQueue) ReceiptService {
	return &receiptService{invoices: invoices, users: users, queue: queue}
}

func (s *receiptService) RequestReceipt(ctx context.Context, id policy.Identity, invoiceID uint) (*dto.ReceiptQueuedResponse, error) {
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

	jobID, err := s.queue.EnqueueReceipt(ctx, worker.ReceiptJobPayload{
		InvoiceID:   inv.ID,
		SendTo:      p.Email,
		RequestedBy: p.UserID,
	})
	if err != nil {
		if errors.Is(err, worker.ErrQueueUnavailable) {
			return nil, apierror.Wrap(apierror.KindInternal, err, "receipt delivery is not available")
		}
		return nil, err
	}

	log.Info().Uint("invoice_id", inv.ID).Str("job_id", jobID).Msg("receipt queued")
	return &dto.ReceiptQueuedResponse{JobID: jobID, InvoiceID: inv.ID, SendTo: p.Email}, nil
}
