package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the invoice PDF and
// emails it through the SMTP relay, guarded by a circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const receiptSendAttempts = 3

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	InvoiceID   uint   `json:"invoice_id"`
	SendTo      string `json:"send_to"`
	RequestedBy uint   `json:"requested_by"`
}

// ReceiptSender delivers a rendered receipt. *infra.Mailer implements it.
type ReceiptSender interface {
	SendReceipt(to, subject, body, filename string, pdf []byte) error
}

type ReceiptWorker struct {
	invoices  repository.InvoiceRepository
	sender    ReceiptSender
	breaker   *infra.CircuitBreaker
	retryBase time.Duration
}

func NewReceiptWorker(invoices repository.InvoiceRepository, sender ReceiptSender, breaker *infra.CircuitBreaker) *ReceiptWorker {
	return &ReceiptWorker{
		invoices:  invoices,
		sender:    sender,
		breaker:   breaker,
		retryBase: time.Second,
	}
}

// Process renders and sends one receipt. Errors are returned so the pool can
// dead-letter the job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	if payload.SendTo == "" || payload.InvoiceID == 0 {
		return errors.New("receipt_worker: payload missing invoice_id or send_to")
	}

	inv, err := w.invoices.FindByID(ctx, nil, payload.InvoiceID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load invoice %d: %w", payload.InvoiceID, err)
	}

	// Each job renders its own copy so concurrent receipts for one invoice
	// never share a buffer or file.
	pdf, err := infra.RenderInvoicePDF(inv, inv.Total())
	if err != nil {
		return fmt.Errorf("receipt_worker: render invoice %d: %w", inv.ID, err)
	}

	subject := fmt.Sprintf("Invoice #%d", inv.ID)
	body := fmt.Sprintf("Attached is the receipt for invoice #%d. Total: %s.", inv.ID, inv.Total().StringFixed(2))

	send := func(ctx context.Context) error {
		return w.sender.SendReceipt(payload.SendTo, subject, body, infra.ReceiptFilename(inv.ID), pdf)
	}
	err = withRetry(ctx, receiptSendAttempts, w.retryBase, func(attempt int) error {
		if w.breaker == nil {
			return send(ctx)
		}
		return w.breaker.Execute(ctx, send)
	})
	if err != nil {
		return fmt.Errorf("receipt_worker: send invoice %d: %w", inv.ID, err)
	}

	log.Info().Uint("invoice_id", inv.ID).Str("to", payload.SendTo).Msg("receipt_worker: receipt sent")
	return nil
}
