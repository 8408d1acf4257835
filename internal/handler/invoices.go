package handler

import (
	"net/http"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/middleware"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct {
	svc      service.InvoiceService
	receipts service.ReceiptService
}

func NewInvoicesHandler(svc service.InvoiceService, receipts service.ReceiptService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc, receipts: receipts}
}

// List godoc
// @Summary List every invoice (superuser and auditor)
// @Tags invoices
// @Produce json
// @Param page  query int    false "Page"  default(1)
// @Param limit query int    false "Limit" default(20)
// @Param sort  query string false "Sort field (id, created_at, updated_at)"
// @Success 200 {object} dto.Page[dto.InvoiceSummary]
// @Security BearerAuth
// @Router /v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListInvoices(c.Request.Context(), middleware.GetIdentity(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Mine lists the caller's own invoices.
func (h *InvoicesHandler) Mine(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListMyInvoices(c.Request.Context(), middleware.GetIdentity(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary Search invoices by owner name or invoice id
// @Tags invoices
// @Produce json
// @Param q          query string false "Owner name fragment"
// @Param invoice_id query int    false "Invoice id"
// @Success 200 {object} dto.Page[dto.InvoiceSummary]
// @Security BearerAuth
// @Router /v1/invoices/search [get]
func (h *InvoicesHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.SearchInvoices(c.Request.Context(), middleware.GetIdentity(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get an invoice with its lines
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetInvoice(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Create an invoice owned by the caller
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body dto.CreateInvoiceRequest true "Initial lines"
// @Success 201 {object} dto.InvoiceResponse
// @Security BearerAuth
// @Router /v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// The owner on this route is always the caller.
	req.OwnerEmail = ""
	h.create(c, req)
}

// CreateForUser creates an invoice owned by the user named in the body.
func (h *InvoicesHandler) CreateForUser(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.OwnerEmail == "" {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"OwnerEmail": "required"}))
		return
	}
	h.create(c, req)
}

func (h *InvoicesHandler) create(c *gin.Context, req dto.CreateInvoiceRequest) {
	resp, err := h.svc.CreateInvoice(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AddItem godoc
// @Summary Add a catalog item to an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id   path int                true "Invoice ID"
// @Param body body dto.AddItemRequest true "Item and quantity"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/invoices/{id}/items [post]
func (h *InvoicesHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), middleware.GetIdentity(c), id, req.ItemID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteItem removes an invoice line. The path id is the line id.
func (h *InvoicesHandler) DeleteItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EditQuantity godoc
// @Summary Change the quantity of an invoice line
// @Tags invoices
// @Accept json
// @Produce json
// @Param id   path int                     true "Invoice line ID"
// @Param body body dto.EditQuantityRequest true "New quantity"
// @Success 200 {object} dto.InvoiceLineResponse
// @Security BearerAuth
// @Router /v1/invoices/items/{id} [patch]
func (h *InvoicesHandler) EditQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.EditQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EditQuantity(c.Request.Context(), middleware.GetIdentity(c), id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InvoicesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteInvoice(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History godoc
// @Summary Full audit trail of an invoice, newest first
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {array} dto.HistoryResponse
// @Security BearerAuth
// @Router /v1/invoices/{id}/history [get]
func (h *InvoicesHandler) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetHistory(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Total returns the sum of price × quantity over the invoice's lines.
// CalculateTotal is ungated, so the read check runs through GetInvoice first.
func (h *InvoicesHandler) Total(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.svc.GetInvoice(ctx, middleware.GetIdentity(c), id); err != nil {
		fail(c, err)
		return
	}
	total, err := h.svc.CalculateTotal(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.InvoiceTotalResponse{InvoiceID: id, Total: total})
}

// Receipt godoc
// @Summary Queue a PDF receipt to the caller's email
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 202 {object} dto.ReceiptQueuedResponse
// @Failure 500 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/invoices/{id}/receipt [post]
func (h *InvoicesHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.receipts.RequestReceipt(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
