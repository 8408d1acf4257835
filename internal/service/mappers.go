package service

import (
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
)

func toLineResponse(line *model.InvoiceItem) dto.InvoiceLineResponse {
	r := dto.InvoiceLineResponse{ID: line.ID, ItemID: line.ItemID, Quantity: line.Quantity}
	if line.Item != nil {
		r.Name = line.Item.Name
		r.Price = line.Item.Price
		r.Subtotal = line.Subtotal()
	}
	return r
}

func toInvoiceResponse(inv *model.Invoice) *dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, len(inv.Items))
	for i := range inv.Items {
		lines[i] = toLineResponse(&inv.Items[i])
	}
	r := &dto.InvoiceResponse{
		ID:        inv.ID,
		UserID:    inv.UserID,
		Deleted:   inv.Deleted,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
		Items:     lines,
	}
	if inv.User != nil {
		r.OwnerName = inv.User.FullName
	}
	return r
}

func toInvoiceSummary(inv *model.Invoice) dto.InvoiceSummary {
	r := dto.InvoiceSummary{
		ID:        inv.ID,
		UserID:    inv.UserID,
		Deleted:   inv.Deleted,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
	if inv.User != nil {
		r.OwnerName = inv.User.FullName
	}
	return r
}

func toInvoicePage(invoices []model.Invoice, total int64, q dto.PageQuery) *dto.Page[dto.InvoiceSummary] {
	data := make([]dto.InvoiceSummary, len(invoices))
	for i := range invoices {
		data[i] = toInvoiceSummary(&invoices[i])
	}
	page := dto.NewPage(data, total, q)
	return &page
}

func toHistoryResponse(h *model.History) dto.HistoryResponse {
	r := dto.HistoryResponse{
		ID:          h.ID,
		InvoiceID:   h.InvoiceID,
		ItemID:      h.ItemID,
		UserID:      h.UserID,
		Action:      string(h.Action),
		Type:        string(h.Type),
		Quantity:    h.Quantity,
		Price:       h.Price,
		Description: h.Description,
		Status:      h.Status,
		Timestamp:   h.Timestamp,
	}
	if h.User != nil {
		r.UserEmail = h.User.Email
	}
	return r
}

func toItemResponse(it *model.Item) dto.ItemResponse {
	return dto.ItemResponse{ID: it.ID, Name: it.Name, Price: it.Price}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role.Name}
}
