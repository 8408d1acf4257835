package service

import (
	"context"
	"strings"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/policy"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	descCreateInvoice = "Create new Invoice"
	descDeleteInvoice = "Delete Invoice"
	descAddItem       = "Add new Item"
	descDeleteItem    = "Delete Item"
	descEditQuantity  = "Edit Quantity"
)

// InvoiceService is the mutation engine. Every call names the acting
// identity explicitly; the role used for decisions is the one stored on the
// user row, not the one in the token.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, id policy.Identity, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id policy.Identity, invoiceID uint) (*dto.InvoiceResponse, error)
	AddItem(ctx context.Context, id policy.Identity, invoiceID, itemID uint, quantity int) (*dto.InvoiceResponse, error)
	DeleteItem(ctx context.Context, id policy.Identity, invoiceItemID uint) error
	EditQuantity(ctx context.Context, id policy.Identity, invoiceItemID uint, quantity int) (*dto.InvoiceLineResponse, error)
	DeleteInvoice(ctx context.Context, id policy.Identity, invoiceID uint) error
	GetHistory(ctx context.Context, id policy.Identity, invoiceID uint) ([]dto.HistoryResponse, error)
	CalculateTotal(ctx context.Context, invoiceID uint) (decimal.Decimal, error)

	ListInvoices(ctx context.Context, id policy.Identity, q dto.PageQuery) (*dto.Page[dto.InvoiceSummary], error)
	ListMyInvoices(ctx context.Context, id policy.Identity, q dto.PageQuery) (*dto.Page[dto.InvoiceSummary], error)
	SearchInvoices(ctx context.Context, id policy.Identity, q dto.SearchQuery) (*dto.Page[dto.InvoiceSummary], error)
}

type invoiceService struct {
	repo    repository.InvoiceRepository
	lines   repository.InvoiceItemRepository
	items   repository.ItemRepository
	users   repository.UserRepository
	history HistoryService
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	lines repository.InvoiceItemRepository,
	items repository.ItemRepository,
	users repository.UserRepository,
	history HistoryService,
) InvoiceService {
	return &invoiceService{
		repo:    repo,
		lines:   lines,
		items:   items,
		users:   users,
		history: history,
	}
}

// runTx executes fn inside a single GORM transaction.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// resolveUser loads the acting user. A valid token whose user has vanished
// is an integrity failure, not a denial.
func resolveUser(ctx context.Context, users repository.UserRepository, tx *gorm.DB, id policy.Identity) (*model.User, error) {
	u, err := users.FindByEmail(ctx, tx, id.Email)
	if err != nil {
		if apierror.KindOf(err) == apierror.KindNotFound {
			return nil, apierror.Integrity("user not found")
		}
		return nil, err
	}
	return u, nil
}

func resolve(ctx context.Context, users repository.UserRepository, tx *gorm.DB, id policy.Identity) (policy.Principal, error) {
	u, err := resolveUser(ctx, users, tx, id)
	if err != nil {
		return policy.Principal{}, err
	}
	return policy.FromUser(u), nil
}

func equalEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// writeGate rejects writes to deleted invoices and by principals without
// write access.
func writeGate(p policy.Principal, inv *model.Invoice) error {
	if inv.Deleted || !policy.CanWrite(p, inv) {
		return apierror.AccessDenied()
	}
	return nil
}

// ── CreateInvoice ─────────────────────────────────────────────────────────────
// One transaction: the invoice, its Created record and every line with its
// Added record. Any failure rolls the whole invoice back.

func (s *invoiceService) CreateInvoice(ctx context.Context, id policy.Identity, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	for _, l := range req.Items {
		if l.Quantity <= 0 {
			return nil, apierror.InvalidInput("quantity must be greater than zero")
		}
	}

	var inv *model.Invoice
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actor, err := resolveUser(ctx, s.users, tx, id)
		if err != nil {
			return err
		}
		p := policy.FromUser(actor)

		owner := actor
		if req.OwnerEmail != "" && !equalEmail(req.OwnerEmail, p.Email) {
			if !policy.CanAdminister(p) {
				return apierror.AccessDenied()
			}
			owner, err = s.users.FindByEmail(ctx, tx, req.OwnerEmail)
			if err != nil {
				return err
			}
		}

		inv = &model.Invoice{UserID: owner.ID}
		if err := s.repo.Create(ctx, tx, inv); err != nil {
			return err
		}
		inv.User = owner

		if _, err := s.history.RecordEvent(ctx, tx, Event{
			InvoiceID:   inv.ID,
			UserID:      p.UserID,
			Action:      model.ActionCreated,
			Type:        model.HistoryTypeInvoice,
			Price:       decimal.Zero,
			Description: descCreateInvoice,
		}); err != nil {
			return err
		}

		for _, l := range req.Items {
			if err := s.addLine(ctx, tx, p, inv, l.ItemID, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("invoice_id", inv.ID).
		Uint("user_id", inv.UserID).
		Int("lines", len(inv.Items)).
		Msg("invoice created")
	return toInvoiceResponse(inv), nil
}

// ── GetInvoice ────────────────────────────────────────────────────────────────

func (s *invoiceService) GetInvoice(ctx context.Context, id policy.Identity, invoiceID uint) (*dto.InvoiceResponse, error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, nil, invoiceID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(p, inv) {
		return nil, apierror.AccessDenied()
	}
	return toInvoiceResponse(inv), nil
}

// ── AddItem ───────────────────────────────────────────────────────────────────

func (s *invoiceService) AddItem(ctx context.Context, id policy.Identity, invoiceID, itemID uint, quantity int) (*dto.InvoiceResponse, error) {
	var inv *model.Invoice
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := resolve(ctx, s.users, tx, id)
		if err != nil {
			return err
		}
		inv, err = s.repo.FindByID(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if err := writeGate(p, inv); err != nil {
			return err
		}
		if err := s.addLine(ctx, tx, p, inv, itemID, quantity); err != nil {
			return err
		}
		return s.repo.Touch(ctx, tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("invoice_id", invoiceID).Uint("item_id", itemID).Int("quantity", quantity).Msg("invoice item added")
	return toInvoiceResponse(inv), nil
}

// addLine appends a line to inv and records the Added event. The caller has
// already passed the write gate.
func (s *invoiceService) addLine(ctx context.Context, tx *gorm.DB, p policy.Principal, inv *model.Invoice, itemID uint, quantity int) error {
	if quantity <= 0 {
		return apierror.InvalidInput("quantity must be greater than zero")
	}
	item, err := s.items.FindByID(ctx, tx, itemID)
	if err != nil {
		return err
	}
	if inv.HasItem(itemID) {
		return apierror.Conflict("item %d already exists on invoice %d", itemID, inv.ID)
	}

	line := model.InvoiceItem{InvoiceID: inv.ID, ItemID: item.ID, Quantity: quantity}
	if err := s.lines.Create(ctx, tx, &line); err != nil {
		return err
	}
	line.Item = item
	inv.Items = append(inv.Items, line)

	_, err = s.history.RecordEvent(ctx, tx, Event{
		InvoiceID:   inv.ID,
		ItemID:      &item.ID,
		UserID:      p.UserID,
		Action:      model.ActionAdded,
		Type:        model.HistoryTypeItem,
		Quantity:    quantity,
		Price:       item.Price,
		Description: descAddItem,
	})
	return err
}

// ── DeleteItem ────────────────────────────────────────────────────────────────

func (s *invoiceService) DeleteItem(ctx context.Context, id policy.Identity, invoiceItemID uint) error {
	var invoiceID uint
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, line, inv, err := s.loadLineForWrite(ctx, tx, id, invoiceItemID)
		if err != nil {
			return err
		}
		invoiceID = inv.ID

		if err := s.lines.Delete(ctx, tx, line.ID); err != nil {
			return err
		}
		if _, err := s.history.RecordEvent(ctx, tx, Event{
			InvoiceID:   inv.ID,
			ItemID:      &line.ItemID,
			UserID:      p.UserID,
			Action:      model.ActionDeleted,
			Type:        model.HistoryTypeItem,
			Quantity:    line.Quantity,
			Price:       linePrice(line),
			Description: descDeleteItem,
		}); err != nil {
			return err
		}
		return s.repo.Touch(ctx, tx, inv.ID)
	})
	if err != nil {
		return err
	}

	log.Info().Uint("invoice_id", invoiceID).Uint("invoice_item_id", invoiceItemID).Msg("invoice item deleted")
	return nil
}

// ── EditQuantity ──────────────────────────────────────────────────────────────

func (s *invoiceService) EditQuantity(ctx context.Context, id policy.Identity, invoiceItemID uint, quantity int) (*dto.InvoiceLineResponse, error) {
	var line *model.InvoiceItem
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, l, inv, err := s.loadLineForWrite(ctx, tx, id, invoiceItemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return apierror.InvalidInput("quantity must be greater than zero")
		}
		line = l

		if err := s.lines.UpdateQuantity(ctx, tx, line.ID, quantity); err != nil {
			return err
		}
		line.Quantity = quantity

		if _, err := s.history.RecordEvent(ctx, tx, Event{
			InvoiceID:   inv.ID,
			ItemID:      &line.ItemID,
			UserID:      p.UserID,
			Action:      model.ActionEdited,
			Type:        model.HistoryTypeItem,
			Quantity:    quantity,
			Price:       linePrice(line),
			Description: descEditQuantity,
		}); err != nil {
			return err
		}
		return s.repo.Touch(ctx, tx, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("invoice_item_id", invoiceItemID).Int("quantity", quantity).Msg("invoice item quantity edited")
	resp := toLineResponse(line)
	return &resp, nil
}

// loadLineForWrite resolves the principal, the line and its invoice, and
// applies the write gate.
func (s *invoiceService) loadLineForWrite(ctx context.Context, tx *gorm.DB, id policy.Identity, invoiceItemID uint) (policy.Principal, *model.InvoiceItem, *model.Invoice, error) {
	p, err := resolve(ctx, s.users, tx, id)
	if err != nil {
		return p, nil, nil, err
	}
	line, err := s.lines.FindByID(ctx, tx, invoiceItemID)
	if err != nil {
		return p, nil, nil, err
	}
	inv, err := s.repo.FindByID(ctx, tx, line.InvoiceID)
	if err != nil {
		return p, nil, nil, err
	}
	if err := writeGate(p, inv); err != nil {
		return p, nil, nil, err
	}
	return p, line, inv, nil
}

func linePrice(line *model.InvoiceItem) decimal.Decimal {
	if line.Item == nil {
		return decimal.Zero
	}
	return line.Item.Price
}

// ── DeleteInvoice ─────────────────────────────────────────────────────────────
// Soft delete. Every active record of the invoice is superseded by a single
// Invoice/Deleted record. Deleting twice is a Conflict for a principal that
// could otherwise write the invoice.

func (s *invoiceService) DeleteInvoice(ctx context.Context, id policy.Identity, invoiceID uint) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := resolve(ctx, s.users, tx, id)
		if err != nil {
			return err
		}
		inv, err := s.repo.FindByID(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if !policy.CanWrite(p, inv) {
			return apierror.AccessDenied()
		}
		if inv.Deleted {
			return apierror.Conflict("invoice %d is already deleted", inv.ID)
		}

		if err := s.repo.MarkDeleted(ctx, tx, inv.ID); err != nil {
			return err
		}
		_, err = s.history.RecordEvent(ctx, tx, Event{
			InvoiceID:   inv.ID,
			UserID:      p.UserID,
			Action:      model.ActionDeleted,
			Type:        model.HistoryTypeInvoice,
			Price:       inv.Total(),
			Description: descDeleteInvoice,
		})
		return err
	})
	if err != nil {
		return err
	}

	log.Info().Uint("invoice_id", invoiceID).Msg("invoice deleted")
	return nil
}

// ── GetHistory ────────────────────────────────────────────────────────────────

func (s *invoiceService) GetHistory(ctx context.Context, id policy.Identity, invoiceID uint) ([]dto.HistoryResponse, error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindByID(ctx, nil, invoiceID)
	if err != nil {
		return nil, err
	}
	if !policy.CanRead(p, inv) {
		return nil, apierror.AccessDenied()
	}

	rows, err := s.history.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.HistoryResponse, len(rows))
	for i := range rows {
		resp[i] = toHistoryResponse(&rows[i])
	}
	return resp, nil
}

// CalculateTotal carries no access check; callers gate it with GetInvoice.
func (s *invoiceService) CalculateTotal(ctx context.Context, invoiceID uint) (decimal.Decimal, error) {
	inv, err := s.repo.FindByID(ctx, nil, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.Total(), nil
}

// ── Listings ──────────────────────────────────────────────────────────────────

func (s *invoiceService) ListInvoices(ctx context.Context, id policy.Identity, q dto.PageQuery) (*dto.Page[dto.InvoiceSummary], error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanBrowseAll(p) {
		return nil, apierror.AccessDenied()
	}
	q = normalizePage(q)
	invoices, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return toInvoicePage(invoices, total, q), nil
}

func (s *invoiceService) ListMyInvoices(ctx context.Context, id policy.Identity, q dto.PageQuery) (*dto.Page[dto.InvoiceSummary], error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	q = normalizePage(q)
	invoices, total, err := s.repo.ListByOwner(ctx, p.UserID, q)
	if err != nil {
		return nil, err
	}
	return toInvoicePage(invoices, total, q), nil
}

// SearchInvoices matches owner name or invoice id. Principals that cannot
// browse every invoice only search their own.
func (s *invoiceService) SearchInvoices(ctx context.Context, id policy.Identity, q dto.SearchQuery) (*dto.Page[dto.InvoiceSummary], error) {
	p, err := resolve(ctx, s.users, nil, id)
	if err != nil {
		return nil, err
	}
	search := repository.InvoiceSearch{Term: q.Term, InvoiceID: q.InvoiceID}
	if !policy.CanBrowseAll(p) {
		search.OwnerID = &p.UserID
	}
	page := normalizePage(q.PageQuery)
	invoices, total, err := s.repo.Search(ctx, search, page)
	if err != nil {
		return nil, err
	}
	return toInvoicePage(invoices, total, page), nil
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func normalizePage(q dto.PageQuery) dto.PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	return q
}
