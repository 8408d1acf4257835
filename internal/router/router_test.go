package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/config"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/testutil"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

func init() { gin.SetMode(gin.TestMode) }

type recordingQueue struct{ jobs []worker.ReceiptJobPayload }

func (q *recordingQueue) EnqueueReceipt(_ context.Context, p worker.ReceiptJobPayload) (string, error) {
	q.jobs = append(q.jobs, p)
	return "job-42", nil
}

type api struct {
	t     *testing.T
	db    *gorm.DB
	h     http.Handler
	queue *recordingQueue
	pen   *model.Item
	pad   *model.Item
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 1, JWTRefreshHours: 24}
	q := &recordingQueue{}
	return &api{
		t:     t,
		db:    db,
		h:     New(cfg, db, nil, q),
		queue: q,
		pen:   testutil.CreateItem(t, db, "Pen", "10.00"),
		pad:   testutil.CreateItem(t, db, "Pad", "2.50"),
	}
}

// tokenFor seeds a user and signs an access token the way the auth service does.
func (a *api) tokenFor(name, email string, roleID uint) string {
	a.t.Helper()
	u := testutil.CreateUser(a.t, a.db, name, email, roleID)
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role.Name,
		"typ":     "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(a.t, err)
	return s
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestHealth_WithoutRedis(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestSignupLoginAndCreateInvoice(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		FullName: "Ada Lovelace", Email: "ada@example.com", Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/auth/signup", "", dto.SignupRequest{
		FullName: "Ada Again", Email: "ADA@example.com", Password: "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[dto.LoginResponse](t, w)

	w = a.do(http.MethodPost, "/v1/invoices", login.AccessToken, dto.CreateInvoiceRequest{
		Items: []dto.InvoiceLineRequest{{ItemID: a.pen.ID, Quantity: 2}, {ItemID: a.pad.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[dto.InvoiceResponse](t, w)
	assert.Equal(t, login.User.ID, inv.UserID)
	assert.Len(t, inv.Items, 2)

	w = a.do(http.MethodGet, "/v1/invoices/"+itoa(inv.ID)+"/total", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	total := decode[dto.InvoiceTotalResponse](t, w)
	assert.True(t, decimal.RequireFromString("22.50").Equal(total.Total), total.Total.String())

	// A refresh token is not an access token.
	w = a.do(http.MethodGet, "/v1/invoices/user", login.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(http.MethodPost, "/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decode[dto.LoginResponse](t, w)

	w = a.do(http.MethodGet, "/v1/invoices/user", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.InvoiceSummary]](t, w)
	assert.EqualValues(t, 1, page.Total)
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	ada := a.tokenFor("Ada Lovelace", "ada@example.com", model.RoleIDUser)
	alan := a.tokenFor("Alan Turing", "alan@example.com", model.RoleIDUser)
	auditor := a.tokenFor("Audrey", "audit@example.com", model.RoleIDAuditor)

	w := a.do(http.MethodPost, "/v1/invoices", ada, dto.CreateInvoiceRequest{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[dto.InvoiceResponse](t, w)
	base := "/v1/invoices/" + itoa(inv.ID)

	w = a.do(http.MethodPost, base+"/items", ada, dto.AddItemRequest{ItemID: a.pen.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv = decode[dto.InvoiceResponse](t, w)
	require.Len(t, inv.Items, 1)
	lineURL := "/v1/invoices/items/" + itoa(inv.Items[0].ID)

	w = a.do(http.MethodPost, base+"/items", ada, dto.AddItemRequest{ItemID: a.pen.ID, Quantity: 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, base+"/items", ada, dto.AddItemRequest{ItemID: a.pad.ID, Quantity: 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodPatch, lineURL, alan, dto.EditQuantityRequest{Quantity: 3})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPatch, lineURL, ada, dto.EditQuantityRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3, decode[dto.InvoiceLineResponse](t, w).Quantity)

	w = a.do(http.MethodGet, base, alan, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodGet, base, auditor, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Auditors read but never write.
	w = a.do(http.MethodDelete, base, auditor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodDelete, lineURL, ada, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, lineURL, ada, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodDelete, base, ada, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodPost, base+"/items", ada, dto.AddItemRequest{ItemID: a.pad.ID, Quantity: 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodGet, base+"/history", auditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]dto.HistoryResponse](t, w)
	require.Len(t, history, 5) // Created, Added, Edited, Deleted item, Deleted invoice
	active := 0
	for _, h := range history {
		active += h.Status
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, string(model.ActionDeleted), history[0].Action)
	assert.Equal(t, string(model.HistoryTypeInvoice), history[0].Type)
}

func TestRouteRoleFilters(t *testing.T) {
	a := newAPI(t)
	super := a.tokenFor("Root", "root@example.com", model.RoleIDSuperuser)
	ada := a.tokenFor("Ada", "ada@example.com", model.RoleIDUser)
	auditor := a.tokenFor("Audrey", "audit@example.com", model.RoleIDAuditor)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/invoices", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/invoices", ada, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/invoices", auditor, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/invoices", auditor, dto.CreateInvoiceRequest{}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/items", auditor, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/users/roles", ada, nil).Code)

	w := a.do(http.MethodGet, "/v1/users/roles", super, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.RoleResponse](t, w), 3)

	w = a.do(http.MethodGet, "/v1/invoices?sort=password_hash", super, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodGet, "/v1/invoices/abc", super, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuperuserCreatesOnBehalf(t *testing.T) {
	a := newAPI(t)
	super := a.tokenFor("Root", "root@example.com", model.RoleIDSuperuser)
	ada := a.tokenFor("Ada", "ada@example.com", model.RoleIDUser)

	w := a.do(http.MethodPost, "/v1/invoices/superuser", super, dto.CreateInvoiceRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(http.MethodPost, "/v1/invoices/superuser", super, dto.CreateInvoiceRequest{
		OwnerEmail: "ada@example.com",
		Items:      []dto.InvoiceLineRequest{{ItemID: a.pen.ID, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[dto.InvoiceResponse](t, w)

	w = a.do(http.MethodGet, "/v1/invoices/"+itoa(inv.ID), ada, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// The self-service route ignores a forged owner.
	w = a.do(http.MethodPost, "/v1/invoices", ada, dto.CreateInvoiceRequest{OwnerEmail: "root@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, decode[dto.InvoiceResponse](t, w).UserID, inv.UserID)

	w = a.do(http.MethodGet, "/v1/items/not-in/"+itoa(inv.ID), ada, nil)
	require.Equal(t, http.StatusOK, w.Code)
	remaining := decode[[]dto.ItemResponse](t, w)
	require.Len(t, remaining, 1)
	assert.Equal(t, a.pad.ID, remaining[0].ID)
}

func TestChangeRole(t *testing.T) {
	a := newAPI(t)
	super := a.tokenFor("Root", "root@example.com", model.RoleIDSuperuser)
	a.tokenFor("Ada", "ada@example.com", model.RoleIDUser)

	w := a.do(http.MethodPatch, "/v1/users/roles", super, dto.ChangeRoleRequest{Email: "ada@example.com", RoleID: model.RoleIDAuditor})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.RoleAuditor, decode[dto.UserResponse](t, w).Role)

	w = a.do(http.MethodPatch, "/v1/users/roles", super, dto.ChangeRoleRequest{Email: "ghost@example.com", RoleID: model.RoleIDAuditor})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceiptIsQueued(t *testing.T) {
	a := newAPI(t)
	ada := a.tokenFor("Ada", "ada@example.com", model.RoleIDUser)
	alan := a.tokenFor("Alan", "alan@example.com", model.RoleIDUser)

	w := a.do(http.MethodPost, "/v1/invoices", ada, dto.CreateInvoiceRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decode[dto.InvoiceResponse](t, w)

	w = a.do(http.MethodPost, "/v1/invoices/"+itoa(inv.ID)+"/receipt", alan, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, a.queue.jobs)

	w = a.do(http.MethodPost, "/v1/invoices/"+itoa(inv.ID)+"/receipt", ada, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[dto.ReceiptQueuedResponse](t, w)
	assert.Equal(t, "job-42", resp.JobID)
	assert.Equal(t, "ada@example.com", resp.SendTo)
	require.Len(t, a.queue.jobs, 1)
}

func TestReceiptWithoutQueueIsServerError(t *testing.T) {
	db := testutil.NewDB(t)
	h := New(&config.Config{JWTSecret: testSecret, JWTExpirationHours: 1}, db, nil, nil)
	a := &api{t: t, db: db, h: h}
	ada := a.tokenFor("Ada", "ada@example.com", model.RoleIDUser)

	w := a.do(http.MethodPost, "/v1/invoices", ada, dto.CreateInvoiceRequest{})
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decode[dto.InvoiceResponse](t, w)

	w = a.do(http.MethodPost, "/v1/invoices/"+itoa(inv.ID)+"/receipt", ada, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode[map[string]string](t, w)["detail"])
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newAPI(t)
	var last int
	for i := 0; i <= loginAttemptsPerMinute; i++ {
		last = a.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: "x"}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
