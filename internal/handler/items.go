package handler

import (
	"net/http"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/middleware"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler { return &ItemsHandler{svc: svc} }

// List godoc
// @Summary List the item catalog
// @Tags items
// @Produce json
// @Success 200 {array} dto.ItemResponse
// @Security BearerAuth
// @Router /v1/items [get]
func (h *ItemsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NotInInvoice lists catalog items that are not yet lines of the invoice.
func (h *ItemsHandler) NotInInvoice(c *gin.Context) {
	invoiceID, ok := paramID(c, "invoiceId")
	if !ok {
		return
	}
	resp, err := h.svc.ListNotInInvoice(c.Request.Context(), middleware.GetIdentity(c), invoiceID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
