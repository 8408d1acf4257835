package handler

import (
	"net/http"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/middleware"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

type UsersHandler struct{ svc service.UserService }

func NewUsersHandler(svc service.UserService) *UsersHandler { return &UsersHandler{svc: svc} }

// ChangeRole godoc
// @Summary Assign a role to a user (superuser only)
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.ChangeRoleRequest true "User email and role id"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /v1/users/roles [patch]
func (h *UsersHandler) ChangeRole(c *gin.Context) {
	var req dto.ChangeRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeRole(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsersHandler) ListRoles(c *gin.Context) {
	resp, err := h.svc.ListRoles(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
