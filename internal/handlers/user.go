package handlers

import (
	"net/http"

	"socialshop/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile - 用户主页 GET /api/users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, "GET_USER", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetched user successfully!", "data": profile})
}
