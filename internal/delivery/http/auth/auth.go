package http_auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	http_auth_middleware "github.com/quipstack/core/internal/delivery/http/middleware/auth"
	service_guest_auth "github.com/quipstack/core/internal/service/auth/guest"
)

type Controller struct {
	service *service_guest_auth.Service
	logger  *slog.Logger
}

func New(service *service_guest_auth.Service) *Controller {
	return &Controller{
		service: service,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/sessions", c.signIn)
	}
}

type SignInResponseDTO struct {
	UserID string `json:"user_id"`
}

// signIn mints a guest session.
// @Summary Guest sign-in
// @Description Creates an anonymous identity and returns its bearer token
// @Tags Auth
// @Produce json
// @Success 201 {object} SignInResponseDTO "Session created"
// @Header 201 {string} X-user-token "Session token"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /auth/sessions [post]
func (c *Controller) signIn(ctx *gin.Context) {
	token, userID, err := c.service.SignIn()
	if err != nil {
		c.logger.Error("failed to sign in", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.Header(http_auth_middleware.HeaderUserToken, token)
	ctx.JSON(http.StatusCreated, SignInResponseDTO{
		UserID: string(userID),
	})
}
