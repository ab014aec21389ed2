package http_auth_middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	"github.com/quipstack/core/internal/model"
)

const (
	HeaderUserToken = "X-user-token"
	ctxUserKey      = "user_id"
)

type Identity interface {
	Resolve(token string) (model.UserID, error)
}

type Middleware struct {
	identity Identity
	logger   *slog.Logger
}

func New(identity Identity) *Middleware {
	return &Middleware{
		identity: identity,
		logger:   slog.Default(),
	}
}

// Identify resolves the caller's token into a request-scoped user id.
// Anonymous requests pass through with an empty id; mutating handlers gate
// on Required instead.
func (m *Middleware) Identify() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader(HeaderUserToken)
		userID, err := m.identity.Resolve(token)
		if err != nil {
			m.logger.Error("identity resolve failed", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
			ctx.Abort()
			return
		}

		ctx.Set(ctxUserKey, userID)
		ctx.Next()
	}
}

// Required rejects unauthenticated callers. Run after Identify.
func (m *Middleware) Required() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if CurrentUser(ctx) == model.EmptyUserID {
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "sign in first",
			})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func CurrentUser(ctx *gin.Context) model.UserID {
	v, ok := ctx.Get(ctxUserKey)
	if !ok {
		return model.EmptyUserID
	}
	userID, ok := v.(model.UserID)
	if !ok {
		return model.EmptyUserID
	}
	return userID
}
