package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	http_auth_middleware "github.com/quipstack/core/internal/delivery/http/middleware/auth"
	"github.com/quipstack/core/internal/model"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
)

type Controller struct {
	usecase *usecase_room.Usecase
	auth    *http_auth_middleware.Middleware
	logger  *slog.Logger
}

func New(usecase *usecase_room.Usecase, auth *http_auth_middleware.Middleware) *Controller {
	return &Controller{
		usecase: usecase,
		auth:    auth,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms", c.auth.Identify())
	{
		rooms.POST("", c.auth.Required(), c.create)
		rooms.GET("/:code", c.get)
		rooms.POST("/:code/members", c.auth.Required(), c.join)
		rooms.PUT("/:code/deck", c.auth.Required(), c.setDeck)
		rooms.DELETE("/:code", c.auth.Required(), c.close)
	}
}

type RoomDTO struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
	HostID string `json:"host_id"`
	DeckID string `json:"deck_id"`
}

type MemberDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Score  int    `json:"score"`
}

type CreateRoomRequestDTO struct {
	DeckID string `json:"deck_id" binding:"required"`
}

// create books a new room with the caller as host.
// @Summary Create room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param request body CreateRoomRequestDTO true "Deck selection"
// @Success 201 {object} RoomDTO "Room created"
// @Failure 401 {object} http_common.ErrorResponse "Not signed in"
// @Failure 503 {object} http_common.ErrorResponse "Code space exhausted"
// @Security UserToken
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	var req CreateRoomRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	room, err := c.usecase.Create(ctx, http_auth_middleware.CurrentUser(ctx), req.DeckID)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "sign in first",
			})
		case errors.Is(err, usecase_room.ErrCodeSpaceExhausted):
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "no room codes available, try again later",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, toRoomDTO(room))
}

type RoomViewDTO struct {
	Room    RoomDTO     `json:"room"`
	Members []MemberDTO `json:"members"`
}

// get resolves a room by its code, members included.
// @Summary Get room by code
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code (case-insensitive)"
// @Success 200 {object} RoomViewDTO "Room and membership"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Router /rooms/{code} [get]
func (c *Controller) get(ctx *gin.Context) {
	room, err := c.usecase.ResolveByCode(ctx, ctx.Param("code"))
	if err != nil {
		if errors.Is(err, usecase_room.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		c.logger.Error("failed to resolve room", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	members, err := c.usecase.Members(ctx, room.ID)
	if err != nil {
		c.logger.Error("failed to list members", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	out := RoomViewDTO{Room: toRoomDTO(room)}
	for _, m := range members {
		out.Members = append(out.Members, toMemberDTO(m))
	}
	ctx.JSON(http.StatusOK, out)
}

type JoinRequestDTO struct {
	Role string `json:"role"`
}

// join adds or refreshes the caller's membership.
// @Summary Join room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body JoinRequestDTO false "Requested role, defaults to player"
// @Success 201 {object} MemberDTO "Membership"
// @Failure 401 {object} http_common.ErrorResponse "Not signed in"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Room closed"
// @Security UserToken
// @Router /rooms/{code}/members [post]
func (c *Controller) join(ctx *gin.Context) {
	var req JoinRequestDTO
	_ = ctx.ShouldBindJSON(&req)

	member, err := c.usecase.Join(ctx, ctx.Param("code"),
		http_auth_middleware.CurrentUser(ctx), req.Role)
	if err != nil {
		c.logger.Error("failed to join room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_room.ErrRoomClosed):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "room is closed",
			})
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "role not allowed",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, toMemberDTO(member))
}

type SetDeckRequestDTO struct {
	DeckID string `json:"deck_id" binding:"required"`
}

// setDeck swaps the room's deck between rounds.
// @Summary Change deck
// @Tags Rooms
// @Accept json
// @Param code path string true "Room code"
// @Param request body SetDeckRequestDTO true "New deck"
// @Success 204 "Deck changed"
// @Failure 403 {object} http_common.ErrorResponse "Host only"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Round in progress"
// @Security UserToken
// @Router /rooms/{code}/deck [put]
func (c *Controller) setDeck(ctx *gin.Context) {
	var req SetDeckRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	err := c.usecase.SetDeck(ctx, ctx.Param("code"),
		http_auth_middleware.CurrentUser(ctx), req.DeckID)
	if err != nil {
		c.logger.Error("failed to set deck", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "host only",
			})
		case errors.Is(err, usecase_room.ErrActiveRound):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "finish the current round first",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// close ends the session for everyone.
// @Summary Close room
// @Tags Rooms
// @Param code path string true "Room code"
// @Success 204 "Room closed"
// @Failure 403 {object} http_common.ErrorResponse "Host only"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Security UserToken
// @Router /rooms/{code} [delete]
func (c *Controller) close(ctx *gin.Context) {
	err := c.usecase.Close(ctx, ctx.Param("code"), http_auth_middleware.CurrentUser(ctx))
	if err != nil {
		c.logger.Error("failed to close room", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_room.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_room.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "host only",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func toRoomDTO(r model.Room) RoomDTO {
	return RoomDTO{
		ID:     r.ID.String(),
		Code:   r.Code,
		Status: r.Status,
		HostID: string(r.HostID),
		DeckID: r.DeckID,
	}
}

func toMemberDTO(m model.Member) MemberDTO {
	return MemberDTO{
		ID:     m.ID.String(),
		UserID: string(m.UserID),
		Role:   m.Role,
		Score:  m.Score,
	}
}
