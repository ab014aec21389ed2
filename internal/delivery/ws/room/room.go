package ws_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	http_auth_middleware "github.com/quipstack/core/internal/delivery/http/middleware/auth"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const clientSendBuffer = 8

type Controller struct {
	hub    *Hub
	rooms  *usecase_room.Usecase
	auth   *http_auth_middleware.Middleware
	logger *slog.Logger
}

func NewController(hub *Hub, rooms *usecase_room.Usecase, auth *http_auth_middleware.Middleware) *Controller {
	return &Controller{
		hub:    hub,
		rooms:  rooms,
		auth:   auth,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:code/ws", c.auth.Identify(), c.observe)
}

// observe upgrades the connection and attaches it to the room's channel.
// Spectators are welcome: identity is optional here, the stream is the same
// for everyone.
func (c *Controller) observe(ctx *gin.Context) {
	room, err := c.rooms.ResolveByCode(ctx, ctx.Param("code"))
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

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade connection", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		Conn:   conn,
		Send:   make(chan []byte, clientSendBuffer),
		RoomID: room.ID,
		UserID: http_auth_middleware.CurrentUser(ctx),
	}

	c.hub.RegisterClient(client)
	go c.hub.StartClientWriting(client)
	go c.hub.StartClientReading(client)
}
