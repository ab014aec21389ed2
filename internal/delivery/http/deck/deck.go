package http_deck

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	"github.com/quipstack/core/internal/model"
)

type Catalog interface {
	Decks(ctx context.Context) ([]model.Deck, error)
}

type Controller struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog) *Controller {
	return &Controller{
		catalog: catalog,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/decks", c.list)
}

type DeckDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// list returns the decks a host can pick for a room.
// @Summary List decks
// @Tags Decks
// @Produce json
// @Success 200 {array} DeckDTO "Available decks"
// @Router /decks [get]
func (c *Controller) list(ctx *gin.Context) {
	decks, err := c.catalog.Decks(ctx)
	if err != nil {
		c.logger.Error("failed to list decks", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	out := make([]DeckDTO, 0, len(decks))
	for _, d := range decks {
		out = append(out, DeckDTO{ID: d.ID, Name: d.Name})
	}
	ctx.JSON(http.StatusOK, out)
}
