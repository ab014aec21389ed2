package http_round

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/quipstack/core/internal/delivery/http/common"
	http_auth_middleware "github.com/quipstack/core/internal/delivery/http/middleware/auth"
	"github.com/quipstack/core/internal/model"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
	usecase_round "github.com/quipstack/core/internal/usecase/round"
)

type Controller struct {
	rounds *usecase_round.Usecase
	rooms  *usecase_room.Usecase
	auth   *http_auth_middleware.Middleware
	logger *slog.Logger
}

func New(rounds *usecase_round.Usecase, rooms *usecase_room.Usecase, auth *http_auth_middleware.Middleware) *Controller {
	return &Controller{
		rounds: rounds,
		rooms:  rooms,
		auth:   auth,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms/:code", c.auth.Identify())
	{
		rooms.POST("/rounds", c.auth.Required(), c.start)
		rooms.GET("/rounds/latest", c.latest)
		rooms.GET("/hand", c.auth.Required(), c.hand)
	}

	rounds := router.Group("/rounds/:round_id", c.auth.Identify(), c.auth.Required())
	{
		rounds.POST("/submissions", c.submit)
		rounds.POST("/winner", c.pickWinner)
	}
}

type RoundDTO struct {
	ID                  string `json:"id"`
	RoomID              string `json:"room_id"`
	PromptCardID        string `json:"prompt_card_id"`
	PromptText          string `json:"prompt_text"`
	State               string `json:"state"`
	WinningSubmissionID string `json:"winning_submission_id,omitempty"`
}

type SubmissionDTO struct {
	ID       string `json:"id"`
	RoundID  string `json:"round_id"`
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

type CardDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// start opens a new round for the room.
// @Summary Start round
// @Tags Rounds
// @Produce json
// @Param code path string true "Room code"
// @Success 201 {object} RoundDTO "Round started"
// @Failure 403 {object} http_common.ErrorResponse "Host only"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Previous round still submitting"
// @Failure 412 {object} http_common.ErrorResponse "Deck has no prompt cards"
// @Security UserToken
// @Router /rooms/{code}/rounds [post]
func (c *Controller) start(ctx *gin.Context) {
	room, ok := c.resolveRoom(ctx)
	if !ok {
		return
	}

	round, err := c.rounds.Start(ctx, room.ID, http_auth_middleware.CurrentUser(ctx))
	if err != nil {
		c.logger.Error("failed to start round", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_round.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "host only",
			})
		case errors.Is(err, usecase_round.ErrActiveRound):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "previous round is still submitting",
			})
		case errors.Is(err, usecase_round.ErrNoPromptCards):
			ctx.JSON(http.StatusPreconditionFailed, http_common.ErrorResponse{
				Message: "deck has no prompt cards",
			})
		case errors.Is(err, usecase_room.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, toRoundDTO(round))
}

type LatestRoundResponseDTO struct {
	Round       RoundDTO        `json:"round"`
	Submissions []SubmissionDTO `json:"submissions"`
}

// latest returns the room's newest round with its submissions.
// @Summary Latest round
// @Tags Rounds
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} LatestRoundResponseDTO "Round and submissions"
// @Failure 404 {object} http_common.ErrorResponse "No rounds yet"
// @Router /rooms/{code}/rounds/latest [get]
func (c *Controller) latest(ctx *gin.Context) {
	room, ok := c.resolveRoom(ctx)
	if !ok {
		return
	}

	round, subs, err := c.rounds.Latest(ctx, room.ID)
	if err != nil {
		if errors.Is(err, usecase_round.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		c.logger.Error("failed to fetch latest round", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	out := LatestRoundResponseDTO{Round: toRoundDTO(round)}
	for _, s := range subs {
		out.Submissions = append(out.Submissions, toSubmissionDTO(s))
	}
	ctx.JSON(http.StatusOK, out)
}

// hand deals the caller's response cards for the current round.
// @Summary Deal hand
// @Tags Rounds
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {array} CardDTO "Response cards"
// @Failure 401 {object} http_common.ErrorResponse "Not signed in"
// @Failure 404 {object} http_common.ErrorResponse "No rounds yet"
// @Security UserToken
// @Router /rooms/{code}/hand [get]
func (c *Controller) hand(ctx *gin.Context) {
	room, ok := c.resolveRoom(ctx)
	if !ok {
		return
	}

	cards, err := c.rounds.Hand(ctx, room.ID, http_auth_middleware.CurrentUser(ctx))
	if err != nil {
		switch {
		case errors.Is(err, usecase_round.ErrNotFound), errors.Is(err, usecase_room.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		default:
			c.logger.Error("failed to deal hand", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	out := make([]CardDTO, 0, len(cards))
	for _, card := range cards {
		out = append(out, CardDTO{ID: card.ID, Text: card.Text})
	}
	ctx.JSON(http.StatusOK, out)
}

type SubmitRequestDTO struct {
	Text string `json:"text" binding:"required"`
}

// submit records the caller's single response for the round.
// @Summary Submit response
// @Tags Rounds
// @Accept json
// @Produce json
// @Param round_id path string true "Round id"
// @Param request body SubmitRequestDTO true "Response text"
// @Success 201 {object} SubmissionDTO "Submission recorded"
// @Failure 401 {object} http_common.ErrorResponse "Not signed in"
// @Failure 404 {object} http_common.ErrorResponse "Round not found"
// @Failure 409 {object} http_common.ErrorResponse "Duplicate or round complete"
// @Security UserToken
// @Router /rounds/{round_id}/submissions [post]
func (c *Controller) submit(ctx *gin.Context) {
	roundID, err := uuid.Parse(ctx.Param("round_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid round id",
		})
		return
	}

	var req SubmitRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	sub, err := c.rounds.Submit(ctx, roundID, http_auth_middleware.CurrentUser(ctx), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, usecase_round.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_round.ErrRoundComplete):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "round is no longer accepting submissions",
			})
		case errors.Is(err, usecase_round.ErrAlreadyPlayed):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "already played this round",
			})
		default:
			c.logger.Error("failed to submit", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, toSubmissionDTO(sub))
}

type PickWinnerRequestDTO struct {
	SubmissionID string `json:"submission_id" binding:"required"`
}

// pickWinner completes the round and awards the point.
// @Summary Pick winner
// @Tags Rounds
// @Accept json
// @Produce json
// @Param round_id path string true "Round id"
// @Param request body PickWinnerRequestDTO true "Winning submission"
// @Success 200 {object} RoundDTO "Completed round"
// @Failure 403 {object} http_common.ErrorResponse "Host only"
// @Failure 404 {object} http_common.ErrorResponse "Round or submission not found"
// @Failure 409 {object} http_common.ErrorResponse "Round already complete or wrong round"
// @Security UserToken
// @Router /rounds/{round_id}/winner [post]
func (c *Controller) pickWinner(ctx *gin.Context) {
	roundID, err := uuid.Parse(ctx.Param("round_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid round id",
		})
		return
	}

	var req PickWinnerRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}
	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid submission id",
		})
		return
	}

	round, err := c.rounds.PickWinner(ctx, roundID, http_auth_middleware.CurrentUser(ctx), submissionID)
	if err != nil {
		c.logger.Error("failed to pick winner", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_round.ErrNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
		case errors.Is(err, usecase_round.ErrPermissionDenied):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: "host only",
			})
		case errors.Is(err, usecase_round.ErrRoundComplete):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "round is already complete",
			})
		case errors.Is(err, usecase_round.ErrWrongRound):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: "submission belongs to another round",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, toRoundDTO(round))
}

// resolveRoom maps the :code path segment to a room, writing the error
// response itself when that fails.
func (c *Controller) resolveRoom(ctx *gin.Context) (model.Room, bool) {
	room, err := c.rooms.ResolveByCode(ctx, ctx.Param("code"))
	if err != nil {
		if errors.Is(err, usecase_room.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return model.Room{}, false
		}
		c.logger.Error("failed to resolve room", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return model.Room{}, false
	}
	return room, true
}

func toRoundDTO(r model.Round) RoundDTO {
	dto := RoundDTO{
		ID:           r.ID.String(),
		RoomID:       r.RoomID.String(),
		PromptCardID: r.PromptCardID,
		PromptText:   r.PromptText,
		State:        r.State,
	}
	if r.WinningSubmissionID != nil {
		dto.WinningSubmissionID = r.WinningSubmissionID.String()
	}
	return dto
}

func toSubmissionDTO(s model.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:       s.ID.String(),
		RoundID:  s.RoundID.String(),
		PlayerID: string(s.PlayerID),
		Text:     s.Text,
	}
}
