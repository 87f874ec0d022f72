// Package httpapi exposes the encounter engine over HTTP. Routes are
// scoped to a campaign; mutating routes under CURRENT act on the
// campaign's active encounter.
package httpapi

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/orchestrators/encounter"
	"github.com/grimoire-rpg/encounter-api/internal/orchestrators/operation"
)

// Config holds the services the handler dispatches to
type Config struct {
	EncounterService encounter.Service
	OperationService operation.Service
}

// Validate ensures all required services are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.EncounterService == nil {
		vb.RequiredField("EncounterService")
	}
	if c.OperationService == nil {
		vb.RequiredField("OperationService")
	}

	return vb.Build()
}

// Handler serves the campaign encounter routes
type Handler struct {
	encounters encounter.Service
	operations operation.Service
}

// NewHandler creates a new HTTP handler with the provided services
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		encounters: cfg.EncounterService,
		operations: cfg.OperationService,
	}, nil
}

// RegisterRoutes mounts the encounter routes on the server
func (h *Handler) RegisterRoutes(s *server.Hertz) {
	encounters := s.Group("/campaigns/:campaign_id/encounters")
	encounters.POST("", h.createEncounter)
	encounters.GET("", h.listEncounters)

	current := encounters.Group("/CURRENT")
	current.GET("", h.getCurrentEncounter)
	current.POST("/begin", h.beginEncounter)
	current.POST("/finish", h.finishEncounter)
	current.POST("/roll", h.submitRoll)
	current.POST("/move", h.submitMove)
	current.POST("/action", h.submitAction)
	current.GET("/operations", h.listOperations)

	operations := current.Group("/operations/:operation_id")
	operations.GET("", h.getOperation)
	operations.POST("/interactions", h.submitInteractionResult)
	operations.POST("/approve", h.approveOperation)
	operations.POST("/reject", h.rejectOperation)
}

type createEncounterRequest struct {
	CharacterIDs []string `json:"character_ids"`
}

type rollRequest struct {
	CharacterID string         `json:"character_id"`
	RollType    dnd5e.RollType `json:"roll_type"`
}

type moveRequest struct {
	CharacterID      string         `json:"character_id"`
	Position         dnd5e.Position `json:"position"`
	IgnoreViolations bool           `json:"ignore_violations"`
}

type actionRequest struct {
	CharacterID      string       `json:"character_id"`
	Action           dnd5e.Action `json:"action"`
	IgnoreViolations bool         `json:"ignore_violations"`
}

type interactionResultRequest struct {
	CharacterID   string `json:"character_id"`
	InteractionID string `json:"interaction_id"`
	Result        int    `json:"result"`
}

func (h *Handler) createEncounter(c context.Context, ctx *app.RequestContext) {
	var body createEncounterRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid json body"))
		return
	}

	output, err := h.encounters.CreateEncounter(c, &encounter.CreateEncounterInput{
		CampaignID:   ctx.Param("campaign_id"),
		CharacterIDs: body.CharacterIDs,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, output.Encounter)
}

func (h *Handler) listEncounters(c context.Context, ctx *app.RequestContext) {
	output, err := h.encounters.ListEncounters(c, &encounter.ListEncountersInput{
		CampaignID: ctx.Param("campaign_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Encounters)
}

func (h *Handler) getCurrentEncounter(c context.Context, ctx *app.RequestContext) {
	output, err := h.encounters.GetCurrentEncounter(c, &encounter.GetCurrentEncounterInput{
		CampaignID: ctx.Param("campaign_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Encounter)
}

func (h *Handler) beginEncounter(c context.Context, ctx *app.RequestContext) {
	output, err := h.encounters.BeginEncounter(c, &encounter.BeginEncounterInput{
		CampaignID: ctx.Param("campaign_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Encounter)
}

func (h *Handler) finishEncounter(c context.Context, ctx *app.RequestContext) {
	output, err := h.encounters.FinishEncounter(c, &encounter.FinishEncounterInput{
		CampaignID: ctx.Param("campaign_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Encounter)
}

func (h *Handler) submitRoll(c context.Context, ctx *app.RequestContext) {
	var body rollRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid json body"))
		return
	}

	output, err := h.operations.SubmitRoll(c, &operation.SubmitRollInput{
		CampaignID:  ctx.Param("campaign_id"),
		CharacterID: body.CharacterID,
		RollType:    body.RollType,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, output.Operation)
}

func (h *Handler) submitMove(c context.Context, ctx *app.RequestContext) {
	var body moveRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid json body"))
		return
	}

	output, err := h.operations.SubmitMove(c, &operation.SubmitMoveInput{
		CampaignID:       ctx.Param("campaign_id"),
		CharacterID:      body.CharacterID,
		ToPosition:       body.Position,
		IgnoreViolations: body.IgnoreViolations,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, output.Operation)
}

func (h *Handler) submitAction(c context.Context, ctx *app.RequestContext) {
	var body actionRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid json body"))
		return
	}

	output, err := h.operations.SubmitAction(c, &operation.SubmitActionInput{
		CampaignID:       ctx.Param("campaign_id"),
		CharacterID:      body.CharacterID,
		Action:           body.Action,
		IgnoreViolations: body.IgnoreViolations,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, output.Operation)
}

func (h *Handler) listOperations(c context.Context, ctx *app.RequestContext) {
	output, err := h.operations.ListOperations(c, &operation.ListOperationsInput{
		CampaignID: ctx.Param("campaign_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Operations)
}

func (h *Handler) getOperation(c context.Context, ctx *app.RequestContext) {
	output, err := h.operations.GetOperation(c, &operation.GetOperationInput{
		CampaignID:  ctx.Param("campaign_id"),
		OperationID: ctx.Param("operation_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Operation)
}

func (h *Handler) submitInteractionResult(c context.Context, ctx *app.RequestContext) {
	var body interactionResultRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeError(ctx, errors.InvalidArgument("invalid json body"))
		return
	}

	output, err := h.operations.SubmitInteractionResult(c, &operation.SubmitInteractionResultInput{
		CampaignID:    ctx.Param("campaign_id"),
		OperationID:   ctx.Param("operation_id"),
		InteractionID: body.InteractionID,
		CharacterID:   body.CharacterID,
		Result:        body.Result,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Operation)
}

func (h *Handler) approveOperation(c context.Context, ctx *app.RequestContext) {
	output, err := h.operations.ApproveOperation(c, &operation.ApproveOperationInput{
		CampaignID:  ctx.Param("campaign_id"),
		OperationID: ctx.Param("operation_id"),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, output.Operation)
}

func (h *Handler) rejectOperation(c context.Context, ctx *app.RequestContext) {
	if _, err := h.operations.RejectOperation(c, &operation.RejectOperationInput{
		CampaignID:  ctx.Param("campaign_id"),
		OperationID: ctx.Param("operation_id"),
	}); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, map[string]string{"status": "rejected"})
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeError maps a structured error to its HTTP status and serializes
// it as the response body.
func writeError(ctx *app.RequestContext, err error) {
	var structured *errors.Error
	if !errors.As(err, &structured) {
		structured = errors.Internal("internal error")
	}

	ctx.JSON(errors.GetCode(err).HTTPStatus(), map[string]any{"error": structured})
}
