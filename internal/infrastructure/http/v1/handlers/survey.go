package handlers

import (
	"github.com/gin-gonic/gin"

	"giftworks/internal/domain/survey"
	"giftworks/internal/infrastructure/http/v1/dto"
)

// SurveyHandler handles assessment submission and history.
type SurveyHandler struct {
	*BaseHandler
	service *survey.Service
}

// NewSurveyHandler creates a new survey handler.
func NewSurveyHandler(base *BaseHandler, service *survey.Service) *SurveyHandler {
	return &SurveyHandler{BaseHandler: base, service: service}
}

// Submit handles POST /surveys.
func (h *SurveyHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	var req dto.SubmitSurveyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sub, err := h.service.Submit(ctx, rc.User, rc.Org, req.Answers)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSubmission(sub))
}

// History handles GET /surveys. Results outside the plan's history window are
// not returned.
func (h *SurveyHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	subs, err := h.service.History(ctx, rc.User, rc.Org, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"submissions": dto.FromSubmissions(subs)})
}

// Export handles GET /surveys/export: full submissions, answers included,
// for plans with the exports entitlement.
func (h *SurveyHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	subs, err := h.service.Export(ctx, rc.User, rc.Org)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"submissions": subs})
}
