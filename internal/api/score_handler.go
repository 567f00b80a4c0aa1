package api

import (
	"net/http"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/service"

	"github.com/gin-gonic/gin"
)

type ScoreHandler struct {
	scoreService service.ScoreService
}

func NewScoreHandler(scoreService service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

type ScoreRequest struct {
	MemberName string       `json:"memberName" binding:"required"`
	Date       string       `json:"date" binding:"required"`
	WodID      string       `json:"wodId"`
	Level      domain.Level `json:"level" binding:"required,level"`
	Score      string       `json:"score" binding:"required"`
	ScoreValue *float64     `json:"scoreValue"`
	Remark     string       `json:"remark"`
}

// RecordScore godoc
// @Summary Log a member's result
// @Tags Scores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param score body ScoreRequest true "Score"
// @Success 201 {object} domain.ScoreRecord
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "Referenced workout not found"
// @Router /scores [post]
func (h *ScoreHandler) RecordScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := getIdentity(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	record, err := h.scoreService.Record(c.Request.Context(), identity.UserID, service.ScoreInput{
		MemberName: req.MemberName,
		Date:       req.Date,
		WodID:      req.WodID,
		Level:      req.Level,
		ScoreRaw:   req.Score,
		ScoreValue: req.ScoreValue,
		Remark:     req.Remark,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListScores returns every record of ?date=, ranked or not, in insertion order.
func (h *ScoreHandler) ListScores(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		abortWithError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}
	scores, err := h.scoreService.ListByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// MyWods lists the dates of ?month= on which the caller logged a score.
func (h *ScoreHandler) MyWods(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	dates, err := h.scoreService.MemberDates(c.Request.Context(), identity.Name, c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
