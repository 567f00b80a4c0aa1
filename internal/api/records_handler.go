package api

import (
	"net/http"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordsHandler serves the caller's personal records.
type RecordsHandler struct {
	recordService service.PersonalRecordService
}

func NewRecordsHandler(recordService service.PersonalRecordService) *RecordsHandler {
	return &RecordsHandler{recordService: recordService}
}

type RecordEntry struct {
	Kind  domain.RecordKind `json:"kind" binding:"required,oneof=1RM 3RM 5RM"`
	Lift  string            `json:"lift" binding:"required"`
	Value float64           `json:"value" binding:"gt=0"`
}

type SaveRecordsRequest struct {
	Records []RecordEntry `json:"records" binding:"required,min=1,dive"`
}

// ListRecords returns the caller's records, optionally filtered by ?kind=.
func (h *RecordsHandler) ListRecords(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	records, err := h.recordService.List(c.Request.Context(), identity.UserID, domain.RecordKind(c.Query("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// SaveRecords godoc
// @Summary Save personal records
// @Description Upserts one record per (kind, lift). Values are pounds.
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param records body SaveRecordsRequest true "Records"
// @Success 200 {array} domain.PersonalRecord
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /me/records [put]
func (h *RecordsHandler) SaveRecords(c *gin.Context) {
	var req SaveRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := getIdentity(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	entries := make([]service.RecordInput, len(req.Records))
	for i, r := range req.Records {
		entries[i] = service.RecordInput{Kind: r.Kind, Lift: r.Lift, Value: r.Value}
	}

	saved, err := h.recordService.Save(c.Request.Context(), identity.UserID, entries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
