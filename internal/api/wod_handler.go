package api

import (
	"net/http"
	"time"

	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/service"

	"github.com/gin-gonic/gin"
)

type WodHandler struct {
	wodService service.WodService
}

func NewWodHandler(wodService service.WodService) *WodHandler {
	return &WodHandler{wodService: wodService}
}

// WodRequest is the body of create and update calls. Date accepts YYYY-MM-DD or YYMMDD.
type WodRequest struct {
	Date        string   `json:"date"`
	Title       string   `json:"title" binding:"required"`
	Type        []string `json:"type" binding:"required,min=1,dive,wodcategory"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
}

func (r WodRequest) toInput() service.WodInput {
	return service.WodInput{
		Date:        r.Date,
		Title:       r.Title,
		Categories:  r.Type,
		Description: r.Description,
		Level:       r.Level,
	}
}

type WodResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Title       string    `json:"title"`
	Type        []string  `json:"type"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func MapWodToResponse(w *domain.Workout) WodResponse {
	if w == nil {
		return WodResponse{}
	}
	categories := w.Categories
	if categories == nil {
		categories = []string{}
	}
	return WodResponse{
		ID:          w.ID,
		Date:        w.Date,
		Title:       w.Title,
		Type:        categories,
		Description: w.Description,
		Level:       w.Level,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func MapWodsToResponse(workouts []domain.Workout) []WodResponse {
	responses := make([]WodResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWodToResponse(&workouts[i])
	}
	return responses
}

// CreateWod godoc
// @Summary Publish a workout of the day
// @Tags Wods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param wod body WodRequest true "Workout"
// @Success 201 {object} WodResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Router /wods [post]
func (h *WodHandler) CreateWod(c *gin.Context) {
	var req WodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	w, err := h.wodService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWodToResponse(w))
}

// UpdateWod replaces the workout with the given id.
func (h *WodHandler) UpdateWod(c *gin.Context) {
	var req WodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	w, err := h.wodService.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWodToResponse(w))
}

// UpdateWodByDate edits the workout currently shown for :date.
func (h *WodHandler) UpdateWodByDate(c *gin.Context) {
	var req WodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	w, err := h.wodService.UpdateByDate(c.Request.Context(), c.Param("date"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWodToResponse(w))
}

func (h *WodHandler) GetWodByDate(c *gin.Context) {
	w, err := h.wodService.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWodToResponse(w))
}

func (h *WodHandler) GetTodayWod(c *gin.Context) {
	w, err := h.wodService.Today(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWodToResponse(w))
}

// ListWods returns every workout, or those of ?date= when given.
func (h *WodHandler) ListWods(c *gin.Context) {
	workouts, err := h.wodService.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWodsToResponse(workouts))
}

// Titles maps workout id to title.
func (h *WodHandler) Titles(c *gin.Context) {
	titles, err := h.wodService.Titles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, titles)
}

func (h *WodHandler) Calendar(c *gin.Context) {
	dates, err := h.wodService.Calendar(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
