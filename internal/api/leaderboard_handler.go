package api

import (
	"net/http"

	"cfq/wod-board/internal/service"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary Leaderboard of a day
// @Description ?level= selects one level; empty or "all" returns the cross-level board.
// @Tags Leaderboard
// @Produce json
// @Param date path string true "YYYY-MM-DD or YYMMDD"
// @Param level query string false "Rxd, Scaled, A, B, C or all"
// @Success 200 {object} service.Leaderboard
// @Failure 400 {object} gin.H "Invalid date"
// @Router /leaderboard/day/{date} [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	board, err := h.leaderboardService.Leaderboard(c.Request.Context(), c.Param("date"), c.Query("level"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *LeaderboardHandler) GetTodayLeaderboard(c *gin.Context) {
	board, err := h.leaderboardService.Today(c.Request.Context(), c.Query("level"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// ExportLeaderboard stores the day's board in object storage and returns a
// presigned download link.
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	export, err := h.leaderboardService.Export(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, export)
}
