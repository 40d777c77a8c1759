package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"creditmax/internal/services"
)

// DashboardHandler serves aggregate wallet views
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary returns wallet-wide benefit totals
// @Summary     Wallet summary
// @Description Total benefit value, used value, capture rate, annual fees, and points
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetCardStats returns per-card utilization
// @Summary     Per-card stats
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Per-card stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/card-stats [get]
func (h *DashboardHandler) GetCardStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.dashboardService.CardStats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetExpiring returns benefits expiring within 60 days
// @Summary     Expiring benefits
// @Description Unredeemed monetary benefits expiring within 60 days, soonest first
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Expiring benefits"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/expiring [get]
func (h *DashboardHandler) GetExpiring(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expiring, err := h.dashboardService.ExpiringSoon(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expiring": expiring})
}

// GetRenewals returns the nearest upcoming charges
// @Summary     Upcoming renewals
// @Description Nearest subscription and AI plan charges by day-of-month distance
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Upcoming renewals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/renewals [get]
func (h *DashboardHandler) GetRenewals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	renewals, err := h.dashboardService.UpcomingRenewals(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"renewals": renewals})
}

// GetAIAlerts returns the heaviest AI quota usage
// @Summary     AI usage alerts
// @Description Quotas sorted by usage percentage, heaviest first
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "AI alerts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/ai-alerts [get]
func (h *DashboardHandler) GetAIAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alerts, err := h.dashboardService.AIAlerts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetPoints returns points balances grouped by program
// @Summary     Points by program
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Points by program"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/points [get]
func (h *DashboardHandler) GetPoints(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	programs, total, err := h.dashboardService.Points(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"programs": programs, "total": total})
}

// GetPerks returns non-monetary perks grouped by category
// @Summary     Perks by category
// @Description Zero-value perks bucketed into Insurance, Status, Travel, and Other
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Perk groups"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /dashboard/perks [get]
func (h *DashboardHandler) GetPerks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groups, err := h.dashboardService.Perks(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}
