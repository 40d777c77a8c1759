package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"creditmax/internal/services"
)

// AdvisorHandler exposes the model-backed wallet advisor
type AdvisorHandler struct {
	advisorService services.AdvisorServicer
	auditService   services.AuditServicer
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(advisorService services.AdvisorServicer, auditService services.AuditServicer) *AdvisorHandler {
	return &AdvisorHandler{advisorService: advisorService, auditService: auditService}
}

// RefreshBenefits replaces a card's benefit list from the advisor
// @Summary     Refresh card benefits
// @Description Fetch the card's current benefit list from the advisor and merge it, preserving usage on matching titles
// @Tags        advisor
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} map[string]interface{} "Card with refreshed benefits"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     502 {object} ErrorResponse "Advisor unavailable"
// @Router      /cards/{id}/refresh-benefits [post]
func (h *AdvisorHandler) RefreshBenefits(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.advisorService.RefreshCardBenefits(c.Request.Context(), userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "refresh_benefits", "card", card.ID, c.ClientIP(), map[string]any{"benefits": len(card.Benefits)})

	c.JSON(http.StatusOK, gin.H{"card": cardJSON(card, time.Now())})
}

// AnalyzeWallet runs a wallet-wide advisor analysis
// @Summary     Analyze wallet
// @Description Send an anonymized wallet snapshot to the advisor and return its optimization report
// @Tags        advisor
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Analysis report"
// @Failure     502 {object} ErrorResponse "Advisor unavailable"
// @Router      /advisor/analyze [post]
func (h *AdvisorHandler) AnalyzeWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	analysis, err := h.advisorService.AnalyzeWallet(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
