package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
	"creditmax/internal/services"
)

// BenefitHandler handles benefit-related requests
type BenefitHandler struct {
	benefitService services.BenefitServicer
	auditService   services.AuditServicer
}

// NewBenefitHandler creates a new BenefitHandler
func NewBenefitHandler(benefitService services.BenefitServicer, auditService services.AuditServicer) *BenefitHandler {
	return &BenefitHandler{benefitService: benefitService, auditService: auditService}
}

// AddBenefitRequest represents the benefit creation payload
type AddBenefitRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=1000"`
	Value       float64 `json:"value" binding:"min=0"`
	Frequency   string  `json:"frequency" binding:"required,benefit_frequency"`
	IsCredit    bool    `json:"is_credit"`
	Category    string  `json:"category" binding:"max=100"`
	ResetType   string  `json:"reset_type" binding:"omitempty,reset_type"`
}

// UpdateBenefitRequest represents a partial benefit update payload
type UpdateBenefitRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Value       *float64 `json:"value" binding:"omitempty,min=0"`
	Frequency   *string  `json:"frequency" binding:"omitempty,benefit_frequency"`
	IsCredit    *bool    `json:"is_credit"`
	Category    *string  `json:"category" binding:"omitempty,max=100"`
	ResetType   *string  `json:"reset_type" binding:"omitempty,reset_type"`
	Position    *int     `json:"position" binding:"omitempty,min=0"`
}

// UpdateUsageRequest represents a usage amount update
type UpdateUsageRequest struct {
	UsedAmount *float64 `json:"used_amount" binding:"required,min=0"`
}

// SetHiddenRequest represents a hide/show toggle
type SetHiddenRequest struct {
	IsHidden *bool `json:"is_hidden" binding:"required"`
}

// AddBenefit handles adding a benefit to a card
// @Summary     Add a benefit
// @Description Add a benefit to one of the user's cards
// @Tags        benefits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Param       request body AddBenefitRequest true "Benefit data"
// @Success     201 {object} map[string]interface{} "Created benefit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id}/benefits [post]
func (h *BenefitHandler) AddBenefit(c *gin.Context) {
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

	var req AddBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	benefit, err := h.benefitService.AddBenefit(userID, cardID, &models.Benefit{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		Frequency:   models.Frequency(req.Frequency),
		IsCredit:    req.IsCredit,
		Category:    req.Category,
		ResetType:   models.ResetType(req.ResetType),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "benefit", benefit.ID, c.ClientIP(), map[string]any{"title": benefit.Title})

	c.JSON(http.StatusCreated, gin.H{"benefit": benefit})
}

// UpdateBenefit handles partial benefit updates
// @Summary     Update a benefit
// @Description Apply a partial update to a benefit
// @Tags        benefits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Benefit ID"
// @Param       request body UpdateBenefitRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated benefit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Benefit not found"
// @Router      /benefits/{id} [put]
func (h *BenefitHandler) UpdateBenefit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.BenefitUpdateFields{
		Title:       req.Title,
		Description: req.Description,
		Value:       req.Value,
		IsCredit:    req.IsCredit,
		Category:    req.Category,
		Position:    req.Position,
	}
	if req.Frequency != nil {
		f := models.Frequency(*req.Frequency)
		fields.Frequency = &f
	}
	if req.ResetType != nil {
		r := models.ResetType(*req.ResetType)
		fields.ResetType = &r
	}

	benefit, err := h.benefitService.UpdateBenefit(userID, benefitID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "benefit", benefit.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"benefit": benefit})
}

// DeleteBenefit handles benefit deletion
// @Summary     Delete a benefit
// @Description Remove a benefit from its card
// @Tags        benefits
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Benefit ID"
// @Success     200 {object} MessageResponse "Benefit deleted"
// @Failure     404 {object} ErrorResponse "Benefit not found"
// @Router      /benefits/{id} [delete]
func (h *BenefitHandler) DeleteBenefit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.benefitService.DeleteBenefit(userID, benefitID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "benefit", benefitID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Benefit deleted"})
}

// UpdateUsage handles usage amount updates
// @Summary     Update benefit usage
// @Description Set the used amount for a benefit, clamped to [0, value]
// @Tags        benefits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Benefit ID"
// @Param       request body UpdateUsageRequest true "Usage amount"
// @Success     200 {object} map[string]interface{} "Updated benefit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Benefit not found"
// @Router      /benefits/{id}/usage [put]
func (h *BenefitHandler) UpdateUsage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	benefit, err := h.benefitService.UpdateUsage(userID, benefitID, *req.UsedAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"benefit": benefit})
}

// ToggleRedeemed flips a benefit between fully used and unused
// @Summary     Toggle benefit redemption
// @Description Mark a benefit fully redeemed, or reset its usage to zero
// @Tags        benefits
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Benefit ID"
// @Success     200 {object} map[string]interface{} "Updated benefit"
// @Failure     404 {object} ErrorResponse "Benefit not found"
// @Router      /benefits/{id}/toggle [post]
func (h *BenefitHandler) ToggleRedeemed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefit, err := h.benefitService.ToggleRedeemed(userID, benefitID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"benefit": benefit})
}

// SetHidden hides or shows a benefit
// @Summary     Hide or show a benefit
// @Description Hidden benefits are excluded from dashboards and analysis
// @Tags        benefits
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Benefit ID"
// @Param       request body SetHiddenRequest true "Hidden flag"
// @Success     200 {object} map[string]interface{} "Updated benefit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Benefit not found"
// @Router      /benefits/{id}/hidden [put]
func (h *BenefitHandler) SetHidden(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	benefitID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetHiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	benefit, err := h.benefitService.SetHidden(userID, benefitID, *req.IsHidden)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"benefit": benefit})
}
