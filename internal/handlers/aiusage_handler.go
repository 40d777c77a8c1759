package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
	"creditmax/internal/reset"
	"creditmax/internal/services"
)

// AIUsageHandler handles AI usage quota requests
type AIUsageHandler struct {
	aiUsageService services.AIUsageServicer
	auditService   services.AuditServicer
}

// NewAIUsageHandler creates a new AIUsageHandler
func NewAIUsageHandler(aiUsageService services.AIUsageServicer, auditService services.AuditServicer) *AIUsageHandler {
	return &AIUsageHandler{aiUsageService: aiUsageService, auditService: auditService}
}

// CreateAIItemRequest represents the AI usage item creation payload
type CreateAIItemRequest struct {
	ServiceName string  `json:"service_name" binding:"required,max=255"`
	PlanName    string  `json:"plan_name" binding:"max=255"`
	LoginURL    string  `json:"login_url" binding:"omitempty,url,max=500"`
	QuotaName   string  `json:"quota_name" binding:"required,max=255"`
	QuotaAmount float64 `json:"quota_amount" binding:"min=0"`
	UsedAmount  float64 `json:"used_amount" binding:"min=0"`
	RenewalDay  int     `json:"renewal_day" binding:"required,renewal_day"`
	Frequency   string  `json:"frequency" binding:"omitempty,quota_frequency"`
	AutoPay     bool    `json:"auto_pay"`
}

// UpdateAIItemRequest represents a partial AI usage item update payload
type UpdateAIItemRequest struct {
	ServiceName *string  `json:"service_name" binding:"omitempty,max=255"`
	PlanName    *string  `json:"plan_name" binding:"omitempty,max=255"`
	LoginURL    *string  `json:"login_url" binding:"omitempty,url,max=500"`
	QuotaName   *string  `json:"quota_name" binding:"omitempty,max=255"`
	QuotaAmount *float64 `json:"quota_amount" binding:"omitempty,min=0"`
	RenewalDay  *int     `json:"renewal_day" binding:"omitempty,renewal_day"`
	Frequency   *string  `json:"frequency" binding:"omitempty,quota_frequency"`
	AutoPay     *bool    `json:"auto_pay"`
}

// MoveAIItemRequest represents a reorder request
type MoveAIItemRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// aiItemJSON serializes an AI usage item with its computed reset schedule.
func aiItemJSON(item *models.AIUsageItem, now time.Time) gin.H {
	next := reset.NextQuotaReset(item.Frequency, item.RenewalDay, now)
	return gin.H{
		"id":             item.ID,
		"service_name":   item.ServiceName,
		"plan_name":      item.PlanName,
		"login_url":      item.LoginURL,
		"quota_name":     item.QuotaName,
		"quota_amount":   item.QuotaAmount,
		"used_amount":    item.UsedAmount,
		"renewal_day":    item.RenewalDay,
		"frequency":      item.Frequency,
		"auto_pay":       item.AutoPay,
		"position":       item.Position,
		"usage_percent":  item.UsagePercent(),
		"next_reset":     next.Format("2006-01-02"),
		"days_remaining": reset.DaysRemaining(now, next),
	}
}

func aiItemListJSON(items []models.AIUsageItem, now time.Time) []gin.H {
	out := make([]gin.H, len(items))
	for i := range items {
		out[i] = aiItemJSON(&items[i], now)
	}
	return out
}

// CreateItem handles AI usage item creation
// @Summary     Create an AI usage item
// @Description Track a metered quota on an external AI service
// @Tags        ai-usage
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAIItemRequest true "Item data"
// @Success     201 {object} map[string]interface{} "Created item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /ai-items [post]
func (h *AIUsageHandler) CreateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAIItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.aiUsageService.CreateItem(userID, &models.AIUsageItem{
		ServiceName: req.ServiceName,
		PlanName:    req.PlanName,
		LoginURL:    req.LoginURL,
		QuotaName:   req.QuotaName,
		QuotaAmount: req.QuotaAmount,
		UsedAmount:  req.UsedAmount,
		RenewalDay:  req.RenewalDay,
		Frequency:   models.Frequency(req.Frequency),
		AutoPay:     req.AutoPay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "ai_item", item.ID, c.ClientIP(), map[string]any{"service_name": item.ServiceName})

	c.JSON(http.StatusCreated, gin.H{"item": aiItemJSON(item, time.Now())})
}

// ListItems returns the user's AI usage items in display order
// @Summary     List AI usage items
// @Tags        ai-usage
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Items in display order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /ai-items [get]
func (h *AIUsageHandler) ListItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.aiUsageService.GetUserItems(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": aiItemListJSON(items, time.Now())})
}

// GetItem returns a single AI usage item
// @Summary     Get an AI usage item
// @Tags        ai-usage
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Success     200 {object} map[string]interface{} "Item detail"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /ai-items/{id} [get]
func (h *AIUsageHandler) GetItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.aiUsageService.GetItemByID(userID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": aiItemJSON(item, time.Now())})
}

// UpdateItem handles partial AI usage item updates
// @Summary     Update an AI usage item
// @Description Apply a partial update; shrinking the quota clamps recorded usage
// @Tags        ai-usage
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Param       request body UpdateAIItemRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /ai-items/{id} [put]
func (h *AIUsageHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAIItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.AIItemUpdateFields{
		ServiceName: req.ServiceName,
		PlanName:    req.PlanName,
		LoginURL:    req.LoginURL,
		QuotaName:   req.QuotaName,
		QuotaAmount: req.QuotaAmount,
		RenewalDay:  req.RenewalDay,
		AutoPay:     req.AutoPay,
	}
	if req.Frequency != nil {
		f := models.Frequency(*req.Frequency)
		fields.Frequency = &f
	}

	item, err := h.aiUsageService.UpdateItem(userID, itemID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "ai_item", item.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"item": aiItemJSON(item, time.Now())})
}

// DeleteItem handles AI usage item deletion
// @Summary     Delete an AI usage item
// @Tags        ai-usage
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Success     200 {object} MessageResponse "Item deleted"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /ai-items/{id} [delete]
func (h *AIUsageHandler) DeleteItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.aiUsageService.DeleteItem(userID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "ai_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "AI usage item deleted"})
}

// UpdateUsage handles usage amount updates
// @Summary     Update quota usage
// @Description Set the used amount for a quota, clamped to [0, quota_amount]
// @Tags        ai-usage
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Param       request body UpdateUsageRequest true "Usage amount"
// @Success     200 {object} map[string]interface{} "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /ai-items/{id}/usage [put]
func (h *AIUsageHandler) UpdateUsage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.aiUsageService.UpdateUsage(userID, itemID, *req.UsedAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": aiItemJSON(item, time.Now())})
}

// MoveItem reorders an item within the user's list
// @Summary     Move an AI usage item
// @Description Swap the item with its neighbor in display order; moving past either end is a no-op
// @Tags        ai-usage
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Item ID"
// @Param       request body MoveAIItemRequest true "Direction"
// @Success     200 {object} map[string]interface{} "Items in new order"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Router      /ai-items/{id}/move [post]
func (h *AIUsageHandler) MoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveAIItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items, err := h.aiUsageService.MoveItem(userID, itemID, req.Direction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": aiItemListJSON(items, time.Now())})
}
