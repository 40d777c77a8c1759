package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
	"creditmax/internal/pagination"
	"creditmax/internal/reset"
	"creditmax/internal/services"
)

// SubscriptionHandler handles subscription-related requests
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
	auditService        services.AuditServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer, auditService services.AuditServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, auditService: auditService}
}

// CreateSubscriptionRequest represents the subscription creation payload
type CreateSubscriptionRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	Cost         float64 `json:"cost" binding:"min=0"`
	Frequency    string  `json:"frequency" binding:"omitempty,oneof=Monthly Annual"`
	RenewalDay   int     `json:"renewal_day" binding:"required,renewal_day"`
	Category     string  `json:"category" binding:"max=100"`
	LinkedCardID string  `json:"linked_card_id" binding:"omitempty,uuid"`
	AutoPay      bool    `json:"auto_pay"`
}

// UpdateSubscriptionRequest represents a partial subscription update payload
type UpdateSubscriptionRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=255"`
	Cost         *float64 `json:"cost" binding:"omitempty,min=0"`
	Frequency    *string  `json:"frequency" binding:"omitempty,oneof=Monthly Annual"`
	RenewalDay   *int     `json:"renewal_day" binding:"omitempty,renewal_day"`
	Category     *string  `json:"category" binding:"omitempty,max=100"`
	LinkedCardID *string  `json:"linked_card_id"` // empty string unlinks
	AutoPay      *bool    `json:"auto_pay"`
}

// subscriptionJSON serializes a subscription with its next renewal date.
func subscriptionJSON(sub *models.Subscription, now time.Time) gin.H {
	next := reset.NextQuotaReset(sub.Frequency, sub.RenewalDay, now)
	return gin.H{
		"id":             sub.ID,
		"name":           sub.Name,
		"cost":           sub.Cost,
		"frequency":      sub.Frequency,
		"renewal_day":    sub.RenewalDay,
		"category":       sub.Category,
		"linked_card_id": sub.LinkedCardID,
		"auto_pay":       sub.AutoPay,
		"next_renewal":   next.Format("2006-01-02"),
		"days_remaining": reset.DaysRemaining(now, next),
	}
}

// CreateSubscription handles subscription creation
// @Summary     Create a subscription
// @Description Track a recurring paid service, optionally linked to a card
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSubscriptionRequest true "Subscription data"
// @Success     201 {object} map[string]interface{} "Created subscription"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Linked card not found"
// @Router      /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(userID, &models.Subscription{
		Name:         req.Name,
		Cost:         req.Cost,
		Frequency:    models.Frequency(req.Frequency),
		RenewalDay:   req.RenewalDay,
		Category:     req.Category,
		LinkedCardID: req.LinkedCardID,
		AutoPay:      req.AutoPay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "subscription", sub.ID, c.ClientIP(), map[string]any{"name": sub.Name})

	c.JSON(http.StatusCreated, gin.H{"subscription": subscriptionJSON(sub, time.Now())})
}

// ListSubscriptions returns the user's subscriptions
// @Summary     List subscriptions
// @Description Get a paginated list of the user's subscriptions
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Paginated subscriptions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.subscriptionService.GetUserSubscriptions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	subs := make([]gin.H, len(result.Data))
	for i := range result.Data {
		subs[i] = subscriptionJSON(&result.Data[i], now)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        subs,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_items": result.TotalItems,
		"total_pages": result.TotalPages,
	})
}

// GetSubscription returns a single subscription
// @Summary     Get a subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} map[string]interface{} "Subscription detail"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.subscriptionService.GetSubscriptionByID(userID, subID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscriptionJSON(sub, time.Now())})
}

// UpdateSubscription handles partial subscription updates
// @Summary     Update a subscription
// @Description Apply a partial update; an empty linked_card_id unlinks the card
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Param       request body UpdateSubscriptionRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated subscription"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.SubscriptionUpdateFields{
		Name:         req.Name,
		Cost:         req.Cost,
		RenewalDay:   req.RenewalDay,
		Category:     req.Category,
		LinkedCardID: req.LinkedCardID,
		AutoPay:      req.AutoPay,
	}
	if req.Frequency != nil {
		f := models.Frequency(*req.Frequency)
		fields.Frequency = &f
	}

	sub, err := h.subscriptionService.UpdateSubscription(userID, subID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "subscription", sub.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"subscription": subscriptionJSON(sub, time.Now())})
}

// DeleteSubscription handles subscription deletion
// @Summary     Delete a subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} MessageResponse "Subscription deleted"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Router      /subscriptions/{id} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subscriptionService.DeleteSubscription(userID, subID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "subscription", subID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted"})
}
