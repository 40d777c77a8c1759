package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/insights"
	"creditmax/internal/models"
	"creditmax/internal/pagination"
	"creditmax/internal/reset"
	"creditmax/internal/services"
)

// CardHandler handles card-related requests
type CardHandler struct {
	cardService  services.CardServicer
	auditService services.AuditServicer
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService services.CardServicer, auditService services.AuditServicer) *CardHandler {
	return &CardHandler{cardService: cardService, auditService: auditService}
}

// BenefitInput represents a benefit nested in a card create request
type BenefitInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=1000"`
	Value       float64 `json:"value" binding:"min=0"`
	Frequency   string  `json:"frequency" binding:"required,benefit_frequency"`
	IsCredit    bool    `json:"is_credit"`
	Category    string  `json:"category" binding:"max=100"`
	ResetType   string  `json:"reset_type" binding:"omitempty,reset_type"`
}

// CreateCardRequest represents the card creation payload
type CreateCardRequest struct {
	Name        string         `json:"name" binding:"required,max=255"`
	Nickname    string         `json:"nickname" binding:"max=255"`
	Last4       string         `json:"last4" binding:"omitempty,len=4,numeric"`
	Issuer      string         `json:"issuer" binding:"required,max=255"`
	Network     string         `json:"network" binding:"omitempty,card_network"`
	AnnualFee   float64        `json:"annual_fee" binding:"min=0"`
	ColorFrom   string         `json:"color_from" binding:"omitempty,hex_color"`
	ColorTo     string         `json:"color_to" binding:"omitempty,hex_color"`
	RenewalDate string         `json:"renewal_date" binding:"omitempty,iso_date"`
	LoginURL    string         `json:"login_url" binding:"omitempty,url,max=500"`
	Points      int64          `json:"points" binding:"min=0"`
	PointsName  string         `json:"points_name" binding:"max=100"`
	AutoPay     bool           `json:"auto_pay"`
	Benefits    []BenefitInput `json:"benefits" binding:"omitempty,dive"`
}

// UpdateCardRequest represents a partial card update payload
type UpdateCardRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	Nickname    *string  `json:"nickname" binding:"omitempty,max=255"`
	Last4       *string  `json:"last4" binding:"omitempty,len=4,numeric"`
	Issuer      *string  `json:"issuer" binding:"omitempty,max=255"`
	Network     *string  `json:"network" binding:"omitempty,card_network"`
	AnnualFee   *float64 `json:"annual_fee" binding:"omitempty,min=0"`
	ColorFrom   *string  `json:"color_from" binding:"omitempty,hex_color"`
	ColorTo     *string  `json:"color_to" binding:"omitempty,hex_color"`
	RenewalDate *string  `json:"renewal_date" binding:"omitempty,iso_date"`
	LoginURL    *string  `json:"login_url" binding:"omitempty,url,max=500"`
	Points      *int64   `json:"points" binding:"omitempty,min=0"`
	PointsName  *string  `json:"points_name" binding:"omitempty,max=100"`
	AutoPay     *bool    `json:"auto_pay"`
}

// benefitJSON serializes a benefit with its computed reset schedule.
func benefitJSON(b *models.Benefit, renewalDate string, now time.Time) gin.H {
	expires := reset.Expiry(b.Frequency, b.ResetType, renewalDate, now)
	return gin.H{
		"id":             b.ID,
		"title":          b.Title,
		"description":    b.Description,
		"value":          b.Value,
		"used_amount":    b.UsedAmount,
		"frequency":      b.Frequency,
		"is_credit":      b.IsCredit,
		"category":       b.Category,
		"reset_type":     b.ResetType,
		"is_hidden":      b.IsHidden,
		"position":       b.Position,
		"next_reset":     reset.NextReset(b.Frequency, b.ResetType, renewalDate, now).Format("2006-01-02"),
		"expires_on":     expires.Format("2006-01-02"),
		"days_remaining": reset.DaysRemaining(now, expires),
	}
}

// cardJSON serializes a card with benefit schedules and utilization stats.
func cardJSON(card *models.Card, now time.Time) gin.H {
	benefits := make([]gin.H, len(card.Benefits))
	for i := range card.Benefits {
		benefits[i] = benefitJSON(&card.Benefits[i], card.RenewalDate, now)
	}
	stats := insights.PerCardStats([]models.Card{*card})[0]
	return gin.H{
		"id":           card.ID,
		"name":         card.Name,
		"nickname":     card.Nickname,
		"display_name": card.DisplayName(),
		"last4":        card.Last4,
		"issuer":       card.Issuer,
		"network":      card.Network,
		"annual_fee":   card.AnnualFee,
		"color_from":   card.ColorFrom,
		"color_to":     card.ColorTo,
		"renewal_date": card.RenewalDate,
		"login_url":    card.LoginURL,
		"points":       card.Points,
		"points_name":  card.PointsName,
		"auto_pay":     card.AutoPay,
		"benefits":     benefits,
		"stats":        stats,
	}
}

// CreateCard handles card creation
// @Summary     Create a card
// @Description Create a new card, optionally with an initial benefit list
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCardRequest true "Card data"
// @Success     201 {object} map[string]interface{} "Created card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card := &models.Card{
		Name:        req.Name,
		Nickname:    req.Nickname,
		Last4:       req.Last4,
		Issuer:      req.Issuer,
		Network:     req.Network,
		AnnualFee:   req.AnnualFee,
		ColorFrom:   req.ColorFrom,
		ColorTo:     req.ColorTo,
		RenewalDate: req.RenewalDate,
		LoginURL:    req.LoginURL,
		Points:      req.Points,
		PointsName:  req.PointsName,
		AutoPay:     req.AutoPay,
	}
	for _, b := range req.Benefits {
		card.Benefits = append(card.Benefits, models.Benefit{
			Title:       b.Title,
			Description: b.Description,
			Value:       b.Value,
			Frequency:   models.Frequency(b.Frequency),
			IsCredit:    b.IsCredit,
			Category:    b.Category,
			ResetType:   models.ResetType(b.ResetType),
		})
	}

	created, err := h.cardService.CreateCard(userID, card)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "create", "card", created.ID, c.ClientIP(), map[string]any{"name": created.Name})

	c.JSON(http.StatusCreated, gin.H{"card": cardJSON(created, time.Now())})
}

// ListCards returns the user's cards
// @Summary     List cards
// @Description Get a paginated list of the user's cards with benefits
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Paginated cards"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
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

	result, err := h.cardService.GetUserCards(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	cards := make([]gin.H, len(result.Data))
	for i := range result.Data {
		cards[i] = cardJSON(&result.Data[i], now)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        cards,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_items": result.TotalItems,
		"total_pages": result.TotalPages,
	})
}

// GetCard returns a single card
// @Summary     Get a card
// @Description Get a card with benefits, reset schedules, and utilization stats
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} map[string]interface{} "Card detail"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
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

	card, err := h.cardService.GetCardByID(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": cardJSON(card, time.Now())})
}

// UpdateCard handles partial card updates
// @Summary     Update a card
// @Description Apply a partial update to a card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Param       request body UpdateCardRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [put]
func (h *CardHandler) UpdateCard(c *gin.Context) {
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

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.UpdateCard(userID, cardID, services.CardUpdateFields{
		Name:        req.Name,
		Nickname:    req.Nickname,
		Last4:       req.Last4,
		Issuer:      req.Issuer,
		Network:     req.Network,
		AnnualFee:   req.AnnualFee,
		ColorFrom:   req.ColorFrom,
		ColorTo:     req.ColorTo,
		RenewalDate: req.RenewalDate,
		LoginURL:    req.LoginURL,
		Points:      req.Points,
		PointsName:  req.PointsName,
		AutoPay:     req.AutoPay,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "update", "card", card.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"card": cardJSON(card, time.Now())})
}

// DeleteCard handles card deletion
// @Summary     Delete a card
// @Description Delete a card and all its benefits
// @Tags        cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} MessageResponse "Card deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /cards/{id} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
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

	if err := h.cardService.DeleteCard(userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "delete", "card", cardID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}
