package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
	"creditmax/internal/pagination"
)

// cardService handles card-related business logic.
type cardService struct {
	db *gorm.DB
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB) CardServicer {
	return &cardService{db: db}
}

// CreateCard creates a new card for a user, including any nested benefits.
func (s *cardService) CreateCard(userID string, card *models.Card) (*models.Card, error) {
	if card.Name == "" || card.Issuer == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name and issuer are required")
	}

	card.UserID = userID
	for i := range card.Benefits {
		b := &card.Benefits[i]
		if b.ResetType == "" {
			b.ResetType = models.ResetTypeCalendar
		}
		b.UsedAmount = clampUsage(b.UsedAmount, b.Value)
		b.Position = i
	}

	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return card, nil
}

// GetUserCards retrieves a paginated list of the user's cards with benefits.
func (s *cardService) GetUserCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Card{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.Card
	if err := base.Preload("Benefits", benefitOrder).
		Scopes(pagination.Paginate(page)).
		Order("created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllUserCards retrieves every card with benefits, for dashboards and export.
func (s *cardService) GetAllUserCards(userID string) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.Where("user_id = ?", userID).
		Preload("Benefits", benefitOrder).
		Order("created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cards, nil
}

// GetCardByID retrieves a card by ID for a specific user.
func (s *cardService) GetCardByID(userID, cardID string) (*models.Card, error) {
	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).
		Preload("Benefits", benefitOrder).
		First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCard applies a partial update to a card.
func (s *cardService) UpdateCard(userID, cardID string, fields CardUpdateFields) (*models.Card, error) {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Nickname != nil {
		updates["nickname"] = *fields.Nickname
	}
	if fields.Last4 != nil {
		updates["last4"] = *fields.Last4
	}
	if fields.Issuer != nil && *fields.Issuer != "" {
		updates["issuer"] = *fields.Issuer
	}
	if fields.Network != nil {
		updates["network"] = *fields.Network
	}
	if fields.AnnualFee != nil {
		updates["annual_fee"] = *fields.AnnualFee
	}
	if fields.ColorFrom != nil {
		updates["color_from"] = *fields.ColorFrom
	}
	if fields.ColorTo != nil {
		updates["color_to"] = *fields.ColorTo
	}
	if fields.RenewalDate != nil {
		updates["renewal_date"] = *fields.RenewalDate
	}
	if fields.LoginURL != nil {
		updates["login_url"] = *fields.LoginURL
	}
	if fields.Points != nil {
		updates["points"] = *fields.Points
	}
	if fields.PointsName != nil {
		updates["points_name"] = *fields.PointsName
	}
	if fields.AutoPay != nil {
		updates["auto_pay"] = *fields.AutoPay
	}

	if len(updates) > 0 {
		if err := s.db.Model(card).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		return s.GetCardByID(userID, cardID)
	}

	return card, nil
}

// DeleteCard removes a card and its benefits.
func (s *cardService) DeleteCard(userID, cardID string) error {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", card.ID).Delete(&models.Benefit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// MergeBenefits replaces a card's benefit list with a freshly researched
// one. Incoming rows that match an existing benefit by case-insensitive
// title keep that benefit's identity, used amount, and reset basis, so a
// refresh never wipes redemption progress. Existing rows with no incoming
// match are dropped with the rest of the stale list.
func (s *cardService) MergeBenefits(userID, cardID string, incoming []IncomingBenefit) (*models.Card, error) {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	existingByTitle := make(map[string]*models.Benefit, len(card.Benefits))
	for i := range card.Benefits {
		existingByTitle[strings.ToLower(card.Benefits[i].Title)] = &card.Benefits[i]
	}

	merged := make([]models.Benefit, 0, len(incoming))
	for i, in := range incoming {
		b := models.Benefit{
			CardID:      card.ID,
			Title:       in.Title,
			Description: in.Description,
			Value:       in.Value,
			Frequency:   in.Frequency,
			IsCredit:    in.IsCredit,
			Category:    in.Category,
			ResetType:   models.ResetTypeCalendar,
			Position:    i,
		}
		if existing, ok := existingByTitle[strings.ToLower(in.Title)]; ok {
			b.ID = existing.ID
			b.UsedAmount = clampUsage(existing.UsedAmount, in.Value)
			b.ResetType = existing.ResetType
		}
		merged = append(merged, b)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("card_id = ?", card.ID).Delete(&models.Benefit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(merged) > 0 {
			if err := tx.Create(&merged).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCardByID(userID, cardID)
}

// benefitOrder keeps preloaded benefits in user-defined order.
func benefitOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, created_at ASC")
}

// clampUsage bounds a used amount into [0, value].
func clampUsage(used, value float64) float64 {
	if used < 0 {
		return 0
	}
	if used > value {
		return value
	}
	return used
}
