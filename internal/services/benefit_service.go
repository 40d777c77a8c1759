package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
)

// benefitService handles benefit-related business logic.
type benefitService struct {
	db *gorm.DB
}

// NewBenefitService creates a new BenefitServicer.
func NewBenefitService(db *gorm.DB) BenefitServicer {
	return &benefitService{db: db}
}

// AddBenefit attaches a new benefit to one of the user's cards.
func (s *benefitService) AddBenefit(userID, cardID string, benefit *models.Benefit) (*models.Benefit, error) {
	if benefit.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "benefit title is required")
	}

	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	benefit.CardID = card.ID
	if benefit.ResetType == "" {
		benefit.ResetType = models.ResetTypeCalendar
	}
	benefit.UsedAmount = clampUsage(benefit.UsedAmount, benefit.Value)

	// Append at the end of the card's list.
	var maxPos int
	row := s.db.Model(&models.Benefit{}).Where("card_id = ?", card.ID).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&maxPos); err == nil {
		benefit.Position = maxPos + 1
	}

	if err := s.db.Create(benefit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return benefit, nil
}

// getOwnedBenefit loads a benefit and verifies card ownership in one query.
func (s *benefitService) getOwnedBenefit(userID, benefitID string) (*models.Benefit, error) {
	var benefit models.Benefit
	err := s.db.
		Joins("JOIN cards ON cards.id = benefits.card_id").
		Where("benefits.id = ? AND cards.user_id = ?", benefitID, userID).
		First(&benefit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBenefitNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &benefit, nil
}

// UpdateBenefit applies a partial update to a benefit.
func (s *benefitService) UpdateBenefit(userID, benefitID string, fields BenefitUpdateFields) (*models.Benefit, error) {
	benefit, err := s.getOwnedBenefit(userID, benefitID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Title != nil && *fields.Title != "" {
		updates["title"] = *fields.Title
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Value != nil {
		updates["value"] = *fields.Value
		// Shrinking the value can strand the used amount above it.
		updates["used_amount"] = clampUsage(benefit.UsedAmount, *fields.Value)
	}
	if fields.Frequency != nil {
		updates["frequency"] = *fields.Frequency
	}
	if fields.IsCredit != nil {
		updates["is_credit"] = *fields.IsCredit
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.ResetType != nil {
		updates["reset_type"] = *fields.ResetType
	}
	if fields.Position != nil {
		updates["position"] = *fields.Position
	}

	if len(updates) > 0 {
		if err := s.db.Model(benefit).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", benefit.ID).First(benefit).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return benefit, nil
}

// DeleteBenefit removes a benefit from a card.
func (s *benefitService) DeleteBenefit(userID, benefitID string) error {
	benefit, err := s.getOwnedBenefit(userID, benefitID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(benefit).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateUsage sets a benefit's used amount, clamped into [0, value].
func (s *benefitService) UpdateUsage(userID, benefitID string, amount float64) (*models.Benefit, error) {
	benefit, err := s.getOwnedBenefit(userID, benefitID)
	if err != nil {
		return nil, err
	}

	benefit.UsedAmount = clampUsage(amount, benefit.Value)
	if err := s.db.Model(benefit).Update("used_amount", benefit.UsedAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return benefit, nil
}

// ToggleRedeemed flips a benefit between fully used and untouched. The
// operation is idempotent in each direction and always reversible.
func (s *benefitService) ToggleRedeemed(userID, benefitID string) (*models.Benefit, error) {
	benefit, err := s.getOwnedBenefit(userID, benefitID)
	if err != nil {
		return nil, err
	}

	if benefit.IsRedeemed() {
		benefit.UsedAmount = 0
	} else {
		benefit.UsedAmount = benefit.Value
	}

	if err := s.db.Model(benefit).Update("used_amount", benefit.UsedAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return benefit, nil
}

// SetHidden shows or hides a benefit from dashboards and totals.
func (s *benefitService) SetHidden(userID, benefitID string, hidden bool) (*models.Benefit, error) {
	benefit, err := s.getOwnedBenefit(userID, benefitID)
	if err != nil {
		return nil, err
	}

	benefit.IsHidden = hidden
	if err := s.db.Model(benefit).Update("is_hidden", hidden).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return benefit, nil
}
