package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
)

// aiUsageService handles AI usage quota business logic.
type aiUsageService struct {
	db *gorm.DB
}

// NewAIUsageService creates a new AIUsageServicer.
func NewAIUsageService(db *gorm.DB) AIUsageServicer {
	return &aiUsageService{db: db}
}

// CreateItem creates a new AI usage quota item for a user.
func (s *aiUsageService) CreateItem(userID string, item *models.AIUsageItem) (*models.AIUsageItem, error) {
	if item.ServiceName == "" || item.QuotaName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "service name and quota name are required")
	}
	if item.RenewalDay < 1 || item.RenewalDay > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renewal day must be between 1 and 31")
	}

	item.UserID = userID
	if item.Frequency == "" {
		item.Frequency = models.FrequencyMonthly
	}
	item.UsedAmount = clampUsage(item.UsedAmount, item.QuotaAmount)

	// Append at the end of the user's list.
	var maxPos int
	row := s.db.Model(&models.AIUsageItem{}).Where("user_id = ?", userID).Select("COALESCE(MAX(position), -1)").Row()
	if err := row.Scan(&maxPos); err == nil {
		item.Position = maxPos + 1
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return item, nil
}

// GetUserItems retrieves every AI item in user-defined order.
func (s *aiUsageService) GetUserItems(userID string) ([]models.AIUsageItem, error) {
	var items []models.AIUsageItem
	if err := s.db.Where("user_id = ?", userID).Order("position ASC, created_at ASC").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// GetItemByID retrieves an AI item by ID for a specific user.
func (s *aiUsageService) GetItemByID(userID, itemID string) (*models.AIUsageItem, error) {
	var item models.AIUsageItem
	if err := s.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAIItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &item, nil
}

// UpdateItem applies a partial update to an AI item.
func (s *aiUsageService) UpdateItem(userID, itemID string, fields AIItemUpdateFields) (*models.AIUsageItem, error) {
	item, err := s.GetItemByID(userID, itemID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.ServiceName != nil && *fields.ServiceName != "" {
		updates["service_name"] = *fields.ServiceName
	}
	if fields.PlanName != nil {
		updates["plan_name"] = *fields.PlanName
	}
	if fields.LoginURL != nil {
		updates["login_url"] = *fields.LoginURL
	}
	if fields.QuotaName != nil && *fields.QuotaName != "" {
		updates["quota_name"] = *fields.QuotaName
	}
	if fields.QuotaAmount != nil {
		updates["quota_amount"] = *fields.QuotaAmount
		// Shrinking the quota can strand the used amount above it.
		updates["used_amount"] = clampUsage(item.UsedAmount, *fields.QuotaAmount)
	}
	if fields.RenewalDay != nil {
		if *fields.RenewalDay < 1 || *fields.RenewalDay > 31 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renewal day must be between 1 and 31")
		}
		updates["renewal_day"] = *fields.RenewalDay
	}
	if fields.Frequency != nil {
		updates["frequency"] = *fields.Frequency
	}
	if fields.AutoPay != nil {
		updates["auto_pay"] = *fields.AutoPay
	}

	if len(updates) > 0 {
		if err := s.db.Model(item).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", item.ID).First(item).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return item, nil
}

// DeleteItem removes an AI item.
func (s *aiUsageService) DeleteItem(userID, itemID string) error {
	item, err := s.GetItemByID(userID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateUsage sets an item's used amount, clamped into [0, quota].
func (s *aiUsageService) UpdateUsage(userID, itemID string, amount float64) (*models.AIUsageItem, error) {
	item, err := s.GetItemByID(userID, itemID)
	if err != nil {
		return nil, err
	}

	item.UsedAmount = clampUsage(amount, item.QuotaAmount)
	if err := s.db.Model(item).Update("used_amount", item.UsedAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// MoveItem swaps an item with its neighbor in display order. Direction is
// "up" or "down"; moving past either end is a no-op.
func (s *aiUsageService) MoveItem(userID, itemID string, direction string) ([]models.AIUsageItem, error) {
	if direction != "up" && direction != "down" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "direction must be up or down")
	}

	items, err := s.GetUserItems(userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range items {
		if items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, apperrors.ErrAIItemNotFound
	}

	swap := idx - 1
	if direction == "down" {
		swap = idx + 1
	}
	if swap < 0 || swap >= len(items) {
		return items, nil
	}

	items[idx], items[swap] = items[swap], items[idx]

	// Renumber the whole list: positions may have gaps after deletes.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := tx.Model(&items[i]).Update("position", i).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetUserItems(userID)
}
