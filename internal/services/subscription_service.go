package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
	"creditmax/internal/pagination"
)

// subscriptionService handles subscription-related business logic.
type subscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB) SubscriptionServicer {
	return &subscriptionService{db: db}
}

// CreateSubscription creates a new subscription for a user.
func (s *subscriptionService) CreateSubscription(userID string, sub *models.Subscription) (*models.Subscription, error) {
	if sub.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription name is required")
	}
	if sub.RenewalDay < 1 || sub.RenewalDay > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renewal day must be between 1 and 31")
	}

	sub.UserID = userID
	if sub.Frequency == "" {
		sub.Frequency = models.FrequencyMonthly
	}
	if err := s.validateCardLink(userID, sub.LinkedCardID); err != nil {
		return nil, err
	}

	if err := s.db.Create(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return sub, nil
}

// GetUserSubscriptions retrieves a paginated list of the user's subscriptions.
func (s *subscriptionService) GetUserSubscriptions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Subscription{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subs []models.Subscription
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllUserSubscriptions retrieves every subscription, for dashboards and export.
func (s *subscriptionService) GetAllUserSubscriptions(userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subs, nil
}

// GetSubscriptionByID retrieves a subscription by ID for a specific user.
func (s *subscriptionService) GetSubscriptionByID(userID, subID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("id = ? AND user_id = ?", subID, userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// UpdateSubscription applies a partial update to a subscription. Setting
// LinkedCardID to the empty string unlinks the card.
func (s *subscriptionService) UpdateSubscription(userID, subID string, fields SubscriptionUpdateFields) (*models.Subscription, error) {
	sub, err := s.GetSubscriptionByID(userID, subID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Cost != nil {
		updates["cost"] = *fields.Cost
	}
	if fields.Frequency != nil {
		updates["frequency"] = *fields.Frequency
	}
	if fields.RenewalDay != nil {
		if *fields.RenewalDay < 1 || *fields.RenewalDay > 31 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "renewal day must be between 1 and 31")
		}
		updates["renewal_day"] = *fields.RenewalDay
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.LinkedCardID != nil {
		if err := s.validateCardLink(userID, *fields.LinkedCardID); err != nil {
			return nil, err
		}
		updates["linked_card_id"] = *fields.LinkedCardID
	}
	if fields.AutoPay != nil {
		updates["auto_pay"] = *fields.AutoPay
	}

	if len(updates) > 0 {
		if err := s.db.Model(sub).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", sub.ID).First(sub).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return sub, nil
}

// DeleteSubscription removes a subscription.
func (s *subscriptionService) DeleteSubscription(userID, subID string) error {
	sub, err := s.GetSubscriptionByID(userID, subID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(sub).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateCardLink checks that a non-empty linked card belongs to the user.
func (s *subscriptionService) validateCardLink(userID, cardID string) error {
	if cardID == "" {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Card{}).Where("id = ? AND user_id = ?", cardID, userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCardNotFound
	}
	return nil
}
