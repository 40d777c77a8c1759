package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/models"
)

// backupService handles wallet export and import.
type backupService struct {
	db    *gorm.DB
	cards CardServicer
	subs  SubscriptionServicer
	ai    AIUsageServicer
}

// NewBackupService creates a new BackupServicer.
func NewBackupService(db *gorm.DB, cards CardServicer, subs SubscriptionServicer, ai AIUsageServicer) BackupServicer {
	return &backupService{db: db, cards: cards, subs: subs, ai: ai}
}

// Export serializes the user's whole wallet.
func (s *backupService) Export(userID string) (*ExportPayload, error) {
	cards, err := s.cards.GetAllUserCards(userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.GetAllUserSubscriptions(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.ai.GetUserItems(userID)
	if err != nil {
		return nil, err
	}

	return &ExportPayload{
		Cards:         cards,
		Subscriptions: subs,
		AIItems:       items,
		ExportDate:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// importPayload mirrors ExportPayload with raw collections, so an absent
// key can be told apart from an empty one.
type importPayload struct {
	Cards         json.RawMessage `json:"cards"`
	Subscriptions json.RawMessage `json:"subscriptions"`
	AIItems       json.RawMessage `json:"aiItems"`
}

// Import restores collections from an export file. Each top-level key that
// holds a usable list replaces that collection wholesale; absent or
// malformed keys leave the current data untouched. Only a file that does
// not parse as JSON at all rejects the import.
func (s *backupService) Import(userID string, data []byte) error {
	var payload importPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidImport, err)
	}

	var cards []models.Card
	var subs []models.Subscription
	var items []models.AIUsageItem
	replaceCards := decodeCollection(payload.Cards, &cards)
	replaceSubs := decodeCollection(payload.Subscriptions, &subs)
	replaceItems := decodeCollection(payload.AIItems, &items)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if replaceCards {
			if err := s.replaceCards(tx, userID, cards); err != nil {
				return err
			}
		}
		if replaceSubs {
			if err := s.replaceSubscriptions(tx, userID, subs); err != nil {
				return err
			}
		}
		if replaceItems {
			if err := s.replaceAIItems(tx, userID, items); err != nil {
				return err
			}
		}
		return nil
	})
}

// decodeCollection reports whether raw holds a usable list. A missing key,
// a JSON null, or a value that is not a list of the right shape is skipped
// rather than failing the file, so one bad key never blocks the rest.
func decodeCollection[T any](raw json.RawMessage, out *[]T) bool {
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return *out != nil
}

// replaceCards swaps the user's cards and benefits for the imported set.
// Imported IDs are kept when present so subscription links stay intact.
func (s *backupService) replaceCards(tx *gorm.DB, userID string, cards []models.Card) error {
	var existingIDs []string
	if err := tx.Model(&models.Card{}).Where("user_id = ?", userID).Pluck("id", &existingIDs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(existingIDs) > 0 {
		if err := tx.Unscoped().Where("card_id IN ?", existingIDs).Delete(&models.Benefit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Card{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range cards {
		card := &cards[i]
		card.UserID = userID
		for j := range card.Benefits {
			b := &card.Benefits[j]
			b.CardID = "" // reassigned by the association on create
			if b.ResetType == "" {
				b.ResetType = models.ResetTypeCalendar
			}
			b.UsedAmount = clampUsage(b.UsedAmount, b.Value)
		}
		if err := tx.Create(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// replaceSubscriptions swaps the user's subscriptions for the imported set.
func (s *backupService) replaceSubscriptions(tx *gorm.DB, userID string, subs []models.Subscription) error {
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Subscription{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range subs {
		subs[i].UserID = userID
		if subs[i].Frequency == "" {
			subs[i].Frequency = models.FrequencyMonthly
		}
		if err := tx.Create(&subs[i]).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// replaceAIItems swaps the user's AI usage items for the imported set.
func (s *backupService) replaceAIItems(tx *gorm.DB, userID string, items []models.AIUsageItem) error {
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.AIUsageItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range items {
		item := &items[i]
		item.UserID = userID
		if item.Frequency == "" {
			item.Frequency = models.FrequencyMonthly
		}
		item.UsedAmount = clampUsage(item.UsedAmount, item.QuotaAmount)
		item.Position = i
		if err := tx.Create(item).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
