package intents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment intent repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, intent *models.PaymentIntent) (*models.PaymentIntent, error) {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) FindNewestByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID, []enums.PaymentIntentStatus{
			enums.PaymentIntentStatusPending,
			enums.PaymentIntentStatusClaimed,
			enums.PaymentIntentStatusVerified,
		}).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.PaymentIntent, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentIntent{})
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}
	if filters.TableID != nil {
		query = query.Where("table_id = ?", *filters.TableID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var intents []models.PaymentIntent
	if err := query.Order("created_at DESC").Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}

// TransitionStatus performs a compare-and-set on the intent status. The
// returned count is zero when the intent was not in the expected state, which
// callers surface as a state conflict.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentIntentStatus, updates map[string]any) (int64, error) {
	merged := map[string]any{"status": to}
	for k, v := range updates {
		merged[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", id, from).
		Updates(merged)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.PaymentIntent, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.PaymentIntentStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var intents []models.PaymentIntent
	if err := query.Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}

func (r *repository) CountVerifiedByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentIntentStatusVerified).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
