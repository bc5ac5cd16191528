package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.AuditEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})
	if filters.Role != nil {
		query = query.Where("actor_role = ?", *filters.Role)
	}
	if filters.TableID != nil {
		query = query.Where("table_id = ?", *filters.TableID)
	}
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}
	if filters.PaymentIntentID != nil {
		query = query.Where("payment_intent_id = ?", *filters.PaymentIntentID)
	}
	if filters.EventType != nil {
		query = query.Where("type = ?", *filters.EventType)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var events []models.AuditEvent
	if err := query.Order("created_at DESC, id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.AuditEvent{}).Error
}
