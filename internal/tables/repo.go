package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tables repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, table *models.Table) (*models.Table, error) {
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var table models.Table
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) List(ctx context.Context, zone *enums.TableZone) ([]models.Table, error) {
	query := r.db.WithContext(ctx).Model(&models.Table{})
	if zone != nil {
		query = query.Where("zone = ?", *zone)
	}
	var tables []models.Table
	if err := query.Order("name ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Table{}).Count(&count).Error
	return count, err
}
