package tables

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Repository defines persistence operations for venue tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, table *models.Table) (*models.Table, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Table, error)
	List(ctx context.Context, zone *enums.TableZone) ([]models.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TableStatus) error
	Count(ctx context.Context) (int64, error)
}
