package staff

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
)

// Repository defines persistence operations for staff identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.StaffUser) (*models.StaffUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error)
	FindByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Count(ctx context.Context) (int64, error)
}
