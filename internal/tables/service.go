package tables

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/defactolounge/lounge-backend/pkg/db/models"
	"github.com/defactolounge/lounge-backend/pkg/enums"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
)

// Service exposes floor-plan reads and the occupancy side effects other
// services trigger.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Table, error)
	List(ctx context.Context, zone *enums.TableZone) ([]models.Table, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error
	EnsureDefaultLayout(ctx context.Context) error
}

type service struct {
	repo Repository
}

// NewService builds the tables service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tables repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}
	return table, nil
}

func (s *service) List(ctx context.Context, zone *enums.TableZone) ([]models.Table, error) {
	tables, err := s.repo.List(ctx, zone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tables")
	}
	return tables, nil
}

func (s *service) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.TableStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown table status")
	}
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, id, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update table status")
	}
	return nil
}

// EnsureDefaultLayout seeds the floor plan on an empty database so dev
// environments come up ready to take orders.
func (s *service) EnsureDefaultLayout(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tables")
	}
	if count > 0 {
		return nil
	}

	layout := []struct {
		name     string
		zone     enums.TableZone
		capacity int
	}{
		{"VIP 1", enums.TableZoneVIP, 8},
		{"VIP 2", enums.TableZoneVIP, 8},
		{"Table 1", enums.TableZoneRegular, 4},
		{"Table 2", enums.TableZoneRegular, 4},
		{"Table 3", enums.TableZoneRegular, 4},
		{"Table 4", enums.TableZoneRegular, 6},
		{"Table 5", enums.TableZoneRegular, 6},
		{"Table 6", enums.TableZoneRegular, 2},
		{"Cabana 1", enums.TableZoneOutdoor, 6},
		{"Cabana 2", enums.TableZoneOutdoor, 6},
		{"Patio 1", enums.TableZoneOutdoor, 4},
	}
	for _, entry := range layout {
		table := &models.Table{
			ID:       uuid.New(),
			Name:     entry.name,
			Zone:     entry.zone,
			Capacity: entry.capacity,
			Status:   enums.TableStatusIdle,
		}
		if _, err := s.repo.Create(ctx, table); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed table layout")
		}
	}
	return nil
}
