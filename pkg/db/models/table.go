package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/defactolounge/lounge-backend/pkg/enums"
)

// Table is a physical seat group on the venue floor.
type Table struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"column:name;not null;uniqueIndex"`
	Zone      enums.TableZone   `gorm:"column:zone;type:table_zone;not null"`
	Capacity  int               `gorm:"column:capacity;not null;default:4"`
	Status    enums.TableStatus `gorm:"column:status;type:table_status;not null;default:'idle'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
