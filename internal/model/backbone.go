package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Backbone link types.
const (
	LinkWireless = "wireless"
	LinkFibre    = "fibre"
)

// Backbone represents a backhaul link joining a set of POPs. Backbones
// are not independently addressable, so their status is set by
// create/update only and never probed.
type Backbone struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	Details   string    `json:"details"`
	Status    string    `gorm:"size:16;not null;default:active" json:"status"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	Pops []*POP `gorm:"many2many:pop_backbones" json:"pops"`
}

func (b *Backbone) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
