package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device status values shared by all probed entities.
const (
	StatusActive = "active"
	StatusDown   = "down"
)

// POP represents a point of presence, the root of the topology tree.
type POP struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Brand      string    `gorm:"size:128;not null" json:"brand"`
	Address    string    `gorm:"size:255;not null" json:"address"`
	MACAddress string    `gorm:"column:mac_address;size:32" json:"macAddress"`
	Details    string    `json:"details"`
	Status     string    `gorm:"size:16;not null;default:active" json:"status"`
	LastSeen   time.Time `json:"lastSeen"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Associations
	APs       []AP        `gorm:"foreignKey:PopID" json:"aps"`
	Backbones []*Backbone `gorm:"many2many:pop_backbones" json:"backbones"`
}

func (p *POP) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
