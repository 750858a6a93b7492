package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Station represents a customer-side device hanging off an AP. The
// address is optional; stations without one are skipped by the
// liveness refresh.
type Station struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Brand      string    `gorm:"size:128;not null" json:"brand"`
	Address    string    `gorm:"size:255" json:"address"`
	MACAddress string    `gorm:"column:mac_address;size:32" json:"macAddress"`
	Details    string    `json:"details"`
	Status     string    `gorm:"size:16;not null;default:active" json:"status"`
	LastSeen   time.Time `json:"lastSeen"`
	APID       string    `gorm:"column:ap_id;size:36;not null;index" json:"apId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Associations
	AP *AP `gorm:"foreignKey:APID" json:"ap,omitempty"`
}

func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
