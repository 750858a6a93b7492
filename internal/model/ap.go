package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AP represents an access point. Every AP belongs to exactly one POP;
// the POP's AP list is derived from this parent pointer, never stored
// redundantly.
type AP struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Brand      string    `gorm:"size:128;not null" json:"brand"`
	Address    string    `gorm:"size:255;not null" json:"address"`
	MACAddress string    `gorm:"column:mac_address;size:32" json:"macAddress"`
	Details    string    `json:"details"`
	Status     string    `gorm:"size:16;not null;default:active" json:"status"`
	LastSeen   time.Time `json:"lastSeen"`
	PopID      string    `gorm:"size:36;not null;index" json:"popId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Associations. Pop is nil when the parent has been deleted out
	// from under the AP.
	Pop      *POP      `gorm:"foreignKey:PopID" json:"pop,omitempty"`
	Stations []Station `gorm:"foreignKey:APID" json:"stations"`
}

func (a *AP) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
