package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory device kinds. These name the topology table an item's
// DeviceID points into.
const (
	DeviceTypeAP       = "AP"
	DeviceTypeBackbone = "Backbone"
	DeviceTypePOP      = "POP"
	DeviceTypeStation  = "Station"
)

// Inventory categories.
const (
	CategoryDeployed = "deployed"
	CategoryInStock  = "in stock"
	CategorySpoiled  = "spoiled"
)

// InventoryItem is one piece of tracked equipment. DeviceType plus
// DeviceID form a typed reference to a live topology entity; DeviceID
// is empty for undeployed stock.
type InventoryItem struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	DeviceType   string    `gorm:"size:16;not null;index" json:"deviceType"`
	Brand        string    `gorm:"size:128;not null" json:"brand"`
	Model        string    `gorm:"size:128" json:"model"`
	SerialNumber string    `gorm:"size:128;not null;uniqueIndex" json:"serialNumber"`
	Category     string    `gorm:"size:16;not null;index" json:"category"`
	Location     string    `json:"location"`
	Notes        string    `json:"notes"`
	DeviceID     string    `gorm:"size:36" json:"deviceId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Device is the resolved reference, populated on reads.
	Device *DeviceRef `gorm:"-" json:"device,omitempty"`
}

// DeviceRef is the resolved form of an item's (DeviceType, DeviceID)
// pair.
type DeviceRef struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
