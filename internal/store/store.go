package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"netops-backend/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")

	// ErrBadReference is returned when a create or update names a
	// parent or peer that does not exist.
	ErrBadReference = errors.New("referenced record does not exist")
)

// Probe target kinds.
const (
	KindPOP     = "pop"
	KindAP      = "ap"
	KindStation = "station"
)

// ProbeTarget is one addressable device due for a liveness check.
// Status carries the last persisted status so the caller can detect
// an active-to-down transition.
type ProbeTarget struct {
	Kind    string
	ID      string
	Name    string
	Address string
	Status  string
}

// ItemFilter narrows an inventory listing.
type ItemFilter struct {
	DeviceType string
	Category   string
	Brand      string // case-insensitive substring match
	Page       int
	Limit      int
}

// CategoryCount is the per-category slice of an inventory count group.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DeviceTypeCount groups inventory counts for one device kind.
type DeviceTypeCount struct {
	DeviceType string          `json:"deviceType"`
	Categories []CategoryCount `json:"categories"`
	Total      int64           `json:"total"`
}

// Store defines the persistence operations used by the API handlers
// and the refresh service.
type Store interface {
	DB() *gorm.DB

	ListPOPs(ctx context.Context) ([]model.POP, error)
	CreatePOP(ctx context.Context, pop *model.POP) error
	UpdatePOP(ctx context.Context, id string, updates map[string]any) (*model.POP, error)
	DeletePOP(ctx context.Context, id string) error

	ListAPs(ctx context.Context) ([]model.AP, error)
	CreateAP(ctx context.Context, ap *model.AP) error
	UpdateAP(ctx context.Context, id string, updates map[string]any) (*model.AP, error)
	DeleteAP(ctx context.Context, id string) error

	ListStations(ctx context.Context) ([]model.Station, error)
	CreateStation(ctx context.Context, st *model.Station) error
	UpdateStation(ctx context.Context, id string, updates map[string]any) (*model.Station, error)
	DeleteStation(ctx context.Context, id string) error

	ListBackbones(ctx context.Context) ([]model.Backbone, error)
	CreateBackbone(ctx context.Context, bb *model.Backbone, popIDs []string) error
	// UpdateBackbone replaces the POP set when popIDs is non-nil; a
	// nil slice leaves the association untouched.
	UpdateBackbone(ctx context.Context, id string, updates map[string]any, popIDs []string) (*model.Backbone, error)
	DeleteBackbone(ctx context.Context, id string) error

	ProbeTargets(ctx context.Context) ([]ProbeTarget, error)
	RecordProbeResult(ctx context.Context, target ProbeTarget, alive bool, now time.Time) (wentDown bool, err error)

	CreateItem(ctx context.Context, item *model.InventoryItem) error
	ListItems(ctx context.Context, f ItemFilter) ([]model.InventoryItem, int64, error)
	GetItem(ctx context.Context, id string) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, id string, updates map[string]any) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, id string) error
	CountByTypeAndCategory(ctx context.Context) ([]DeviceTypeCount, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
