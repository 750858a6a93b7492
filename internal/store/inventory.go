package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"netops-backend/internal/model"
)

func (s *gormStore) CreateItem(ctx context.Context, item *model.InventoryItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *gormStore) ListItems(ctx context.Context, f ItemFilter) ([]model.InventoryItem, int64, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}

	apply := func(q *gorm.DB) *gorm.DB {
		if f.DeviceType != "" {
			q = q.Where("device_type = ?", f.DeviceType)
		}
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.Brand != "" {
			q = q.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(f.Brand)+"%")
		}
		return q
	}

	var total int64
	if err := apply(s.db.WithContext(ctx).Model(&model.InventoryItem{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory: %w", err)
	}

	var items []model.InventoryItem
	err := apply(s.db.WithContext(ctx)).
		Order("updated_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory: %w", err)
	}

	for i := range items {
		ref, err := s.resolveDevice(ctx, items[i].DeviceType, items[i].DeviceID)
		if err != nil {
			return nil, 0, err
		}
		items[i].Device = ref
	}
	return items, total, nil
}

func (s *gormStore) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ref, err := s.resolveDevice(ctx, item.DeviceType, item.DeviceID)
	if err != nil {
		return nil, err
	}
	item.Device = ref
	return &item, nil
}

func (s *gormStore) UpdateItem(ctx context.Context, id string, updates map[string]any) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetItem(ctx, id)
}

func (s *gormStore) DeleteItem(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.InventoryItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByTypeAndCategory aggregates inventory in two stages: one
// grouped count per (deviceType, category) pair in SQL, then a regroup
// per device type with a summed total. Output order follows the
// database's grouping order and is not guaranteed stable.
func (s *gormStore) CountByTypeAndCategory(ctx context.Context) ([]DeviceTypeCount, error) {
	type row struct {
		DeviceType string
		Category   string
		Count      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Select("device_type, category, COUNT(*) AS count").
		Group("device_type").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate inventory counts: %w", err)
	}

	byType := make(map[string]*DeviceTypeCount, len(rows))
	var order []string
	for _, r := range rows {
		g, ok := byType[r.DeviceType]
		if !ok {
			g = &DeviceTypeCount{DeviceType: r.DeviceType}
			byType[r.DeviceType] = g
			order = append(order, r.DeviceType)
		}
		g.Categories = append(g.Categories, CategoryCount{Category: r.Category, Count: r.Count})
		g.Total += r.Count
	}

	counts := make([]DeviceTypeCount, 0, len(order))
	for _, k := range order {
		counts = append(counts, *byType[k])
	}
	return counts, nil
}

// resolveDevice dereferences an item's typed device reference. The
// switch is exhaustive over the four device kinds; a dangling id
// (device deleted after deployment) resolves to nil rather than an
// error.
func (s *gormStore) resolveDevice(ctx context.Context, deviceType, deviceID string) (*model.DeviceRef, error) {
	if deviceID == "" {
		return nil, nil
	}

	notFound := func(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

	switch deviceType {
	case model.DeviceTypePOP:
		var p model.POP
		if err := s.db.WithContext(ctx).Select("id", "name", "status").First(&p, "id = ?", deviceID).Error; err != nil {
			if notFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &model.DeviceRef{Kind: model.DeviceTypePOP, ID: p.ID, Name: p.Name, Status: p.Status}, nil
	case model.DeviceTypeAP:
		var a model.AP
		if err := s.db.WithContext(ctx).Select("id", "name", "status").First(&a, "id = ?", deviceID).Error; err != nil {
			if notFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &model.DeviceRef{Kind: model.DeviceTypeAP, ID: a.ID, Name: a.Name, Status: a.Status}, nil
	case model.DeviceTypeStation:
		var st model.Station
		if err := s.db.WithContext(ctx).Select("id", "name", "status").First(&st, "id = ?", deviceID).Error; err != nil {
			if notFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &model.DeviceRef{Kind: model.DeviceTypeStation, ID: st.ID, Name: st.Name, Status: st.Status}, nil
	case model.DeviceTypeBackbone:
		var bb model.Backbone
		if err := s.db.WithContext(ctx).Select("id", "type", "status").First(&bb, "id = ?", deviceID).Error; err != nil {
			if notFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &model.DeviceRef{Kind: model.DeviceTypeBackbone, ID: bb.ID, Name: bb.Type, Status: bb.Status}, nil
	default:
		return nil, fmt.Errorf("unknown device type %q", deviceType)
	}
}
