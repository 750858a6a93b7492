package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"netops-backend/internal/model"
)

// --- POPs ---

func (s *gormStore) ListPOPs(ctx context.Context) ([]model.POP, error) {
	var pops []model.POP
	err := s.db.WithContext(ctx).
		Preload("APs").
		Preload("Backbones").
		Find(&pops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pops: %w", err)
	}
	return pops, nil
}

func (s *gormStore) CreatePOP(ctx context.Context, pop *model.POP) error {
	return s.db.WithContext(ctx).Create(pop).Error
}

func (s *gormStore) UpdatePOP(ctx context.Context, id string, updates map[string]any) (*model.POP, error) {
	var pop model.POP
	if err := s.db.WithContext(ctx).First(&pop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&pop).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Preload("APs").Preload("Backbones").First(&pop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pop, nil
}

// DeletePOP removes only the POP row. Its APs keep their dangling
// parent id and backbone join rows are left in place, matching the
// dashboard's non-cascading ownership model.
func (s *gormStore) DeletePOP(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.POP{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- APs ---

func (s *gormStore) ListAPs(ctx context.Context) ([]model.AP, error) {
	var aps []model.AP
	err := s.db.WithContext(ctx).
		Preload("Pop").
		Preload("Stations").
		Find(&aps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list aps: %w", err)
	}
	return aps, nil
}

func (s *gormStore) CreateAP(ctx context.Context, ap *model.AP) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.POP{}).Where("id = ?", ap.PopID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("pop %s: %w", ap.PopID, ErrBadReference)
		}
		return tx.Create(ap).Error
	})
}

func (s *gormStore) UpdateAP(ctx context.Context, id string, updates map[string]any) (*model.AP, error) {
	var ap model.AP
	if err := s.db.WithContext(ctx).First(&ap, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&ap).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Preload("Pop").Preload("Stations").First(&ap, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (s *gormStore) DeleteAP(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.AP{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Stations ---

func (s *gormStore) ListStations(ctx context.Context) ([]model.Station, error) {
	var stations []model.Station
	err := s.db.WithContext(ctx).
		Preload("AP").
		Find(&stations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	return stations, nil
}

func (s *gormStore) CreateStation(ctx context.Context, st *model.Station) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.AP{}).Where("id = ?", st.APID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("ap %s: %w", st.APID, ErrBadReference)
		}
		return tx.Create(st).Error
	})
}

func (s *gormStore) UpdateStation(ctx context.Context, id string, updates map[string]any) (*model.Station, error) {
	var st model.Station
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&st).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Preload("AP").First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *gormStore) DeleteStation(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Station{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Backbones ---

func (s *gormStore) ListBackbones(ctx context.Context) ([]model.Backbone, error) {
	var backbones []model.Backbone
	err := s.db.WithContext(ctx).
		Preload("Pops").
		Find(&backbones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list backbones: %w", err)
	}
	return backbones, nil
}

// CreateBackbone inserts the backbone and its join rows in one
// transaction. The join table is the only place the POP<->Backbone
// relation lives, so there is no second write to drift.
func (s *gormStore) CreateBackbone(ctx context.Context, bb *model.Backbone, popIDs []string) error {
	popIDs = dedupe(popIDs)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pops []*model.POP
		if len(popIDs) > 0 {
			if err := tx.Find(&pops, "id IN ?", popIDs).Error; err != nil {
				return err
			}
			if len(pops) != len(popIDs) {
				return fmt.Errorf("pops %v: %w", popIDs, ErrBadReference)
			}
		}
		if err := tx.Create(bb).Error; err != nil {
			return err
		}
		if len(pops) > 0 {
			if err := tx.Model(bb).Association("Pops").Append(pops); err != nil {
				return err
			}
		}
		bb.Pops = pops
		return nil
	})
}

func (s *gormStore) UpdateBackbone(ctx context.Context, id string, updates map[string]any, popIDs []string) (*model.Backbone, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bb model.Backbone
		if err := tx.First(&bb, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&bb).Updates(updates).Error; err != nil {
				return err
			}
		}
		if popIDs != nil {
			ids := dedupe(popIDs)
			var pops []*model.POP
			if len(ids) > 0 {
				if err := tx.Find(&pops, "id IN ?", ids).Error; err != nil {
					return err
				}
				if len(pops) != len(ids) {
					return fmt.Errorf("pops %v: %w", ids, ErrBadReference)
				}
			}
			if err := tx.Model(&bb).Association("Pops").Replace(pops); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var bb model.Backbone
	if err := s.db.WithContext(ctx).Preload("Pops").First(&bb, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bb, nil
}

func (s *gormStore) DeleteBackbone(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bb model.Backbone
		if err := tx.First(&bb, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Model(&bb).Association("Pops").Clear(); err != nil {
			return err
		}
		return tx.Delete(&bb).Error
	})
}

// --- Liveness bookkeeping ---

// ProbeTargets collects every addressable device: all POPs and APs,
// plus stations with a configured address.
func (s *gormStore) ProbeTargets(ctx context.Context) ([]ProbeTarget, error) {
	var targets []ProbeTarget

	var pops []model.POP
	if err := s.db.WithContext(ctx).Select("id", "name", "address", "status").Find(&pops).Error; err != nil {
		return nil, fmt.Errorf("failed to collect pop targets: %w", err)
	}
	for _, p := range pops {
		targets = append(targets, ProbeTarget{Kind: KindPOP, ID: p.ID, Name: p.Name, Address: p.Address, Status: p.Status})
	}

	var aps []model.AP
	if err := s.db.WithContext(ctx).Select("id", "name", "address", "status").Find(&aps).Error; err != nil {
		return nil, fmt.Errorf("failed to collect ap targets: %w", err)
	}
	for _, a := range aps {
		targets = append(targets, ProbeTarget{Kind: KindAP, ID: a.ID, Name: a.Name, Address: a.Address, Status: a.Status})
	}

	var stations []model.Station
	err := s.db.WithContext(ctx).
		Select("id", "name", "address", "status").
		Where("address <> ''").
		Find(&stations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect station targets: %w", err)
	}
	for _, st := range stations {
		targets = append(targets, ProbeTarget{Kind: KindStation, ID: st.ID, Name: st.Name, Address: st.Address, Status: st.Status})
	}

	return targets, nil
}

// RecordProbeResult persists one probe outcome: active plus a fresh
// lastSeen on success, down with lastSeen untouched otherwise. It
// reports whether the device just transitioned from active to down.
func (s *gormStore) RecordProbeResult(ctx context.Context, target ProbeTarget, alive bool, now time.Time) (bool, error) {
	updates := map[string]any{"status": model.StatusDown}
	if alive {
		updates = map[string]any{"status": model.StatusActive, "last_seen": now}
	}

	var res *gorm.DB
	switch target.Kind {
	case KindPOP:
		res = s.db.WithContext(ctx).Model(&model.POP{}).Where("id = ?", target.ID).Updates(updates)
	case KindAP:
		res = s.db.WithContext(ctx).Model(&model.AP{}).Where("id = ?", target.ID).Updates(updates)
	case KindStation:
		res = s.db.WithContext(ctx).Model(&model.Station{}).Where("id = ?", target.ID).Updates(updates)
	default:
		return false, fmt.Errorf("unknown probe target kind %q", target.Kind)
	}
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Deleted between target collection and probe completion.
		return false, ErrNotFound
	}

	wentDown := !alive && target.Status == model.StatusActive
	return wentDown, nil
}
