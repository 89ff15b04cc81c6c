package license

import (
	"context"
	"errors"
	"time"

	"license-validation-api/internal/model"

	"gorm.io/gorm"
)

// Store is the persistence boundary of the validation core. Implementations
// are shared by concurrent requests across multiple server instances, so
// AssignDevice must be a conditional write: the core never assumes
// in-process exclusivity.
type Store interface {
	// FindByPrefix looks a license up by its unique prefix. Returns
	// ErrNotFound when no license matches.
	FindByPrefix(ctx context.Context, prefix string) (*model.License, error)

	// AssignDevice binds a device to a still-unassigned license. The write
	// is guarded by "assigned_device_id is still empty"; if another writer
	// bound the license first the call fails with ErrAlreadyAssigned and
	// nothing is written.
	AssignDevice(ctx context.Context, id, deviceID, deviceInfo string, at time.Time) error

	// UpdateDeviceInfo refreshes the advisory device description of an
	// already-bound license.
	UpdateDeviceInfo(ctx context.Context, id, deviceInfo string) error
}

// GormStore implements Store on a gorm database handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByPrefix(ctx context.Context, prefix string) (*model.License, error) {
	var lic model.License
	result := s.db.WithContext(ctx).Where("license_prefix = ?", prefix).First(&lic)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &lic, nil
}

func (s *GormStore) AssignDevice(ctx context.Context, id, deviceID, deviceInfo string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.License{}).
		Where("id = ? AND (assigned_device_id IS NULL OR assigned_device_id = '')", id).
		Updates(map[string]interface{}{
			"assigned_device_id": deviceID,
			"device_info":        deviceInfo,
			"assigned_at":        at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either another writer won the race or the id is gone; the caller
		// re-fetches to find out which.
		return ErrAlreadyAssigned
	}
	return nil
}

func (s *GormStore) UpdateDeviceInfo(ctx context.Context, id, deviceInfo string) error {
	return s.db.WithContext(ctx).Model(&model.License{}).
		Where("id = ?", id).
		Update("device_info", deviceInfo).Error
}
