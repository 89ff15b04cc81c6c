package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LicenseStatus is the administrative lifecycle state of a license. It is
// independent of temporal expiry: an Active license can still be past its
// ExpiresAt and both conditions gate validity separately.
type LicenseStatus int

const (
	StatusActive    LicenseStatus = 1
	StatusExpired   LicenseStatus = 2
	StatusSuspended LicenseStatus = 3
	StatusRevoked   LicenseStatus = 4
)

// DisplayName is the single place status names come from; every
// presentation path goes through here.
func (s LicenseStatus) DisplayName() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExpired:
		return "Expired"
	case StatusSuspended:
		return "Suspended"
	case StatusRevoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

type License struct {
	ID               string        `json:"id" gorm:"primaryKey;size:36"`
	LicensePrefix    string        `json:"license_prefix" gorm:"uniqueIndex;size:64;not null"`
	LicenseKeyHash   string        `json:"-" gorm:"size:256;not null"`
	Salt             string        `json:"-" gorm:"size:64;not null"`
	CompanyName      string        `json:"company_name" gorm:"size:256"`
	AssignedDeviceID string        `json:"assigned_device_id" gorm:"index;size:128"`
	DeviceInfo       string        `json:"device_info"`
	AssignedAt       *time.Time    `json:"assigned_at"`
	ExpiresAt        time.Time     `json:"expires_at" gorm:"index;not null"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null"`
	Status           LicenseStatus `json:"status" gorm:"index;not null;default:1"`
	Notes            string        `json:"notes"`
}

func (l *License) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return nil
}

// IsExpired reports whether the license is past its expiry instant,
// regardless of Status.
func (l *License) IsExpired() bool {
	return time.Now().UTC().After(l.ExpiresAt)
}

// IsAssigned reports whether a device is bound to this license.
func (l *License) IsAssigned() bool {
	return l.AssignedDeviceID != ""
}
