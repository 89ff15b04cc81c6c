package model

import "time"

// ValidationRecord is one audit row per validation attempt. Outcome holds
// the machine-readable error code, or "VALID" for a successful validation.
type ValidationRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	LicensePrefix string    `json:"license_prefix" gorm:"index;size:64"`
	DeviceID      string    `json:"device_id" gorm:"size:128"`
	Outcome       string    `json:"outcome" gorm:"size:64"`
	IPAddress     string    `json:"ip_address" gorm:"size:64"`
	UserAgent     string    `json:"user_agent" gorm:"size:256"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
}

// OutcomeValid marks a successful validation in the audit trail.
const OutcomeValid = "VALID"
