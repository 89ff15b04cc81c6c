package service

import (
	"time"

	"license-validation-api/internal/database"
	"license-validation-api/internal/model"
)

// RecordValidation appends one audit row for a validation attempt. Callers
// treat failures as non-fatal; auditing never changes a validation outcome.
func RecordValidation(prefix, deviceID, outcome, ip, userAgent string) error {
	rec := &model.ValidationRecord{
		LicensePrefix: prefix,
		DeviceID:      deviceID,
		Outcome:       outcome,
		IPAddress:     ip,
		UserAgent:     userAgent,
		Timestamp:     time.Now().UTC(),
	}
	return database.DB.Create(rec).Error
}

// GetValidationRecords returns the most recent audit rows for a prefix.
func GetValidationRecords(prefix string, limit int) ([]model.ValidationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var records []model.ValidationRecord
	err := database.DB.Where("license_prefix = ?", prefix).
		Order("timestamp desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
