package model

// LicenseStatistics summarizes the license fleet and recent validation
// activity for the admin statistics endpoint.
type LicenseStatistics struct {
	TotalLicenses     int64 `json:"total_licenses"`
	ActiveLicenses    int64 `json:"active_licenses"`
	ExpiredLicenses   int64 `json:"expired_licenses"`
	SuspendedLicenses int64 `json:"suspended_licenses"`
	RevokedLicenses   int64 `json:"revoked_licenses"`
	AssignedLicenses  int64 `json:"assigned_licenses"`
	// Licenses still Active but expiring within the next 30 days.
	ExpiringLicenses int64 `json:"expiring_licenses"`

	TotalValidations  int64            `json:"total_validations"`
	FailedValidations int64            `json:"failed_validations"`
	FailuresByCode    map[string]int64 `json:"failures_by_code"`
}

// SuccessRate is the share of validation attempts that passed every gate.
func (s *LicenseStatistics) SuccessRate() float64 {
	if s.TotalValidations == 0 {
		return 0
	}
	return float64(s.TotalValidations-s.FailedValidations) / float64(s.TotalValidations)
}
