package model

import "time"

// ValidationRequest is the client payload for the validate endpoint.
type ValidationRequest struct {
	LicenseKey string `json:"licenseKey" validate:"required,max=256"`
	DeviceID   string `json:"deviceId" validate:"required,max=128"`
	DeviceInfo string `json:"deviceInfo" validate:"max=500"`
}

// ValidationResponse carries the business outcome of a validate call.
// Validation failure is a business result, not a transport error, so the
// endpoint returns 200 with IsValid false and ErrorCode set.
type ValidationResponse struct {
	IsValid          bool         `json:"isValid"`
	Message          string       `json:"message"`
	LicenseInfo      *LicenseInfo `json:"licenseInfo,omitempty"`
	ExpiresAt        *time.Time   `json:"expiresAt,omitempty"`
	DaysRemaining    *int         `json:"daysRemaining,omitempty"`
	IsDeviceAssigned bool         `json:"isDeviceAssigned"`
	AssignedAt       *time.Time   `json:"assignedAt,omitempty"`
	ErrorCode        string       `json:"errorCode,omitempty"`
}

// LicenseInfo is the non-secret license summary returned by validate and the
// status endpoint. Hash and salt never leave the server.
type LicenseInfo struct {
	LicensePrefix    string     `json:"licensePrefix"`
	CompanyName      string     `json:"companyName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	Status           string     `json:"status"`
	AssignedDeviceID string     `json:"assignedDeviceId,omitempty"`
	AssignedAt       *time.Time `json:"assignedAt,omitempty"`
}

// NewLicenseInfo builds the summary view of a license.
func NewLicenseInfo(l *License) *LicenseInfo {
	return &LicenseInfo{
		LicensePrefix:    l.LicensePrefix,
		CompanyName:      l.CompanyName,
		CreatedAt:        l.CreatedAt,
		ExpiresAt:        l.ExpiresAt,
		Status:           l.Status.DisplayName(),
		AssignedDeviceID: l.AssignedDeviceID,
		AssignedAt:       l.AssignedAt,
	}
}

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	ErrorCode string      `json:"errorCode,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

func ErrorResponse(message, errorCode string) APIResponse {
	return APIResponse{Success: false, Message: message, ErrorCode: errorCode}
}
