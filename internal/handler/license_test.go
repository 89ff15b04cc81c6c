package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"license-validation-api/internal/database"
	"license-validation-api/internal/license"
	"license-validation-api/internal/middleware"
	"license-validation-api/internal/model"
	"license-validation-api/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	database.InitTestDB()
	t.Cleanup(database.CleanTestDB)

	util.InitToken("test-secret", time.Hour)
	store := license.NewGormStore(database.DB)
	Init(license.NewService(store, zap.NewNop()), nil, zap.NewNop())

	app := fiber.New()
	api := app.Group("/api/v1")

	lic := api.Group("/license")
	lic.Post("/validate", HandleLicenseValidate)
	lic.Get("/status/:prefix", HandleLicenseStatus)
	lic.Get("/health", HandleHealthCheck)

	admin := api.Group("/licenses")
	admin.Use(middleware.Auth())
	admin.Get("/", HandleGetAllLicenses)
	admin.Get("/statistics", HandleLicenseStatistics)
	admin.Get("/:prefix/records", HandleLicenseRecords)
	admin.Post("/sync", HandleSheetSync)

	return app
}

func seedLicense(t *testing.T, prefix, key, salt string, status model.LicenseStatus, expiresAt time.Time) *model.License {
	t.Helper()
	digest := sha256.Sum256([]byte(key + salt))
	lic := &model.License{
		LicensePrefix:  prefix,
		LicenseKeyHash: base64.StdEncoding.EncodeToString(digest[:]),
		Salt:           salt,
		CompanyName:    "Acme Corp",
		ExpiresAt:      expiresAt,
		Status:         status,
	}
	require.NoError(t, database.DB.Create(lic).Error)
	return lic
}

func postValidate(t *testing.T, app *fiber.App, body model.ValidationRequest) (*http.Response, model.APIResponse, model.ValidationResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", "/api/v1/license/validate", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope model.APIResponse
	require.NoError(t, json.Unmarshal(raw, &envelope))

	var result model.ValidationResponse
	if envelope.Data != nil {
		data, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &result))
	}
	return resp, envelope, result
}

func TestHandleLicenseValidateRequestShape(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name string
		body model.ValidationRequest
	}{
		{"missing_key", model.ValidationRequest{DeviceID: "dev1"}},
		{"missing_device", model.ValidationRequest{LicenseKey: "ACME-A-B-C-D"}},
		{"oversized_device_id", model.ValidationRequest{
			LicenseKey: "ACME-A-B-C-D",
			DeviceID:   string(bytes.Repeat([]byte("x"), 129)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope, _ := postValidate(t, app, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.False(t, envelope.Success)
			assert.Equal(t, "INVALID_REQUEST", envelope.ErrorCode)
		})
	}
}

func TestHandleLicenseValidateFlow(t *testing.T) {
	app := setupApp(t)
	seedLicense(t, "ACME", "ACME-0000-AAAA-BBBB-CCCC", "salt",
		model.StatusActive, time.Now().AddDate(0, 0, 30))

	// First device binds.
	resp, envelope, result := postValidate(t, app, model.ValidationRequest{
		LicenseKey: "ACME-0000-AAAA-BBBB-CCCC",
		DeviceID:   "dev1",
		DeviceInfo: "laptop",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
	assert.True(t, result.IsValid)
	assert.True(t, result.IsDeviceAssigned)
	require.NotNil(t, result.AssignedAt)
	require.NotNil(t, result.LicenseInfo)
	assert.Equal(t, "ACME", result.LicenseInfo.LicensePrefix)

	// A business failure still travels over 200.
	resp, envelope, result = postValidate(t, app, model.ValidationRequest{
		LicenseKey: "ACME-0000-AAAA-BBBB-CCCC",
		DeviceID:   "dev2",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
	assert.False(t, result.IsValid)
	assert.Equal(t, license.CodeDeviceMismatch, result.ErrorCode)

	// Unknown prefix, same transport behavior.
	resp, _, result = postValidate(t, app, model.ValidationRequest{
		LicenseKey: "GHOST-0000-AAAA-BBBB-CCCC",
		DeviceID:   "dev1",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, license.CodeNotFound, result.ErrorCode)
}

func TestHandleLicenseValidateWritesAudit(t *testing.T) {
	app := setupApp(t)
	seedLicense(t, "AUDIT", "AUDIT-A-B-C-D", "salt",
		model.StatusActive, time.Now().AddDate(0, 0, 30))

	postValidate(t, app, model.ValidationRequest{LicenseKey: "AUDIT-A-B-C-D", DeviceID: "dev1"})
	postValidate(t, app, model.ValidationRequest{LicenseKey: "AUDIT-X-X-X-X", DeviceID: "dev1"})

	var records []model.ValidationRecord
	require.NoError(t, database.DB.Where("license_prefix = ?", "AUDIT").
		Order("id").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, model.OutcomeValid, records[0].Outcome)
	assert.Equal(t, license.CodeInvalidKey, records[1].Outcome)
	assert.Equal(t, "dev1", records[0].DeviceID)
}

func TestHandleLicenseStatus(t *testing.T) {
	app := setupApp(t)
	seedLicense(t, "STAT", "STAT-A-B-C-D", "salt",
		model.StatusSuspended, time.Now().AddDate(0, 0, 30))

	req, _ := http.NewRequest("GET", "/api/v1/license/status/STAT", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, "STAT", data["licensePrefix"])
	assert.Equal(t, "Suspended", data["status"])

	// Status endpoint is the one place not-found maps to 404.
	req, _ = http.NewRequest("GET", "/api/v1/license/status/NOSUCH", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleHealthCheck(t *testing.T) {
	app := setupApp(t)

	req, _ := http.NewRequest("GET", "/api/v1/license/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Success)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	req, _ := http.NewRequest("GET", "/api/v1/licenses/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req, _ = http.NewRequest("GET", "/api/v1/licenses/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminListAndStatistics(t *testing.T) {
	app := setupApp(t)
	seedLicense(t, "ADM1", "ADM1-A-B-C-D", "salt",
		model.StatusActive, time.Now().AddDate(0, 0, 10))
	seedLicense(t, "ADM2", "ADM2-A-B-C-D", "salt",
		model.StatusRevoked, time.Now().AddDate(0, 1, 0))

	token, err := util.GenerateToken("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/api/v1/licenses/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data := envelope.Data.(map[string]interface{})
	assert.EqualValues(t, 2, data["total"])

	req, _ = http.NewRequest("GET", "/api/v1/licenses/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var statsEnv model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statsEnv))
	stats := statsEnv.Data.(map[string]interface{})
	assert.EqualValues(t, 2, stats["total_licenses"])
	assert.EqualValues(t, 1, stats["active_licenses"])
	assert.EqualValues(t, 1, stats["revoked_licenses"])
	assert.EqualValues(t, 1, stats["expiring_licenses"])
}

func TestAdminSheetSyncNotConfigured(t *testing.T) {
	app := setupApp(t)

	token, err := util.GenerateToken("admin")
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", "/api/v1/licenses/sync", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
