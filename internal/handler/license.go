package handler

import (
	"time"

	"license-validation-api/internal/database"
	"license-validation-api/internal/license"
	"license-validation-api/internal/model"
	"license-validation-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	licenseSvc *license.Service
	sheetSync  *service.SheetSyncService
	validate   = validator.New()
	log        = zap.NewNop()
)

// Init wires the handler package. sync may be nil when sheet export is
// disabled.
func Init(svc *license.Service, sync *service.SheetSyncService, logger *zap.Logger) {
	licenseSvc = svc
	sheetSync = sync
	log = logger

	// Mirror every first-time binding to the sheet, off the request path.
	if sheetSync != nil {
		svc.OnBound = func(lic model.License) {
			go func() {
				if err := sheetSync.SyncLicense(&lic); err != nil {
					log.Error("sheet sync after binding failed", zap.Error(err))
				}
			}()
		}
	}
}

// HandleLicenseValidate validates a license key and binds it to the calling
// device. The endpoint answers 200 for every well-formed request; the
// business outcome is carried by the payload.
func HandleLicenseValidate(c *fiber.Ctx) error {
	req := new(model.ValidationRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("Invalid request body", license.CodeInvalidRequest))
	}
	if err := validate.Struct(req); err != nil {
		log.Warn("invalid validation request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("Invalid request: "+err.Error(), license.CodeInvalidRequest))
	}

	result := licenseSvc.Validate(c.UserContext(), *req)

	// Audit trail is best effort and never changes the outcome.
	prefix, _ := license.ExtractPrefix(req.LicenseKey)
	outcome := result.ErrorCode
	if result.IsValid {
		outcome = model.OutcomeValid
	}
	if err := service.RecordValidation(prefix, req.DeviceID, outcome, c.IP(), c.Get("User-Agent")); err != nil {
		log.Error("failed to record validation attempt", zap.Error(err))
	}

	return c.JSON(model.SuccessResponse("License validation completed", result))
}

// HandleLicenseStatus reports license details for a bare prefix. Read-only:
// no device logic, no mutation.
func HandleLicenseStatus(c *fiber.Ctx) error {
	prefix := c.Params("prefix")
	if prefix == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("License prefix is required", license.CodeInvalidRequest))
	}

	lic, err := licenseSvc.GetByPrefix(c.UserContext(), prefix)
	if err != nil {
		if err == license.ErrNotFound {
			return c.Status(fiber.StatusNotFound).
				JSON(model.ErrorResponse("License not found", license.CodeNotFound))
		}
		log.Error("license status lookup failed", zap.String("prefix", prefix), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Internal server error", license.CodeInternalError))
	}

	return c.JSON(model.SuccessResponse("License details retrieved", model.NewLicenseInfo(lic)))
}

// HandleHealthCheck is a static liveness probe.
func HandleHealthCheck(c *fiber.Ctx) error {
	return c.JSON(model.SuccessResponse("API is running", nil))
}

// HandleGetAllLicenses lists licenses for operators, paginated.
func HandleGetAllLicenses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 50)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var licenses []model.License
	var total int64
	if err := database.DB.Model(&model.License{}).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to count licenses", license.CodeInternalError))
	}
	err := database.DB.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&licenses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to list licenses", license.CodeInternalError))
	}

	return c.JSON(model.SuccessResponse("Licenses retrieved", fiber.Map{
		"licenses":  licenses,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}))
}

// HandleLicenseRecords returns recent validation attempts for a prefix.
func HandleLicenseRecords(c *fiber.Ctx) error {
	prefix := c.Params("prefix")
	if prefix == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("License prefix is required", license.CodeInvalidRequest))
	}

	records, err := service.GetValidationRecords(prefix, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to query validation records", license.CodeInternalError))
	}

	return c.JSON(model.SuccessResponse("Validation records retrieved", fiber.Map{
		"records": records,
	}))
}

// HandleLicenseStatistics aggregates fleet counts and validation outcomes.
func HandleLicenseStatistics(c *fiber.Ctx) error {
	db := database.DB
	stats := &model.LicenseStatistics{FailuresByCode: make(map[string]int64)}

	type statusCount struct {
		Status model.LicenseStatus
		Count  int64
	}
	var byStatus []statusCount
	if err := db.Model(&model.License{}).
		Select("status, count(*) as count").Group("status").Scan(&byStatus).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to compute statistics", license.CodeInternalError))
	}
	for _, sc := range byStatus {
		stats.TotalLicenses += sc.Count
		switch sc.Status {
		case model.StatusActive:
			stats.ActiveLicenses = sc.Count
		case model.StatusExpired:
			stats.ExpiredLicenses = sc.Count
		case model.StatusSuspended:
			stats.SuspendedLicenses = sc.Count
		case model.StatusRevoked:
			stats.RevokedLicenses = sc.Count
		}
	}

	if err := db.Model(&model.License{}).
		Where("assigned_device_id IS NOT NULL AND assigned_device_id != ''").
		Count(&stats.AssignedLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to compute statistics", license.CodeInternalError))
	}

	now := time.Now().UTC()
	if err := db.Model(&model.License{}).
		Where("status = ? AND expires_at > ? AND expires_at <= ?",
			model.StatusActive, now, now.AddDate(0, 0, 30)).
		Count(&stats.ExpiringLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to compute statistics", license.CodeInternalError))
	}

	type outcomeCount struct {
		Outcome string
		Count   int64
	}
	var byOutcome []outcomeCount
	if err := db.Model(&model.ValidationRecord{}).
		Select("outcome, count(*) as count").Group("outcome").Scan(&byOutcome).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to compute statistics", license.CodeInternalError))
	}
	for _, oc := range byOutcome {
		stats.TotalValidations += oc.Count
		if oc.Outcome != model.OutcomeValid {
			stats.FailedValidations += oc.Count
			stats.FailuresByCode[oc.Outcome] = oc.Count
		}
	}

	return c.JSON(model.SuccessResponse("Statistics computed", stats))
}

// HandleSheetSync exports every license to the configured Google Sheet.
func HandleSheetSync(c *fiber.Ctx) error {
	if sheetSync == nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(model.ErrorResponse("Sheet sync is not configured", license.CodeInvalidRequest))
	}

	var licenses []*model.License
	if err := database.DB.Find(&licenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Failed to load licenses", license.CodeInternalError))
	}

	if err := sheetSync.BatchSyncLicenses(licenses); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(model.ErrorResponse("Sheet export failed", license.CodeInternalError))
	}

	return c.JSON(model.SuccessResponse("Licenses exported", fiber.Map{
		"count": len(licenses),
	}))
}
