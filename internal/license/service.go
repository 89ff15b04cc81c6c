package license

import (
	"context"
	"fmt"
	"time"

	"license-validation-api/internal/model"

	"go.uber.org/zap"
)

// Service composes the key codec, hash verifier, store and binding engine
// into the single validate operation exposed to transport.
type Service struct {
	store  Store
	binder *Binder
	log    *zap.Logger

	// OnBound, when set, is called after a successful first-time binding
	// with a copy of the freshly bound license.
	OnBound func(model.License)
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{
		store:  store,
		binder: NewBinder(store, log),
		log:    log,
	}
}

// Validate runs the gate pipeline for one validation request. Gate order is
// contractual: format, lookup, key verification, status, expiry, binding.
// Reordering changes the observable error code for malformed or ambiguous
// input. Every internal fault is downgraded to CodeValidationError here;
// the detail goes to the server log only.
func (s *Service) Validate(ctx context.Context, req model.ValidationRequest) *model.ValidationResponse {
	prefix, ok := ExtractPrefix(req.LicenseKey)
	if !ok {
		return invalid("Invalid license key format.", CodeInvalidFormat)
	}

	s.log.Info("license validation requested",
		zap.String("prefix", prefix), zap.String("device", req.DeviceID))

	lic, err := s.store.FindByPrefix(ctx, prefix)
	if err != nil {
		if err == ErrNotFound {
			s.log.Warn("license not found", zap.String("prefix", prefix))
			return invalid("License not found.", CodeNotFound)
		}
		return s.internalFault(prefix, err)
	}

	switch VerifyKey(req.LicenseKey, lic.LicenseKeyHash, lic.Salt) {
	case Verified:
	case NotVerified:
		s.log.Warn("invalid license key", zap.String("prefix", prefix))
		return invalid("Invalid license key.", CodeInvalidKey)
	case VerifyFailed:
		// Corrupt stored hash or salt is a server-side problem, not a key
		// mismatch. Fail closed, but with the internal error code.
		return s.internalFault(prefix, fmt.Errorf("license record not verifiable"))
	}

	if lic.Status != model.StatusActive {
		s.log.Warn("license not active",
			zap.String("prefix", prefix), zap.String("status", lic.Status.DisplayName()))
		return invalid("License status: "+lic.Status.DisplayName(), CodeNotActive)
	}

	if lic.IsExpired() {
		s.log.Warn("license expired",
			zap.String("prefix", prefix), zap.Time("expires_at", lic.ExpiresAt))
		resp := invalid("License has expired.", CodeExpired)
		resp.ExpiresAt = &lic.ExpiresAt
		return resp
	}

	outcome, err := s.binder.Bind(ctx, lic, DeviceClaim{DeviceID: req.DeviceID, DeviceInfo: req.DeviceInfo})
	if err != nil {
		return s.internalFault(prefix, err)
	}
	if !outcome.Accepted {
		resp := invalid(bindingMessage(outcome), outcome.Code)
		if outcome.Code == CodeDeviceMismatch {
			resp.IsDeviceAssigned = true
			resp.AssignedAt = outcome.AssignedAt
		}
		return resp
	}

	if outcome.FirstBind && s.OnBound != nil {
		s.OnBound(*lic)
	}

	days := daysRemaining(lic.ExpiresAt)
	s.log.Info("license validation successful",
		zap.String("prefix", prefix), zap.String("device", req.DeviceID))

	return &model.ValidationResponse{
		IsValid:          true,
		Message:          "License is valid.",
		LicenseInfo:      model.NewLicenseInfo(lic),
		ExpiresAt:        &lic.ExpiresAt,
		DaysRemaining:    &days,
		IsDeviceAssigned: lic.IsAssigned(),
		AssignedAt:       lic.AssignedAt,
	}
}

// GetByPrefix serves the read-only status query. No device logic, no
// mutation.
func (s *Service) GetByPrefix(ctx context.Context, prefix string) (*model.License, error) {
	return s.store.FindByPrefix(ctx, prefix)
}

func (s *Service) internalFault(prefix string, err error) *model.ValidationResponse {
	s.log.Error("error during license validation",
		zap.String("prefix", prefix), zap.Error(err))
	return invalid("An error occurred during license validation.", CodeValidationError)
}

func invalid(message, code string) *model.ValidationResponse {
	return &model.ValidationResponse{IsValid: false, Message: message, ErrorCode: code}
}

func bindingMessage(o BindingOutcome) string {
	if o.Code == CodeDeviceMismatch {
		return fmt.Sprintf("This license is assigned to another device. (Assigned device: %s)", o.AssignedDeviceID)
	}
	return "An error occurred during device assignment."
}

// daysRemaining is the floor of whole days until expiry, clamped to zero.
func daysRemaining(expiresAt time.Time) int {
	d := int(time.Until(expiresAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
