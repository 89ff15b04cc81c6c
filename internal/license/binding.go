package license

import (
	"context"
	"errors"
	"time"

	"license-validation-api/internal/model"

	"go.uber.org/zap"
)

// DeviceClaim is the device identity presented with a validation request.
type DeviceClaim struct {
	DeviceID   string
	DeviceInfo string
}

// BindingOutcome is the decision of the binding engine. Accepted is true on
// the happy paths (first-time bind or repeat use by the bound device); on
// rejection Code carries the error code and, for a mismatch, the winning
// device and its assignment time are reported.
type BindingOutcome struct {
	Accepted bool
	// FirstBind is set when this call performed the one-shot assignment.
	FirstBind        bool
	Code             string
	AssignedDeviceID string
	AssignedAt       *time.Time
}

// Binder drives the one-shot device binding state machine. A license is in
// one of three states relative to an incoming claim: unbound, bound to the
// same device, or bound to another device. The unbound-to-bound edge is the
// only mutation this service ever performs on a license and fires at most
// once for its lifetime; exclusivity is enforced by the store's conditional
// write, not by locking.
type Binder struct {
	store Store
	log   *zap.Logger
}

func NewBinder(store Store, log *zap.Logger) *Binder {
	return &Binder{store: store, log: log}
}

// Bind evaluates the (license, claim) pair and performs the required write,
// if any. The license is updated in place on a successful first-time bind.
// A non-nil error means an unexpected internal fault, distinct from the
// rejection outcomes.
func (b *Binder) Bind(ctx context.Context, lic *model.License, claim DeviceClaim) (BindingOutcome, error) {
	if !lic.IsAssigned() {
		return b.bindFirst(ctx, lic, claim)
	}

	if lic.AssignedDeviceID != claim.DeviceID {
		b.log.Warn("different device attempted to use license",
			zap.String("prefix", lic.LicensePrefix),
			zap.String("assigned_device", lic.AssignedDeviceID),
			zap.String("requested_device", claim.DeviceID))
		return mismatch(lic), nil
	}

	// Same device: refresh the advisory device info when it changed.
	// Failure here is logged and swallowed; it never affects the outcome.
	if claim.DeviceInfo != "" && claim.DeviceInfo != lic.DeviceInfo {
		if err := b.store.UpdateDeviceInfo(ctx, lic.ID, claim.DeviceInfo); err != nil {
			b.log.Error("failed to update device info",
				zap.String("prefix", lic.LicensePrefix), zap.Error(err))
		} else {
			lic.DeviceInfo = claim.DeviceInfo
		}
	}

	return BindingOutcome{Accepted: true}, nil
}

func (b *Binder) bindFirst(ctx context.Context, lic *model.License, claim DeviceClaim) (BindingOutcome, error) {
	now := time.Now().UTC()
	err := b.store.AssignDevice(ctx, lic.ID, claim.DeviceID, claim.DeviceInfo, now)
	if err == nil {
		lic.AssignedDeviceID = claim.DeviceID
		lic.DeviceInfo = claim.DeviceInfo
		lic.AssignedAt = &now
		b.log.Info("device assigned to license",
			zap.String("prefix", lic.LicensePrefix),
			zap.String("device", claim.DeviceID))
		return BindingOutcome{Accepted: true, FirstBind: true}, nil
	}

	if errors.Is(err, ErrAlreadyAssigned) {
		// Lost the first-writer race. Re-fetch so the rejection reports the
		// device that actually won, not our stale view.
		fresh, ferr := b.store.FindByPrefix(ctx, lic.LicensePrefix)
		if ferr != nil {
			return BindingOutcome{}, ferr
		}
		*lic = *fresh
		b.log.Warn("lost first-assignment race",
			zap.String("prefix", lic.LicensePrefix),
			zap.String("winning_device", lic.AssignedDeviceID),
			zap.String("requested_device", claim.DeviceID))
		return mismatch(lic), nil
	}

	b.log.Error("failed to assign device to license",
		zap.String("prefix", lic.LicensePrefix), zap.Error(err))
	return BindingOutcome{Accepted: false, Code: CodeAssignmentError}, nil
}

func mismatch(lic *model.License) BindingOutcome {
	return BindingOutcome{
		Accepted:         false,
		Code:             CodeDeviceMismatch,
		AssignedDeviceID: lic.AssignedDeviceID,
		AssignedAt:       lic.AssignedAt,
	}
}
