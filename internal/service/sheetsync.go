package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"license-validation-api/internal/model"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetSyncService mirrors license state to a Google Sheet so operators can
// watch the fleet without database access. Optional; a nil service is a
// no-op everywhere.
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	log           *zap.Logger
}

func NewSheetSyncService(enable bool, credentialPath, spreadsheetID, sheetName string, log *zap.Logger) (*SheetSyncService, error) {
	if !enable {
		return nil, nil
	}

	ctx := context.Background()

	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		log:           log,
	}, nil
}

// SyncLicense updates the sheet row for a license, appending one if the
// prefix is not present yet.
func (s *SheetSyncService) SyncLicense(lic *model.License) error {
	if s == nil {
		return nil
	}

	// Prefixes live in column A starting at row 2.
	rangeToSearch := fmt.Sprintf("%s!A2:A", s.sheetName)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rangeToSearch).Do()
	if err != nil {
		s.log.Error("failed to read sheet rows", zap.Error(err))
		return fmt.Errorf("failed to read sheet rows: %w", err)
	}

	rowIndex := 0
	found := false
	for i, row := range resp.Values {
		if len(row) > 0 && row[0] == lic.LicensePrefix {
			found = true
			rowIndex = i + 2
			break
		}
	}

	values := [][]interface{}{licenseRow(lic)}

	if found {
		rangeData := fmt.Sprintf("%s!A%d:G%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:G",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		s.log.Error("failed to sync license to sheet",
			zap.String("prefix", lic.LicensePrefix), zap.Error(err))
		return fmt.Errorf("failed to sync license to sheet: %w", err)
	}

	s.log.Info("license synced to sheet", zap.String("prefix", lic.LicensePrefix))
	return nil
}

// BatchSyncLicenses appends the given licenses to the sheet in one call.
// Used by the admin sync endpoint for a full export.
func (s *SheetSyncService) BatchSyncLicenses(licenses []*model.License) error {
	if s == nil {
		return nil
	}

	var values [][]interface{}
	for _, lic := range licenses {
		values = append(values, licenseRow(lic))
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:G",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()

	if err != nil {
		s.log.Error("failed to batch sync licenses", zap.Error(err))
		return err
	}
	return nil
}

func licenseRow(lic *model.License) []interface{} {
	assignedAt := ""
	if lic.AssignedAt != nil {
		assignedAt = lic.AssignedAt.Format(time.RFC3339)
	}
	return []interface{}{
		lic.LicensePrefix,
		lic.Status.DisplayName(),
		lic.CompanyName,
		lic.AssignedDeviceID,
		assignedAt,
		lic.ExpiresAt.Format(time.RFC3339),
		lic.CreatedAt.Format(time.RFC3339),
	}
}
