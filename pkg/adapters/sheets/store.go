// Package sheets appends confirmed applications to a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/rapidhire/pkg/domain"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// Cells hold exactly what the candidate typed: no number parsing, no formulas.
	valueInputOption = "RAW"
	insertDataOption = "INSERT_ROWS"
)

// ErrSpreadsheetNotFound is returned when a spreadsheet name matches no file.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// Config selects the target spreadsheet.
type Config struct {
	// SpreadsheetID addresses the spreadsheet directly.
	SpreadsheetID string

	// SpreadsheetName is looked up through Drive when SpreadsheetID is empty.
	SpreadsheetName string

	// Worksheet is the tab rows are appended to. Empty means the first tab.
	Worksheet string

	// CredentialsFile is a service account key. Ignored when client options supply auth.
	CredentialsFile string

	// TimeLayout formats the submission time column. Defaults to domain.SubmissionTimeLayout.
	TimeLayout string

	// Location converts the submission time before formatting. Defaults to UTC.
	Location *time.Location
}

// Store implements ports.ApplicationStore on top of the Sheets values.append call.
type Store struct {
	service       *gsheets.Service
	spreadsheetID string
	appendRange   string
	layout        string
	location      *time.Location
}

// New resolves the spreadsheet and returns a ready Store.
// opts are passed to both the Sheets and the Drive clients.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.SpreadsheetID == "" && cfg.SpreadsheetName == "" {
		return nil, errors.New("sheets: spreadsheet id or name is required")
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+2)
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope))
	clientOpts = append(clientOpts, opts...)

	service, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create client: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		driveService, err := drive.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("sheets: failed to create drive client: %w", err)
		}
		id, err = resolveByName(ctx, driveService, cfg.SpreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	s := &Store{
		service:       service,
		spreadsheetID: id,
		appendRange:   appendRange(cfg.Worksheet),
		layout:        cfg.TimeLayout,
		location:      cfg.Location,
	}
	if s.layout == "" {
		s.layout = domain.SubmissionTimeLayout
	}
	if s.location == nil {
		s.location = time.UTC
	}
	return s, nil
}

// SpreadsheetID returns the resolved spreadsheet.
func (s *Store) SpreadsheetID() string {
	return s.spreadsheetID
}

// Append adds app as one row at the end of the worksheet. It makes exactly one call.
func (s *Store) Append(ctx context.Context, app domain.Application) error {
	now := time.Now().In(s.location)
	if !app.SubmittedAt.IsZero() {
		app.SubmittedAt = app.SubmittedAt.In(s.location)
	}

	row := app.Row(now, s.layout)
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.appendRange, &gsheets.ValueRange{
			MajorDimension: "ROWS",
			Values:         [][]interface{}{cells},
		}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %s: %w", s.spreadsheetID, err)
	}
	return nil
}

func resolveByName(ctx context.Context, service *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)

	list, err := service.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: failed to look up %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return list.Files[0].Id, nil
}

// appendRange anchors the append at A1 of worksheet; without a worksheet the
// first tab is used.
func appendRange(worksheet string) string {
	if worksheet == "" {
		return "A1"
	}
	return "'" + strings.ReplaceAll(worksheet, "'", "''") + "'!A1"
}
