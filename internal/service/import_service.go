package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"registras/internal/dto"
	"registras/internal/model"
	"registras/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportService loads positions from spreadsheet exports. The whole file is
// one transaction: a dry run rolls it back after computing the report, so
// repeated imports of the same file converge instead of duplicating rows.
type ImportService interface {
	ImportCSV(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportReport, error)
}

type importService struct {
	posRepo repository.PositionRepository
	prices  PriceService
}

func NewImportService(posRepo repository.PositionRepository, prices PriceService) ImportService {
	return &importService{posRepo: posRepo, prices: prices}
}

// importColumn maps a CSV column onto a position field. Headers match either
// the canonical key or the human label the export templates use.
type importColumn struct {
	key   string
	label string
}

var importColumns = []importColumn{
	{"code", "Position code"},
	{"customer", "Customer"},
	{"project", "Project"},
	{"name", "Position name"},
	{"metal", "Metal"},
	{"area", "Area"},
	{"weight", "Weight"},
	{"coating", "Coating"},
	{"color", "Color"},
	{"packaging_type", "Packaging type"},
	{"packaging", "Packaging"},
	{"note", "Notes"},
	{"unit_price", "Price (EUR)"},
}

// runBatchTx is runTx with an explicit rollback path: fn runs in one
// transaction and a dry run discards it even on success. A nil db (unit
// test mode) calls fn directly.
func runBatchTx(ctx context.Context, db *gorm.DB, dryRun bool, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if dryRun {
		return tx.Rollback().Error
	}
	return tx.Commit().Error
}

func (s *importService) ImportCSV(ctx context.Context, r io.Reader, dryRun bool) (*dto.ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Excel exports prepend a UTF-8 BOM
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("empty file")
	}
	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	report := &dto.ImportReport{DryRun: dryRun, Errors: []dto.ImportRowError{}}

	txErr := runBatchTx(ctx, s.posRepo.DB(), dryRun, func(tx *gorm.DB) error {
		rowNum := 1 // header was row 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			rowNum++
			if err != nil {
				report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: "malformed row"})
				continue
			}
			report.Total++
			s.importRow(tx, columns, record, rowNum, report)
		}
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("total", report.Total).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("errors", len(report.Errors)).
		Bool("dry_run", dryRun).
		Msg("csv import finished")
	return report, nil
}

// importRow upserts one position by code. Failures land in the report; the
// batch continues.
func (s *importService) importRow(tx *gorm.DB, columns map[int]string, record []string, rowNum int, report *dto.ImportReport) {
	fields := make(map[string]string, len(columns))
	for idx, key := range columns {
		if idx < len(record) {
			fields[key] = strings.TrimSpace(record[idx])
		}
	}

	code := fields["code"]
	if code == "" {
		report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: "missing position code"})
		return
	}

	pos, err := s.posRepo.FindByCodeTx(tx, code)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		pos = &model.Position{Code: code}
		created = true
	default:
		report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
		return
	}

	// Blank descriptive cells clear the field; an absent column leaves it alone.
	for key, dst := range map[string]*string{
		"customer":       &pos.Customer,
		"project":        &pos.Project,
		"name":           &pos.Name,
		"metal":          &pos.Metal,
		"area":           &pos.Area,
		"weight":         &pos.Weight,
		"coating":        &pos.Coating,
		"color":          &pos.Color,
		"packaging_type": &pos.PackagingType,
		"packaging":      &pos.Packaging,
		"note":           &pos.Note,
	} {
		if v, ok := fields[key]; ok {
			*dst = v
		}
	}

	if created {
		err = s.posRepo.CreateTx(tx, pos)
	} else {
		err = s.posRepo.UpdateTx(tx, pos)
	}
	if err != nil {
		report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
		return
	}
	if created {
		report.Created++
	} else {
		report.Updated++
	}

	// A blank price cell leaves the position's pricing untouched.
	if rawPrice, ok := fields["unit_price"]; ok && rawPrice != "" {
		amount, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", "."))
		if err != nil {
			report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: fmt.Sprintf("bad price %q", rawPrice)})
			return
		}
		if _, err := s.prices.SetBaseUnitPriceTx(tx, pos, amount); err != nil {
			report.Errors = append(report.Errors, dto.ImportRowError{Row: rowNum, Message: err.Error()})
			return
		}
		report.PricesSet++
	}
}

// sniffDelimiter inspects the header line. Exports from local spreadsheets
// use semicolons, others commas.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) >= bytes.Count(line, []byte(",")) && bytes.Contains(line, []byte(";")) {
		return ';'
	}
	return ','
}

// mapHeader resolves each header cell to a field key. Unknown columns are
// ignored; a file without a code column is rejected outright.
func mapHeader(header []string) (map[int]string, error) {
	columns := make(map[int]string, len(header))
	for idx, cell := range header {
		cell = strings.TrimSpace(cell)
		for _, col := range importColumns {
			if strings.EqualFold(cell, col.key) || strings.EqualFold(cell, col.label) {
				columns[idx] = col.key
				break
			}
		}
	}
	hasCode := false
	for _, key := range columns {
		if key == "code" {
			hasCode = true
		}
	}
	if !hasCode {
		return nil, errors.New("no position code column in header")
	}
	return columns, nil
}
