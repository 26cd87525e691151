// Package export writes a workspace's contacts to CSV or XLSX files and
// imports contacts from CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dmaldonado/nestdesk/pkg/crm"
	"github.com/dmaldonado/nestdesk/pkg/workspace"
)

// Service handles export and import of contact data.
type Service struct {
	storagePath string
}

// NewService creates the service and its storage directory.
func NewService(storagePath string) *Service {
	os.MkdirAll(storagePath, 0755)
	return &Service{storagePath: storagePath}
}

var contactHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "Company", "Temperature",
	"Lead Source", "Deal Stage", "Deal Value", "Property Interest", "Budget",
	"Notes", "Last Contact", "Created At",
}

func contactRow(c crm.Contact) []string {
	stage := ""
	if c.DealStage != nil {
		stage = string(*c.DealStage)
	}
	value := ""
	if c.DealValue != nil {
		value = strconv.FormatFloat(*c.DealValue, 'f', 2, 64)
	}
	return []string{
		c.FirstName, c.LastName, c.Email, c.Phone, c.Company,
		string(c.Temperature), c.LeadSource, stage, value,
		c.PropertyInterest, c.Budget, c.Notes,
		c.LastContact.Format(time.RFC3339),
		c.CreatedAt.Format(time.RFC3339),
	}
}

// ExportCSV writes the contacts to a timestamped CSV file and returns its
// path.
func (s *Service) ExportCSV(userID string, contacts []crm.Contact) (string, error) {
	filename := fmt.Sprintf("contacts-%s-%s.csv", userID, time.Now().Format("20060102-150405"))
	path := filepath.Join(s.storagePath, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(contactHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, c := range contacts {
		if err := writer.Write(contactRow(c)); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	return path, nil
}

// ExportXLSX writes the contacts to a timestamped Excel file and returns
// its path.
func (s *Service) ExportXLSX(userID string, contacts []crm.Contact) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Contacts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("create style: %w", err)
	}

	for i, header := range contactHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, c := range contactRowsFor(contacts) {
		for colIdx, value := range c {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	f.SetActiveSheet(index)

	filename := fmt.Sprintf("contacts-%s-%s.xlsx", userID, time.Now().Format("20060102-150405"))
	path := filepath.Join(s.storagePath, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return path, nil
}

func contactRowsFor(contacts []crm.Contact) [][]string {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, contactRow(c))
	}
	return rows
}

// ImportResult holds the outcome of a CSV import.
type ImportResult struct {
	TotalRows    int           `json:"totalRows"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	Errors       []ImportError `json:"errors,omitempty"`
}

// ImportError describes one rejected row.
type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

const maxImportRows = 5000

// ImportCSV reads contacts from r and adds each through the workspace, so
// imported rows follow the same optimistic persistence as manual entry.
// Expected columns: firstName,lastName,email,phone,company,temperature,
// leadSource,dealStage,dealValue,notes — header row required, order free.
func (s *Service) ImportCSV(ctx context.Context, w *workspace.Workspace, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeColumn(name)] = i
	}
	if _, ok := cols["firstname"]; !ok {
		return nil, fmt.Errorf("missing required column: firstName")
	}

	result := &ImportResult{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.TotalRows++
			result.FailureCount++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}
		result.TotalRows++
		if result.TotalRows > maxImportRows {
			return nil, fmt.Errorf("import exceeds %d rows", maxImportRows)
		}

		contact, err := contactFromRecord(record, cols)
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}
		if _, err := w.AddContact(ctx, contact); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

func contactFromRecord(record []string, cols map[string]int) (crm.Contact, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	contact := crm.Contact{
		FirstName:        get("firstname"),
		LastName:         get("lastname"),
		Email:            get("email"),
		Phone:            get("phone"),
		Company:          get("company"),
		Temperature:      crm.Temperature(get("temperature")),
		LeadSource:       get("leadsource"),
		PropertyInterest: get("propertyinterest"),
		Budget:           get("budget"),
		Notes:            get("notes"),
	}
	if contact.FirstName == "" {
		return crm.Contact{}, fmt.Errorf("firstName is empty")
	}

	if stage := get("dealstage"); stage != "" {
		dealStage := crm.DealStage(stage)
		if !crm.ValidStage(dealStage) {
			return crm.Contact{}, fmt.Errorf("invalid deal stage %q", stage)
		}
		contact.DealStage = &dealStage
	}
	if value := get("dealvalue"); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return crm.Contact{}, fmt.Errorf("invalid deal value %q", value)
		}
		contact.DealValue = &parsed
	}
	return contact, nil
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}
