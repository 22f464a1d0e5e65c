package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one member line of an import file.
type Row struct {
	Line         int
	Client       string
	Campaign     string
	ExternalID   string
	Name         string
	Lastname     string
	Email        string
	Tel          string
	CustomerType string
	// nil when the cell is blank or unreadable
	Points *int
}

// Batch is the parsed content of a file plus per-line problems.
type Batch struct {
	Rows    []Row
	Skipped int
	Errors  []string
}

// Header names accepted for each column, compared lowercased without spaces, dashes or underscores.
var headerAliases = map[string]string{
	"client":       "client",
	"cliente":      "client",
	"campaign":     "campaign",
	"campana":      "campaign",
	"campaña":      "campaign",
	"externalid":   "external_id",
	"name":         "name",
	"nombre":       "name",
	"lastname":     "lastname",
	"apellido":     "lastname",
	"email":        "email",
	"tel":          "tel",
	"phone":        "tel",
	"telefono":     "tel",
	"customertype": "customer_type",
	"tipocliente":  "customer_type",
	"points":       "points",
	"puntos":       "points",
}

// ExportHeader is the column order written by exports.
var ExportHeader = []string{"client", "campaign", "external_id", "name", "lastname", "email", "tel", "customer_type", "points", "tier"}

var ErrNoHeader = errors.New("import file has no header row")

// Parse dispatches on the file extension: .xlsx goes through excelize, anything else is CSV.
func Parse(filename string, r io.Reader) (*Batch, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

func ParseCSV(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(r)
	// Allow variable number of fields per record
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRecords(records)
}

func ParseXLSX(r io.Reader) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*Batch, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		if field, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["client"]; !ok {
		return nil, fmt.Errorf("%w: missing client column", ErrNoHeader)
	}
	if _, ok := cols["campaign"]; !ok {
		return nil, fmt.Errorf("%w: missing campaign column", ErrNoHeader)
	}

	b := &Batch{Rows: make([]Row, 0, len(records)-1)}
	for i, rec := range records[1:] {
		line := i + 2
		get := func(field string) string {
			idx, ok := cols[field]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		if isBlank(rec) {
			continue
		}

		row := Row{
			Line:         line,
			Client:       get("client"),
			Campaign:     get("campaign"),
			ExternalID:   get("external_id"),
			Name:         get("name"),
			Lastname:     get("lastname"),
			Email:        strings.ToLower(get("email")),
			Tel:          get("tel"),
			CustomerType: get("customer_type"),
		}
		if row.Client == "" || row.Campaign == "" {
			b.Skipped++
			b.Errors = append(b.Errors, fmt.Sprintf("line %d: client and campaign are required", line))
			continue
		}
		if p := get("points"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil {
				b.Errors = append(b.Errors, fmt.Sprintf("line %d: invalid points %q, keeping stored value", line, p))
			} else {
				row.Points = &n
			}
		}
		b.Rows = append(b.Rows, row)
	}
	return b, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
