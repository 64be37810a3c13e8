package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/errors"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// fieldKeys maps canonical record attributes to the column labels used in
// source rows. The list is fixed on purpose: a renamed source column must be
// added here explicitly, never inferred at runtime, so field drift fails
// loudly instead of silently dropping data.
var fieldKeys = map[string][]string{
	"name":        {"Programme Name", "Course Name"},
	"level":       {"Level"},
	"duration":    {"Duration (Days)", "Duration"},
	"startDate":   {"Start Date"},
	"endDate":     {"End Date"},
	"nextStart":   {"Next Start Date"},
	"nextEnd":     {"Next End Date"},
	"feePerDay":   {"Fee Per Day (Rs.)", "Fee Per Day"},
	"feeDiscount": {"Fee After Group Discount (Rs.)", "Fee After Group Discount"},
	"hostel":      {"Hostel Charges (Rs.)", "Hostel Charges"},
	"coordinator": {"Programme Coordinator", "Coordinator"},
	"phone":       {"Contact Phone", "Phone"},
	"email":       {"Contact Email", "Email"},
	"category":    {"Category"},
}

type rawRecord map[string]any

// Parse decodes a catalog source file into course records. Rows whose name
// normalizes to an empty string are skipped; one error per skipped row is
// returned alongside the usable records so the caller can log them.
func Parse(data []byte) ([]CourseRecord, []error) {
	var rows []rawRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, []error{fmt.Errorf("%w: %v", apperrors.ErrCatalogLoad, err)}
	}

	records := make([]CourseRecord, 0, len(rows))
	var skipped []error
	for i, row := range rows {
		rec, err := parseRow(row)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func parseRow(row rawRecord) (CourseRecord, error) {
	name := row.lookupString("name")
	if stringutil.Normalize(name) == "" {
		return CourseRecord{}, fmt.Errorf("%w: name %q normalizes to empty", apperrors.ErrInvalidRecord, name)
	}

	return CourseRecord{
		Name:                  strings.TrimSpace(name),
		Level:                 row.lookupString("level"),
		DurationDays:          row.lookupInt("duration"),
		StartDate:             row.lookupSerialDate("startDate"),
		EndDate:               row.lookupSerialDate("endDate"),
		NextStartDate:         row.lookupSerialDate("nextStart"),
		NextEndDate:           row.lookupSerialDate("nextEnd"),
		FeePerDay:             row.lookupFloat("feePerDay"),
		FeeAfterGroupDiscount: row.lookupFloat("feeDiscount"),
		HostelCharge:          row.lookupFloat("hostel"),
		Coordinator:           row.lookupString("coordinator"),
		Phone:                 row.lookupString("phone"),
		Email:                 row.lookupString("email"),
		Category:              row.lookupString("category"),
	}, nil
}

func (r rawRecord) lookup(attr string) (any, bool) {
	for _, key := range fieldKeys[attr] {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r rawRecord) lookupString(attr string) string {
	v, ok := r.lookup(attr)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func (r rawRecord) lookupFloat(attr string) *float64 {
	v, ok := r.lookup(attr)
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

func (r rawRecord) lookupInt(attr string) *int {
	f := r.lookupFloat(attr)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func (r rawRecord) lookupSerialDate(attr string) *time.Time {
	f := r.lookupFloat(attr)
	if f == nil || *f <= 0 {
		return nil
	}
	t := DateFromSerial(*f)
	return &t
}

// Catalog is the immutable in-memory course collection.
type Catalog struct {
	records []CourseRecord
	byNorm  map[string]int
}

// New builds a catalog from parsed records. Later records whose normalized
// name collides with an earlier one are kept in Records() but the first
// occurrence wins for ByName lookups.
func New(records []CourseRecord) *Catalog {
	byNorm := make(map[string]int, len(records))
	for i, rec := range records {
		key := stringutil.Normalize(rec.Name)
		if _, exists := byNorm[key]; !exists {
			byNorm[key] = i
		}
	}
	return &Catalog{records: records, byNorm: byNorm}
}

// Records returns all records in catalog order.
func (c *Catalog) Records() []CourseRecord {
	return c.records
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// ByName looks up a record by normalized name equality.
func (c *Catalog) ByName(name string) (*CourseRecord, bool) {
	i, ok := c.byNorm[stringutil.Normalize(name)]
	if !ok {
		return nil, false
	}
	return &c.records[i], true
}

// UniqueByName removes later duplicates by normalized name, first occurrence
// wins. Used whenever records are presented as a numbered list.
func UniqueByName(records []CourseRecord) []CourseRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]CourseRecord, 0, len(records))
	for _, rec := range records {
		key := stringutil.Normalize(rec.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
