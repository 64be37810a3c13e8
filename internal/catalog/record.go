// Package catalog holds the static course catalog: record parsing, the
// curated domain directory, and the snapshot loading chain.
package catalog

import (
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/stringutil"
)

// serialEpoch is day zero of the spreadsheet serial date scheme used by the
// catalog source file. Serial day-counts are offsets from 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// CourseRecord is one training offering. Optional fields are nil when the
// source row omits them; Name is the unique matching key.
type CourseRecord struct {
	Name                  string
	Level                 string
	DurationDays          *int
	StartDate             *time.Time
	EndDate               *time.Time
	NextStartDate         *time.Time
	NextEndDate           *time.Time
	FeePerDay             *float64
	FeeAfterGroupDiscount *float64
	HostelCharge          *float64
	Coordinator           string
	Phone                 string
	Email                 string
	Category              string
}

// Coordinator is one contact person with positionally paired phone/email.
type Coordinator struct {
	Name  string
	Phone string
	Email string
}

// Coordinators splits the coordinator field into individual people and pairs
// each with the phone/email list entry at the same index. Lists shorter than
// the coordinator list leave the trailing entries blank.
func (r *CourseRecord) Coordinators() []Coordinator {
	names := stringutil.SplitNames(r.Coordinator)
	if len(names) == 0 {
		return nil
	}

	phones := splitCSV(r.Phone)
	emails := splitCSV(r.Email)

	out := make([]Coordinator, len(names))
	for i, name := range names {
		c := Coordinator{Name: name}
		if i < len(phones) {
			c.Phone = phones[i]
		}
		if i < len(emails) {
			c.Email = emails[i]
		}
		out[i] = c
	}
	return out
}

// DateFromSerial converts a spreadsheet serial day-count to a calendar date.
func DateFromSerial(serial float64) time.Time {
	return serialEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
}

func splitCSV(s string) []string {
	return stringutil.SplitNames(s)
}
