// Package reply renders catalog records and directory listings into
// user-facing WhatsApp text messages with a fixed field order.
package reply

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
)

// notAvailable is the placeholder for absent optional fields. Fields are
// never silently omitted; the output shape stays predictable.
const notAvailable = "Not available"

// FormatCourse renders one course record. Field order is fixed: name, level,
// current and next batch dates, duration, fees, hostel charge, coordinators,
// category, phone, email.
func FormatCourse(rec *catalog.CourseRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*\n\n", rec.Name)
	fmt.Fprintf(&b, "Level: %s\n", orPlaceholder(rec.Level))
	fmt.Fprintf(&b, "Dates: %s\n", formatDateRange(rec.StartDate, rec.EndDate))
	fmt.Fprintf(&b, "Next Batch: %s\n", formatDateRange(rec.NextStartDate, rec.NextEndDate))
	fmt.Fprintf(&b, "Duration: %s\n", formatDays(rec.DurationDays))
	fmt.Fprintf(&b, "Fee Per Day: %s\n", formatRupees(rec.FeePerDay))
	fmt.Fprintf(&b, "Fee After Group Discount: %s\n", formatRupees(rec.FeeAfterGroupDiscount))
	fmt.Fprintf(&b, "Hostel Charges: %s\n", formatRupees(rec.HostelCharge))

	coordinators := rec.Coordinators()
	if len(coordinators) == 0 {
		fmt.Fprintf(&b, "Coordinator: %s\n", notAvailable)
	} else {
		for _, c := range coordinators {
			fmt.Fprintf(&b, "Coordinator: %s\n", c.Name)
		}
	}

	fmt.Fprintf(&b, "Category: %s\n", orPlaceholder(rec.Category))

	if len(coordinators) <= 1 {
		fmt.Fprintf(&b, "Phone: %s\n", orPlaceholder(rec.Phone))
		fmt.Fprintf(&b, "Email: %s", orPlaceholder(rec.Email))
	} else {
		// One contact line per coordinator, paired by position. Unmatched
		// trailing entries render as the placeholder rather than erroring.
		phones := make([]string, 0, len(coordinators))
		emails := make([]string, 0, len(coordinators))
		for _, c := range coordinators {
			phones = append(phones, orPlaceholder(c.Phone))
			emails = append(emails, orPlaceholder(c.Email))
		}
		fmt.Fprintf(&b, "Phone: %s\n", strings.Join(phones, ", "))
		fmt.Fprintf(&b, "Email: %s", strings.Join(emails, ", "))
	}

	return b.String()
}

// FormatDomainListing renders the numbered course list for one domain.
func FormatDomainListing(d catalog.Domain) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Domain %d: %s*\n\n", d.ID, d.Name)
	for i, name := range d.Courses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	fmt.Fprintf(&b, "\nTotal: %d courses\n", len(d.Courses))
	b.WriteString("Reply with a course name for details, or type *courses* to see all domains.")

	return b.String()
}

// FormatDirectorySummary renders the full domain directory with per-domain
// course counts and a combined total.
func FormatDirectorySummary(domains []catalog.Domain) string {
	var b strings.Builder

	b.WriteString("*Course Domains*\n\n")
	total := 0
	for _, d := range domains {
		fmt.Fprintf(&b, "%d. %s (%d courses)\n", d.ID, d.Name, len(d.Courses))
		total += len(d.Courses)
	}
	fmt.Fprintf(&b, "\nTotal: %d courses across %d domains\n", total, len(domains))
	b.WriteString("Reply with a domain number (1-6) or type a course name.")

	return b.String()
}

// FormatComparison renders a side-by-side summary of two or more courses:
// name, fee per day, duration, coordinator.
func FormatComparison(recs []*catalog.CourseRecord) string {
	var b strings.Builder

	b.WriteString("*Course Comparison*\n")
	for _, rec := range recs {
		fmt.Fprintf(&b, "\n*%s*\n", rec.Name)
		fmt.Fprintf(&b, "Fee Per Day: %s\n", formatRupees(rec.FeePerDay))
		fmt.Fprintf(&b, "Duration: %s\n", formatDays(rec.DurationDays))
		fmt.Fprintf(&b, "Coordinator: %s\n", orPlaceholder(rec.Coordinator))
	}

	return strings.TrimRight(b.String(), "\n")
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return strings.TrimSpace(s)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format("02/01/06")
}

func formatDateRange(start, end *time.Time) string {
	if start == nil && end == nil {
		return notAvailable
	}
	return fmt.Sprintf("%s - %s", formatDate(start), formatDate(end))
}

func formatDays(n *int) string {
	if n == nil {
		return notAvailable
	}
	if *n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", *n)
}

func formatRupees(f *float64) string {
	if f == nil {
		return notAvailable
	}
	return "Rs. " + strconv.FormatFloat(*f, 'f', -1, 64)
}
