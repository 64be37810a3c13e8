package catalog

// Domain is one curated browse category. Course entries are display names in
// listing order; they are matched back to catalog records through the
// resolver, not by exact equality.
type Domain struct {
	ID      int
	Name    string
	Courses []string
}

// DomainCount is the number of curated browse categories.
const DomainCount = 6

// directory is the curated grouping shown by "show all courses" and
// "domain <n>". Ids are stable; every supported course belongs to exactly
// one domain for listing purposes.
var directory = []Domain{
	{
		ID:   1,
		Name: "Aviation Management",
		Courses: []string{
			"Airport Customer Service Excellence",
			"Aviation Law and Regulation",
			"Strategic Airport Business Planning",
			"Air Transport Economics",
		},
	},
	{
		ID:   2,
		Name: "Airport Operations",
		Courses: []string{
			"Airside Operations and Ramp Safety",
			"Airport Terminal Operations",
			"Wildlife Hazard Management",
			"Slot Coordination and Capacity Planning",
		},
	},
	{
		ID:   3,
		Name: "Safety & Security",
		Courses: []string{
			"Safety Management System (SMS)",
			"Dangerous Goods Regulations",
			"Airport Emergency Planning",
			"Aviation Security Awareness",
		},
	},
	{
		ID:   4,
		Name: "Finance & Procurement",
		Courses: []string{
			"GeM Procurement",
			"Airport Revenue Management",
			"Public Financial Management",
			"Contract Management for Airports",
		},
	},
	{
		ID:   5,
		Name: "HR & Administration",
		Courses: []string{
			"Human Resource Management in Aviation",
			"Noting and Drafting",
			"Stress Management and Work-Life Balance",
			"Right to Information Act",
		},
	},
	{
		ID:   6,
		Name: "Engineering & Infrastructure",
		Courses: []string{
			"Airport Pavement Design and Maintenance",
			"Runway Friction and Maintenance",
			"Green Airport Infrastructure",
			"Airfield Ground Lighting Systems",
		},
	},
}

// Directory returns all domains in id order.
func Directory() []Domain {
	return directory
}

// DomainByID returns the domain with the given id.
func DomainByID(id int) (Domain, bool) {
	if id < 1 || id > len(directory) {
		return Domain{}, false
	}
	return directory[id-1], true
}

// TotalCourses returns the combined course count across all domains.
func TotalCourses() int {
	total := 0
	for _, d := range directory {
		total += len(d.Courses)
	}
	return total
}
