package catalog

import "testing"

func TestDirectoryShape(t *testing.T) {
	dir := Directory()
	if len(dir) != DomainCount {
		t.Fatalf("Directory() has %d domains, want %d", len(dir), DomainCount)
	}

	for i, d := range dir {
		if d.ID != i+1 {
			t.Errorf("domain %d has id %d, want %d", i, d.ID, i+1)
		}
		if d.Name == "" {
			t.Errorf("domain %d has empty name", d.ID)
		}
		if len(d.Courses) == 0 {
			t.Errorf("domain %d lists no courses", d.ID)
		}
	}
}

func TestDomainByID(t *testing.T) {
	d, ok := DomainByID(4)
	if !ok || d.Name != "Finance & Procurement" {
		t.Errorf("DomainByID(4) = %+v, %v", d, ok)
	}

	for _, id := range []int{0, -1, 7} {
		if _, ok := DomainByID(id); ok {
			t.Errorf("DomainByID(%d) should miss", id)
		}
	}
}

func TestEveryDirectoryCourseBelongsToOneDomain(t *testing.T) {
	seen := map[string]int{}
	for _, d := range Directory() {
		for _, name := range d.Courses {
			seen[name]++
		}
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("course %q listed in %d domains", name, count)
		}
	}
	if TotalCourses() != len(seen) {
		t.Errorf("TotalCourses() = %d, distinct listed courses = %d", TotalCourses(), len(seen))
	}
}
