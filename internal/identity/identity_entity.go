package identity

import "time"

// Employee is one row of the account directory.
type Employee struct {
	ID          string
	Username    string
	DisplayName string
	Email       string
	JoinedAt    time.Time // zero when the directory has no "since" value
}

// Directory maps between the three identifier spaces the upstream systems
// use for the same person: username, display name and numeric id.
type Directory struct {
	byUsername map[string]Employee
	byID       map[string]Employee
	// normalized display name -> username, for fuzzy lookups
	byNormalizedName map[string]string
	employees        []Employee
}

func NewDirectory(employees []Employee) *Directory {
	d := &Directory{
		byUsername:       make(map[string]Employee, len(employees)),
		byID:             make(map[string]Employee, len(employees)),
		byNormalizedName: make(map[string]string, len(employees)),
		employees:        employees,
	}
	for _, e := range employees {
		if e.Username == "" {
			continue
		}
		d.byUsername[e.Username] = e
		if e.ID != "" {
			d.byID[e.ID] = e
		}
		if n := Normalize(e.DisplayName); n != "" {
			// first writer wins so duplicated display names stay stable
			if _, exists := d.byNormalizedName[n]; !exists {
				d.byNormalizedName[n] = e.Username
			}
		}
	}
	return d
}

func (d *Directory) Employees() []Employee {
	return d.employees
}

func (d *Directory) Len() int {
	return len(d.employees)
}

func (d *Directory) ByUsername(username string) (Employee, bool) {
	e, ok := d.byUsername[username]
	return e, ok
}

func (d *Directory) ByID(id string) (Employee, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// NameByUsername returns the display name, falling back to the username
// itself when the directory has no row (the upstream behaves the same way).
func (d *Directory) NameByUsername(username string) string {
	if username == "" {
		return ""
	}
	if e, ok := d.byUsername[username]; ok && e.DisplayName != "" {
		return e.DisplayName
	}
	return username
}

func (d *Directory) DisplayNames() []string {
	names := make([]string, 0, len(d.employees))
	for _, e := range d.employees {
		if e.DisplayName != "" {
			names = append(names, e.DisplayName)
		}
	}
	return names
}
