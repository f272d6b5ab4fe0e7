// Package roles maps staff roles to their dashboard landing route and the
// navigation entries they may see. Both views are derived from a single
// registry so the route table and the menu table cannot drift apart.
package roles

// Role is the display name of a staff role as stored in staff_roles.role_name.
type Role string

const (
	Admin         Role = "Admin"
	Doctor        Role = "Doctor"
	Nurse         Role = "Nurse"
	Pharmacist    Role = "Pharmacist"
	Receptionist  Role = "Receptionist"
	LabTechnician Role = "Lab Technician"
	Radiologist   Role = "Radiologist"
	Accountant    Role = "Accountant"
	DatabaseAdmin Role = "Database Administrator"
)

// LoginRoute is where unauthenticated sessions land.
const LoginRoute = "/login"

// defaultRoute is the landing page for authenticated roles with no
// explicit home of their own.
const defaultRoute = "/dashboard"

// MenuEntry is a navigation item visible to one or more roles.
type MenuEntry struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Roles []Role `json:"-"`

	// Home marks this entry as the landing route for the roles listed in
	// HomeFor. A role may see many entries but lands on exactly one.
	HomeFor []Role `json:"-"`
}

// Registry is the single source of truth for navigation and landing routes.
// Order matters: menus render in this order.
var Registry = []MenuEntry{
	{Path: "/dashboard", Label: "Dashboard", Roles: []Role{Admin}, HomeFor: []Role{Admin}},
	{Path: "/dashboard/patients", Label: "Patients", Roles: []Role{Admin, Nurse, Receptionist}, HomeFor: []Role{Nurse}},
	{Path: "/dashboard/my-patients", Label: "My Patients", Roles: []Role{Doctor}},
	{Path: "/dashboard/doctors", Label: "Doctors", Roles: []Role{Admin, Receptionist}},
	{Path: "/dashboard/appointments", Label: "Appointments", Roles: []Role{Admin, Nurse, Receptionist}, HomeFor: []Role{Receptionist}},
	{Path: "/dashboard/my-appointments", Label: "My Appointments", Roles: []Role{Doctor}, HomeFor: []Role{Doctor}},
	{Path: "/dashboard/prescriptions", Label: "Prescriptions", Roles: []Role{Admin, Pharmacist}, HomeFor: []Role{Pharmacist}},
	{Path: "/dashboard/medical-records", Label: "Medical Records", Roles: []Role{Admin, Nurse}},
	{Path: "/dashboard/lab-results", Label: "Lab Results", Roles: []Role{Admin, LabTechnician, Radiologist}, HomeFor: []Role{LabTechnician, Radiologist}},
	{Path: "/dashboard/billing", Label: "Billing", Roles: []Role{Admin, Accountant, Receptionist}, HomeFor: []Role{Accountant}},
	{Path: "/dashboard/my-earnings", Label: "My Earnings", Roles: []Role{Doctor}},
	{Path: "/dashboard/facilities", Label: "Facilities", Roles: []Role{Admin}},
	{Path: "/dashboard/database-admin", Label: "Database Admin", Roles: []Role{DatabaseAdmin}, HomeFor: []Role{DatabaseAdmin}},
}

// DashboardFor returns the landing route for a role. An empty role means the
// session is unauthenticated and is sent to login; a recognized role with no
// dedicated home lands on the shared dashboard.
func DashboardFor(role Role) string {
	if role == "" {
		return LoginRoute
	}
	for _, entry := range Registry {
		for _, r := range entry.HomeFor {
			if r == role {
				return entry.Path
			}
		}
	}
	return defaultRoute
}

// MenuFor returns the navigation entries visible to a role, in render order.
func MenuFor(role Role) []MenuEntry {
	var visible []MenuEntry
	for _, entry := range Registry {
		for _, r := range entry.Roles {
			if r == role {
				visible = append(visible, entry)
				break
			}
		}
	}
	return visible
}

// Known reports whether role names an entry in the registry.
func Known(role Role) bool {
	switch role {
	case Admin, Doctor, Nurse, Pharmacist, Receptionist, LabTechnician, Radiologist, Accountant, DatabaseAdmin:
		return true
	}
	return false
}
