package models

// Dashboard roles as stored in the users worksheet.
const (
	RoleAdministrator   = "Administrator/in"
	RoleMitarbeiter     = "Mitarbeiter/in"
	RoleTrackingpartner = "Trackingpartner"
)

// View names of the dashboard menu.
const (
	ViewOverview          = "Overview"
	ViewMarketing         = "Marketing Attribution"
	ViewPropertyBreakdown = "Property Breakdown"
	ViewGeographic        = "Geographic Analytics"
	ViewLeadsFeatures     = "Leads Features"
	ViewUpdateLeads       = "Update Leads"
	ViewLoginRequired     = "Login Required"
)

// User is one row of the users worksheet. Password holds the plaintext
// import value and is never exposed; HashedPassword is derived once and
// written back.
type User struct {
	Name           string `gorm:"column:Name" json:"name"`
	Email          string `gorm:"column:Email" json:"email"`
	Password       string `gorm:"column:Password" json:"-"`
	HashedPassword string `gorm:"column:Hashed_Password" json:"-"`
	Role           string `gorm:"column:Role" json:"role"`
}

func (User) TableName() string {
	return "users"
}

// MenuForRole maps a role to its visible views. Unrecognized roles get the
// login-required placeholder only.
func MenuForRole(role string) []string {
	switch role {
	case RoleAdministrator:
		return []string{
			ViewOverview, ViewMarketing, ViewPropertyBreakdown,
			ViewGeographic, ViewLeadsFeatures, ViewUpdateLeads,
		}
	case RoleMitarbeiter:
		return []string{
			ViewLeadsFeatures, ViewUpdateLeads, ViewPropertyBreakdown,
			ViewGeographic,
		}
	case RoleTrackingpartner:
		return []string{
			ViewLeadsFeatures, ViewPropertyBreakdown, ViewGeographic,
		}
	default:
		return []string{ViewLoginRequired}
	}
}

// CanAccess reports whether the role's menu contains the given view.
func CanAccess(role, view string) bool {
	for _, v := range MenuForRole(role) {
		if v == view {
			return true
		}
	}
	return false
}
