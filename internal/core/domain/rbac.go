package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEngineer Role = "engineer"
	RoleSales    Role = "sales"
	RoleGuest    Role = "guest"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleAdmin, RoleEngineer, RoleSales, RoleGuest}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEngineer, RoleSales, RoleGuest:
		return true
	}
	return false
}

// ParseRole converts raw input into a Role. An empty value means the lowest
// privilege role; anything else outside the enumeration is rejected.
func ParseRole(raw string) (Role, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return RoleGuest, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", Validationf("role must be one of: admin, engineer, sales, guest")
	}
	return r, nil
}

// Product categories known to the catalog.
const (
	CategoryMotors       = "motors"
	CategoryDrives       = "drives"
	CategorySoftstarters = "softstarters"
	CategoryPanels       = "panels"
	CategoryGenerators   = "generators"
	CategoryTransformers = "transformers"
)

// AllCategories is the full category set, in display order.
var AllCategories = []string{
	CategoryMotors,
	CategoryDrives,
	CategorySoftstarters,
	CategoryPanels,
	CategoryGenerators,
	CategoryTransformers,
}

// ValidateCategories rejects ids outside AllCategories. Expects normalised
// input.
func ValidateCategories(ids []string) error {
	var unknown []string
	for _, id := range ids {
		if !slices.Contains(AllCategories, id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return Validationf("unknown categories: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Action is something a principal may attempt.
type Action string

const (
	ActionView        Action = "view"
	ActionEdit        Action = "edit"
	ActionDelete      Action = "delete"
	ActionManageUsers Action = "manage_users"
	ActionExportData  Action = "export_data"
)

// Policy is one row of the static permission table.
type Policy struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	View           []string `json:"view"`
	Edit           []string `json:"edit"`
	Delete         []string `json:"delete"`
	CanManageUsers bool     `json:"manageUsers"`
	CanExportData  bool     `json:"exportData"`
}

// PolicyFor returns the table entry for role. The returned slices are copies.
func PolicyFor(role Role) (Policy, bool) {
	var p Policy
	switch role {
	case RoleAdmin:
		p = Policy{
			Name:           "Administrator",
			Description:    "Full system access",
			View:           AllCategories,
			Edit:           AllCategories,
			Delete:         AllCategories,
			CanManageUsers: true,
			CanExportData:  true,
		}
	case RoleEngineer:
		technical := []string{CategoryMotors, CategoryDrives, CategorySoftstarters}
		p = Policy{
			Name:          "Engineer",
			Description:   "Full technical access",
			View:          technical,
			Edit:          technical,
			CanExportData: true,
		}
	case RoleSales:
		p = Policy{
			Name:        "Sales",
			Description: "Commercial access",
			View:        []string{CategoryMotors, CategoryDrives, CategoryPanels},
		}
	case RoleGuest:
		p = Policy{
			Name:        "Visitor",
			Description: "Limited access",
			View:        []string{CategoryMotors},
		}
	default:
		return Policy{}, false
	}
	p.View = slices.Clone(p.View)
	p.Edit = nonNil(slices.Clone(p.Edit))
	p.Delete = nonNil(slices.Clone(p.Delete))
	return p, true
}

// Principal is whatever carries authorization data: a stored user or the
// claims of a verified token.
type Principal struct {
	Role              Role
	AllowedCategories []string
}

// ResolveAccessibleCategories returns the override when one is set and the
// role's default view set otherwise. Unknown roles resolve to nothing.
func ResolveAccessibleCategories(p Principal) []string {
	if len(p.AllowedCategories) > 0 {
		return slices.Clone(p.AllowedCategories)
	}
	policy, ok := PolicyFor(p.Role)
	if !ok {
		return []string{}
	}
	return policy.View
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true, Reason: "permission granted"} }

func deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Err converts a denial into an ErrForbidden carrying the reason.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
}

// Authorize checks action against the permission table. resource is a
// category id for view/edit/delete and ignored for global actions.
func Authorize(p Principal, action Action, resource string) Decision {
	policy, ok := PolicyFor(p.Role)
	if !ok {
		return deny("invalid user role")
	}

	switch action {
	case ActionView:
		return scoped(action, ResolveAccessibleCategories(p), resource)
	case ActionEdit:
		return scoped(action, policy.Edit, resource)
	case ActionDelete:
		return scoped(action, policy.Delete, resource)
	case ActionManageUsers:
		if !policy.CanManageUsers {
			return deny("you don't have permission to manage users")
		}
		return allow()
	case ActionExportData:
		if !policy.CanExportData {
			return deny("you don't have permission to export data")
		}
		return allow()
	}
	return deny("action not recognized")
}

// scoped allows a resource-scoped action when the resource is in set. With
// no resource it is allowed as long as the set grants anything at all.
func scoped(action Action, set []string, resource string) Decision {
	resource = strings.ToLower(strings.TrimSpace(resource))
	if resource == "" {
		if len(set) == 0 {
			return deny("you don't have permission to %s any category", action)
		}
		return allow()
	}
	if !slices.Contains(set, resource) {
		return deny("you don't have permission to %s %s", action, resource)
	}
	return allow()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
