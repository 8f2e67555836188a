package domain

import "github.com/shopspring/decimal"

// Role is the resolved posting role of an actor.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleAccountant    Role = "ACCOUNTANT"
	RoleAuditor       Role = "AUDITOR"
	RoleSalesperson   Role = "SALESPERSON"
)

// Well-known permission names checked during role resolution.
const (
	PermClosePeriods  = "periods:close"
	PermReopenPeriods = "periods:reopen"
	PermViewAuditLog  = "audit:view"
	PermCreateEntries = "entries:create"
	PermVoidEntries   = "entries:void"
)

// Actor is the authenticated principal behind an operation. Identity and
// permission resolution happen outside the core; the core only consumes the
// resulting value, passed explicitly with every call.
type Actor struct {
	ActorID     string          `json:"actorID"`
	Name        string          `json:"name"`
	IsSuperuser bool            `json:"isSuperuser"`
	Permissions map[string]bool `json:"permissions"`
}

// HasPermission reports whether the actor carries the named permission.
// Superusers implicitly hold every permission.
func (a Actor) HasPermission(name string) bool {
	if a.IsSuperuser {
		return true
	}
	return a.Permissions[name]
}

// ResolveRole maps the actor's permission set onto a posting role. Unknown
// combinations fall back to Salesperson, the most restrictive role.
func (a Actor) ResolveRole() Role {
	switch {
	case a.IsSuperuser:
		return RoleAdministrator
	case a.HasPermission(PermClosePeriods):
		return RoleAccountant
	case a.HasPermission(PermViewAuditLog) && !a.HasPermission(PermCreateEntries):
		return RoleAuditor
	default:
		return RoleSalesperson
	}
}

// RoleLimit is the posting envelope granted to one role.
type RoleLimit struct {
	AllowedTypes []EntryType      // nil means every type
	MaxAmount    *decimal.Decimal // nil means unlimited
}

// roleLimits mirrors the regulatory posting matrix: salespeople may only post
// sales up to 5M, accountants most types up to 50M, auditors are read-only and
// administrators are unrestricted.
var roleLimits = map[Role]RoleLimit{
	RoleSalesperson: {
		AllowedTypes: []EntryType{EntrySale},
		MaxAmount:    decimalPtr(decimal.NewFromInt(5_000_000)),
	},
	RoleAccountant: {
		AllowedTypes: []EntryType{EntrySale, EntryPurchase, EntryAdjustment, EntryPayroll, EntryManual},
		MaxAmount:    decimalPtr(decimal.NewFromInt(50_000_000)),
	},
	RoleAuditor: {
		AllowedTypes: []EntryType{},
		MaxAmount:    decimalPtr(decimal.Zero),
	},
	RoleAdministrator: {
		AllowedTypes: nil,
		MaxAmount:    nil,
	},
}

// LimitForRole returns the posting envelope for a role. Unknown roles get the
// Salesperson envelope.
func LimitForRole(r Role) RoleLimit {
	if l, ok := roleLimits[r]; ok {
		return l
	}
	return roleLimits[RoleSalesperson]
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
