// Package policy decides whether a principal may read or write an invoice.
// It is pure: no I/O, no errors, the same inputs always yield the same answer.
package policy

import (
	"strings"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
)

// Identity is what the token layer vouches for: an email and a role name.
type Identity struct {
	Email string
	Role  string
}

// Principal is the acting user for one request, resolved against the users
// table so that the role reflects the stored value.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

// FromUser builds a Principal from a loaded user row. The Role relation must
// be preloaded.
func FromUser(u *model.User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role.Name}
}

func (p Principal) is(role string) bool { return strings.EqualFold(p.Role, role) }

// IsSuperuser reports whether p carries the SUPERUSER role.
func (p Principal) IsSuperuser() bool { return p.is(model.RoleSuperuser) }

// IsAuditor reports whether p carries the AUDITOR role.
func (p Principal) IsAuditor() bool { return p.is(model.RoleAuditor) }

// Owns reports whether p owns inv.
func (p Principal) Owns(inv *model.Invoice) bool {
	return inv != nil && p.UserID != 0 && inv.UserID == p.UserID
}

// CanRead: SUPERUSER, AUDITOR, or the owner.
func CanRead(p Principal, inv *model.Invoice) bool {
	return p.IsSuperuser() || p.IsAuditor() || p.Owns(inv)
}

// CanWrite: SUPERUSER or the owner. AUDITOR never writes. Whether the invoice
// is soft-deleted is checked by the caller.
func CanWrite(p Principal, inv *model.Invoice) bool {
	if p.IsAuditor() {
		return false
	}
	return p.IsSuperuser() || p.Owns(inv)
}

// CanBrowseAll gates listing every invoice in the system.
func CanBrowseAll(p Principal) bool {
	return p.IsSuperuser() || p.IsAuditor()
}

// CanAdminister gates user administration and acting on behalf of others.
func CanAdminister(p Principal) bool {
	return p.IsSuperuser()
}
