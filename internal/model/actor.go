package model

// Role classifies a platform actor. Owners run business listings,
// visitors are regular directory users.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleVisitor Role = "visitor"
)

func (r Role) Valid() bool { return r == RoleOwner || r == RoleVisitor }
