package entities

// Role is the subject a permission is granted to or withheld from
type Role interface {
	Identifier() string
}

// Resource is the object a permission protects
type Resource interface {
	Identifier() string
}

// RoleID is a Role identified only by its key
type RoleID string

// Identifier returns the role key
func (r RoleID) Identifier() string {
	return string(r)
}

// ResourceID is a Resource identified only by its key
type ResourceID string

// Identifier returns the resource key
func (r ResourceID) Identifier() string {
	return string(r)
}
