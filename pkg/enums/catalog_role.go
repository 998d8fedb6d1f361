package enums

import "fmt"

// CatalogRole is the permission level carried in access tokens.
type CatalogRole string

const (
	CatalogRoleAdmin  CatalogRole = "admin"
	CatalogRoleEditor CatalogRole = "editor"
	CatalogRoleViewer CatalogRole = "viewer"
)

var validCatalogRoles = []CatalogRole{
	CatalogRoleAdmin,
	CatalogRoleEditor,
	CatalogRoleViewer,
}

// String implements fmt.Stringer.
func (r CatalogRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CatalogRole.
func (r CatalogRole) IsValid() bool {
	for _, candidate := range validCatalogRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanWrite reports whether the role may mutate catalog data.
func (r CatalogRole) CanWrite() bool {
	return r == CatalogRoleAdmin || r == CatalogRoleEditor
}

// ParseCatalogRole converts raw input into a CatalogRole.
func ParseCatalogRole(value string) (CatalogRole, error) {
	for _, candidate := range validCatalogRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog role %q", value)
}
