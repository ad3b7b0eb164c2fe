package core

import "errors"

// ErrDenied covers both "not permitted" and "does not exist", so responses
// don't reveal which projects exist.
var ErrDenied = errors.New("access denied")

// AccessPolicy answers whether a user may see or modify a project. A
// nonexistent project id yields false, indistinguishable from a missing
// permission.
type AccessPolicy interface {
	CanView(u DBUser, projectID int) bool
	CanChange(u DBUser, projectID int) bool
}

func (c *CoreDB) CanView(u DBUser, projectID int) bool {
	return c.hasPermission(u, ViewPermission(projectID))
}

func (c *CoreDB) CanChange(u DBUser, projectID int) bool {
	return c.hasPermission(u, ChangePermission(projectID))
}

func (c *CoreDB) hasPermission(u DBUser, codename string) bool {
	if u == nil {
		return false
	}
	has, err := c.PermissionDB.HasPermission(u, codename)
	if err != nil {
		return false
	}
	return has
}
