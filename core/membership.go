package core

import (
	"fmt"
	"strings"
)

type MembershipAction int

const (
	AddMember MembershipAction = iota
	PromoteToAdmin
	RemoveMember
	DemoteAdmin
)

// ProjectGroups resolves the exactly-one member group and exactly-one admin
// group of a provisioned project. The admin group is the attached group whose
// name carries the admin suffix.
func (c *CoreDB) ProjectGroups(p DBProject) (member DBGroup, admin DBGroup, err error) {

	groups, err := c.ProjectDB.GroupsOf(p)
	if err != nil {
		return nil, nil, err
	}

	for _, g := range groups {
		if strings.HasSuffix(g.Name(), AdminSuffix) {
			admin = g
		} else {
			member = g
		}
	}

	if member == nil || admin == nil {
		return nil, nil, fmt.Errorf("project %d is not provisioned", p.ID())
	}

	return member, admin, nil
}

// ChangeMembership mutates the target user's role in a project.
//
// Removing or demoting the project's creator is a silent no-op (owner
// immunity). Adding and promoting carry no such guard, the owner can grant
// themselves roles but never lose them.
func (c *CoreDB) ChangeMembership(p DBProject, target DBUser, action MembershipAction) error {

	member, admin, err := c.ProjectGroups(p)
	if err != nil {
		return err
	}

	switch action {
	case AddMember:
		return c.join(member, target)
	case PromoteToAdmin:
		if err := c.join(member, target); err != nil {
			return err
		}
		return c.join(admin, target)
	case RemoveMember:
		if target.ID() == p.CreatedBy() {
			return nil
		}
		if err := c.leave(admin, target); err != nil {
			return err
		}
		return c.leave(member, target)
	default: // DemoteAdmin
		if target.ID() == p.CreatedBy() {
			return nil
		}
		return c.leave(admin, target)
	}
}

// Members returns the users holding the member role of a project.
func (c *CoreDB) Members(p DBProject) ([]DBUser, error) {

	member, _, err := c.ProjectGroups(p)
	if err != nil {
		return nil, err
	}

	return c.groupUsers(member)
}

// Admins returns the users holding the admin role of a project.
func (c *CoreDB) Admins(p DBProject) ([]DBUser, error) {

	_, admin, err := c.ProjectGroups(p)
	if err != nil {
		return nil, err
	}

	return c.groupUsers(admin)
}

func (c *CoreDB) groupUsers(g DBGroup) ([]DBUser, error) {

	memberIDs, err := g.Members()
	if err != nil {
		return nil, err
	}

	var users = []DBUser{}
	for id := range memberIDs { // map: user id -> interface{}
		u, err := c.GetUser(id)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}
