package core

import "strconv"

// A project's roles and permissions follow a naming convention keyed on the
// project id: the member group is named "<id>", the admin group "<id>-admin",
// the permissions "view_<id>" and "change_<id>". The project_grp table links
// groups to their project explicitly, the names exist for display and for
// telling the member group from the admin group.

const AdminSuffix = "-admin"

const ContentTypeProject = "project"

func MemberGroupName(projectID int) string {
	return strconv.Itoa(projectID)
}

func AdminGroupName(projectID int) string {
	return strconv.Itoa(projectID) + AdminSuffix
}

func ViewPermission(projectID int) string {
	return "view_" + strconv.Itoa(projectID)
}

func ChangePermission(projectID int) string {
	return "change_" + strconv.Itoa(projectID)
}

type DBPermission interface {
	ID() int
	Codename() string
	Name() string
	ContentType() string
}

// Permissions are created and deleted along with their project, see
// ProjectDB, so PermissionDB only answers queries.
type PermissionDB interface {
	GetPermission(codename string) (DBPermission, error)
	HasPermission(u DBUser, codename string) (bool, error)
	Writeable() bool
}
