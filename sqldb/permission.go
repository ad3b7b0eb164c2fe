package sqldb

import (
	"database/sql"

	"github.com/DNSK-LINK/basecamp-replica/core"
)

type permission struct {
	id          int
	codename    string
	name        string
	contentType string
}

func (p *permission) ID() int {
	return p.id
}

func (p *permission) Codename() string {
	return p.codename
}

func (p *permission) Name() string {
	return p.name
}

func (p *permission) ContentType() string {
	return p.contentType
}

// PermissionDB answers permission queries. Permission rows and grants are
// inserted and deleted by ProjectDB, which provisions them together with
// their project.
type PermissionDB struct {
	*sql.DB
	get *sql.Stmt
	has *sql.Stmt
}

func NewPermissionDB(db *sql.DB) *PermissionDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS permission (
			id INTEGER PRIMARY KEY,
			codename varchar(64) NOT NULL,
			name varchar(128) NOT NULL,
			contentType varchar(32) NOT NULL,
			UNIQUE(codename)
		);
		CREATE TABLE IF NOT EXISTS grp_permission (
			grp int(11) NOT NULL,
			permission int(11) NOT NULL,
			PRIMARY KEY (grp, permission)
		);`)

	var permissionDB = &PermissionDB{}
	permissionDB.DB = db
	permissionDB.get = mustPrepare(db, "SELECT id, name, contentType FROM permission WHERE codename = ? LIMIT 1")
	permissionDB.has = mustPrepare(db, `
		SELECT COUNT(1) FROM permission, grp_permission, membership
		WHERE permission.id = grp_permission.permission
		AND grp_permission.grp = membership.grp
		AND membership.usr = ? AND permission.codename = ?`)
	return permissionDB
}

func (db *PermissionDB) Writeable() bool {
	return true
}

func (db *PermissionDB) GetPermission(codename string) (core.DBPermission, error) {
	var p = &permission{
		codename: codename,
	}
	return p, db.get.QueryRow(codename).Scan(&p.id, &p.name, &p.contentType)
}

// HasPermission reports whether any group the user belongs to holds the permission.
func (db *PermissionDB) HasPermission(u core.DBUser, codename string) (bool, error) {
	var count int
	if err := db.has.QueryRow(u.ID(), codename).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
