package sqldb

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/core"
)

type project struct {
	id          int
	title       string
	description string
	createdBy   int
	tsCreated   int64
}

func (p *project) ID() int {
	return p.id
}

func (p *project) Title() string {
	return p.title
}

func (p *project) Description() string {
	return p.description
}

func (p *project) CreatedBy() int {
	return p.createdBy
}

func (p *project) TsCreated() int64 {
	return p.tsCreated
}

// ProjectDB stores projects and owns the provisioning and teardown
// transactions, which span the group, permission and content tables.
type ProjectDB struct {
	*sql.DB
	groups *GroupDB // GroupsOf returns its group type

	countOf        *sql.Stmt
	get            *sql.Stmt
	getByTitle     *sql.Stmt
	getCreatedBy   *sql.Stmt
	getOf          *sql.Stmt
	groupsOf       *sql.Stmt
	insert         *sql.Stmt
	setDescription *sql.Stmt
	setTitle       *sql.Stmt

	// provisioning
	attachGrp  *sql.Stmt
	grantPerm  *sql.Stmt
	insertGrp  *sql.Stmt
	insertPerm *sql.Stmt
	joinGrp    *sql.Stmt
	permExists *sql.Stmt

	// teardown
	delete            *sql.Stmt
	deleteAttachments *sql.Stmt
	deleteDiscussions *sql.Stmt
	deleteGrp         *sql.Stmt
	deleteMessages    *sql.Stmt
	deletePerm        *sql.Stmt
	deleteTasks       *sql.Stmt
	detachGrps        *sql.Stmt
	revokeGrpPerms    *sql.Stmt
	vacateGrp         *sql.Stmt
}

// NewProjectDB prepares statements against the group, permission and content
// tables as well, construct it after the other stores.
func NewProjectDB(db *sql.DB, groups *GroupDB) *ProjectDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS project (
			id INTEGER PRIMARY KEY,
			title varchar(255) NOT NULL,
			description varchar(255) NOT NULL DEFAULT '',
			createdBy int(11) NOT NULL,
			tsCreated int(11) NOT NULL,
			UNIQUE(title)
		);
		CREATE TABLE IF NOT EXISTS project_grp (
			project int(11) NOT NULL,
			grp int(11) NOT NULL,
			PRIMARY KEY (project, grp)
		);`)

	var projectDB = &ProjectDB{}
	projectDB.DB = db
	projectDB.groups = groups

	projectDB.countOf = mustPrepare(db, `
		SELECT COUNT(DISTINCT project.id) FROM project, project_grp, membership
		WHERE project_grp.project = project.id AND project_grp.grp = membership.grp AND membership.usr = ?`)
	projectDB.get = mustPrepare(db, "SELECT title, description, createdBy, tsCreated FROM project WHERE id = ? LIMIT 1")
	projectDB.getByTitle = mustPrepare(db, "SELECT id, description, createdBy, tsCreated FROM project WHERE title = ? LIMIT 1")
	projectDB.getCreatedBy = mustPrepare(db, "SELECT id, title, description, tsCreated FROM project WHERE createdBy = ? ORDER BY id")
	projectDB.getOf = mustPrepare(db, `
		SELECT DISTINCT project.id, project.title, project.description, project.createdBy, project.tsCreated
		FROM project, project_grp, membership
		WHERE project_grp.project = project.id AND project_grp.grp = membership.grp AND membership.usr = ?
		ORDER BY project.title LIMIT ? OFFSET ?`)
	projectDB.groupsOf = mustPrepare(db, "SELECT grp.id, grp.name FROM grp, project_grp WHERE grp.id = project_grp.grp AND project_grp.project = ? ORDER BY grp.name")
	projectDB.insert = mustPrepare(db, "INSERT INTO project (title, description, createdBy, tsCreated) VALUES (?, ?, ?, ?)")
	projectDB.setDescription = mustPrepare(db, "UPDATE project SET description = ? WHERE id = ?")
	projectDB.setTitle = mustPrepare(db, "UPDATE project SET title = ? WHERE id = ?")

	projectDB.attachGrp = mustPrepare(db, "INSERT INTO project_grp (project, grp) VALUES (?, ?)")
	projectDB.grantPerm = mustPrepare(db, "INSERT INTO grp_permission (grp, permission) VALUES (?, ?)")
	projectDB.insertGrp = mustPrepare(db, "INSERT INTO grp (name) VALUES (?)")
	projectDB.insertPerm = mustPrepare(db, "INSERT INTO permission (codename, name, contentType) VALUES (?, ?, ?)")
	projectDB.joinGrp = mustPrepare(db, "INSERT INTO membership (grp, usr) VALUES (?, ?)")
	projectDB.permExists = mustPrepare(db, "SELECT id FROM permission WHERE codename = ? LIMIT 1")

	projectDB.delete = mustPrepare(db, "DELETE FROM project WHERE id = ?")
	projectDB.deleteAttachments = mustPrepare(db, "DELETE FROM attachment WHERE project = ?")
	projectDB.deleteDiscussions = mustPrepare(db, "DELETE FROM discussion WHERE project = ?")
	projectDB.deleteGrp = mustPrepare(db, "DELETE FROM grp WHERE id = ?")
	projectDB.deleteMessages = mustPrepare(db, "DELETE FROM discussion_message WHERE discussion IN (SELECT id FROM discussion WHERE project = ?)")
	projectDB.deletePerm = mustPrepare(db, "DELETE FROM permission WHERE codename = ?")
	projectDB.deleteTasks = mustPrepare(db, "DELETE FROM task WHERE project = ?")
	projectDB.detachGrps = mustPrepare(db, "DELETE FROM project_grp WHERE project = ?")
	projectDB.revokeGrpPerms = mustPrepare(db, "DELETE FROM grp_permission WHERE grp = ?")
	projectDB.vacateGrp = mustPrepare(db, "DELETE FROM membership WHERE grp = ?")

	return projectDB
}

func (db *ProjectDB) Writeable() bool {
	return true
}

// InsertProject persists the project and provisions its roles and
// permissions in one transaction. A failing step rolls everything back.
func (db *ProjectDB) InsertProject(title, description string, creator core.DBUser) (core.DBProject, error) {

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	res, err := tx.Stmt(db.insert).Exec(title, description, creator.ID(), time.Now().Unix())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var p = &project{
		id:          int(id),
		title:       title,
		description: description,
		createdBy:   creator.ID(),
		tsCreated:   time.Now().Unix(),
	}

	if err := db.provision(tx, p, creator); err != nil {
		tx.Rollback()
		return nil, err
	}

	return p, tx.Commit()
}

// Provision creates the project's member and admin groups and view and
// change permissions and joins the creator to both groups. It is a no-op if
// the view permission already exists.
func (db *ProjectDB) Provision(p core.DBProject, creator core.DBUser) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := db.provision(tx, p, creator); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *ProjectDB) provision(tx *sql.Tx, p core.DBProject, creator core.DBUser) error {

	// idempotency guard
	var permID int
	switch err := tx.Stmt(db.permExists).QueryRow(core.ViewPermission(p.ID())).Scan(&permID); err {
	case sql.ErrNoRows:
		// not provisioned yet
	case nil:
		return nil
	default:
		return err
	}

	adminRes, err := tx.Stmt(db.insertGrp).Exec(core.AdminGroupName(p.ID()))
	if err != nil {
		return err
	}
	adminID, err := adminRes.LastInsertId()
	if err != nil {
		return err
	}

	memberRes, err := tx.Stmt(db.insertGrp).Exec(core.MemberGroupName(p.ID()))
	if err != nil {
		return err
	}
	memberID, err := memberRes.LastInsertId()
	if err != nil {
		return err
	}

	for _, groupID := range []int64{adminID, memberID} {
		if _, err := tx.Stmt(db.attachGrp).Exec(p.ID(), groupID); err != nil {
			return err
		}
	}

	// display names carry the id, not the title, which can be renamed
	viewRes, err := tx.Stmt(db.insertPerm).Exec(core.ViewPermission(p.ID()), "Can view "+strconv.Itoa(p.ID()), core.ContentTypeProject)
	if err != nil {
		return err
	}
	viewID, err := viewRes.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.Stmt(db.grantPerm).Exec(memberID, viewID); err != nil {
		return err
	}

	changeRes, err := tx.Stmt(db.insertPerm).Exec(core.ChangePermission(p.ID()), "Can change "+strconv.Itoa(p.ID()), core.ContentTypeProject)
	if err != nil {
		return err
	}
	changeID, err := changeRes.LastInsertId()
	if err != nil {
		return err
	}
	if _, err := tx.Stmt(db.grantPerm).Exec(adminID, changeID); err != nil {
		return err
	}

	for _, groupID := range []int64{adminID, memberID} {
		if _, err := tx.Stmt(db.joinGrp).Exec(groupID, creator.ID()); err != nil {
			return err
		}
	}

	return nil
}

// DeleteProject removes the project's groups and permissions, then the
// project and its discussions, messages, tasks and attachment records, all in
// one transaction.
func (db *ProjectDB) DeleteProject(p core.DBProject) error {

	groups, err := db.GroupsOf(p)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for _, g := range groups {
		for _, stmt := range []*sql.Stmt{db.revokeGrpPerms, db.vacateGrp, db.deleteGrp} {
			if _, err := tx.Stmt(stmt).Exec(g.ID()); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	for _, codename := range []string{core.ViewPermission(p.ID()), core.ChangePermission(p.ID())} {
		if _, err := tx.Stmt(db.deletePerm).Exec(codename); err != nil {
			tx.Rollback()
			return err
		}
	}

	for _, stmt := range []*sql.Stmt{db.detachGrps, db.deleteMessages, db.deleteDiscussions, db.deleteTasks, db.deleteAttachments, db.delete} {
		if _, err := tx.Stmt(stmt).Exec(p.ID()); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetProject may return sql.ErrNoRows.
func (db *ProjectDB) GetProject(id int) (core.DBProject, error) {
	var p = &project{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&p.title, &p.description, &p.createdBy, &p.tsCreated)
	return p, err
}

func (db *ProjectDB) GetProjectByTitle(title string) (core.DBProject, error) {
	var p = &project{
		title: title,
	}
	err := db.getByTitle.QueryRow(title).Scan(&p.id, &p.description, &p.createdBy, &p.tsCreated)
	return p, err
}

func (db *ProjectDB) GetProjectsOf(u core.DBUser, limit, offset int) ([]core.DBProject, error) {

	rows, err := db.getOf.Query(u.ID(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects = []core.DBProject{}

	for rows.Next() {
		var p = &project{}
		if err := rows.Scan(&p.id, &p.title, &p.description, &p.createdBy, &p.tsCreated); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, nil
}

func (db *ProjectDB) GetProjectsCreatedBy(u core.DBUser) ([]core.DBProject, error) {

	rows, err := db.getCreatedBy.Query(u.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects = []core.DBProject{}

	for rows.Next() {
		var p = &project{
			createdBy: u.ID(),
		}
		if err := rows.Scan(&p.id, &p.title, &p.description, &p.tsCreated); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, nil
}

func (db *ProjectDB) CountProjectsOf(u core.DBUser) (int, error) {
	var count int
	err := db.countOf.QueryRow(u.ID()).Scan(&count)
	return count, err
}

// GroupsOf returns the groups attached to the project, the member group and
// the admin group for a provisioned project.
func (db *ProjectDB) GroupsOf(p core.DBProject) ([]core.DBGroup, error) {

	rows, err := db.groupsOf.Query(p.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups = []core.DBGroup{}

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		groups = append(groups, &group{db: db.groups, id: id, name: name})
	}

	return groups, nil
}

func (db *ProjectDB) SetTitle(p core.DBProject, title string) error {
	if _, err := db.setTitle.Exec(title, p.ID()); err != nil {
		return err
	}
	p.(*project).title = title
	return nil
}

func (db *ProjectDB) SetDescription(p core.DBProject, description string) error {
	if _, err := db.setDescription.Exec(description, p.ID()); err != nil {
		return err
	}
	p.(*project).description = description
	return nil
}
