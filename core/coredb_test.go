package core_test

import (
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/sqldb"
	"github.com/DNSK-LINK/basecamp-replica/sqldb/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *core.CoreDB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // the in-memory database lives in a single connection
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db := &core.CoreDB{}
	require.NoError(t, db.Init(sqlite3.NewSessionStore(sqlDB), "", t.TempDir()))

	db.AttachmentDB = sqldb.NewAttachmentDB(sqlDB)
	db.DiscussionDB = sqldb.NewDiscussionDB(sqlDB)
	groupDB := sqldb.NewGroupDB(sqlDB)
	db.GroupDB = groupDB
	db.PermissionDB = sqldb.NewPermissionDB(sqlDB)
	db.TaskDB = sqldb.NewTaskDB(sqlDB)
	db.UserDB = sqldb.NewUserDB(sqlDB)
	db.ProjectDB = sqldb.NewProjectDB(sqlDB, groupDB)
	db.SqlDB = sqlDB

	return db
}

func mustRegister(t *testing.T, db *core.CoreDB, username string) core.DBUser {
	t.Helper()
	u, err := db.Register(username, "", "", username+"@example.com", "secret")
	require.NoError(t, err)
	return u
}

func TestProvisioning(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "moon landing", alice)
	require.NoError(t, err)

	member, admin, err := db.ProjectGroups(p)
	require.NoError(t, err)
	require.Equal(t, core.MemberGroupName(p.ID()), member.Name())
	require.Equal(t, core.AdminGroupName(p.ID()), admin.Name())

	for _, g := range []core.DBGroup{member, admin} {
		has, err := g.HasMember(alice)
		require.NoError(t, err)
		require.True(t, has)
	}

	for _, codename := range []string{core.ViewPermission(p.ID()), core.ChangePermission(p.ID())} {
		perm, err := db.GetPermission(codename)
		require.NoError(t, err)
		require.Equal(t, core.ContentTypeProject, perm.ContentType())
	}

	// display names carry the id, renaming the project must not strand them
	require.NoError(t, db.SetTitle(p, "Apollo 11"))
	perm, err := db.GetPermission(core.ViewPermission(p.ID()))
	require.NoError(t, err)
	require.Equal(t, "Can view "+strconv.Itoa(p.ID()), perm.Name())

	require.True(t, db.CanView(alice, p.ID()))
	require.True(t, db.CanChange(alice, p.ID()))
}

func TestProvisionIdempotent(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	// the permission codenames are unique, so a second pass would fail if
	// the guard didn't skip it
	require.NoError(t, db.Provision(p, alice))

	groups, err := db.GroupsOf(p)
	require.NoError(t, err)
	require.Len(t, groups, 2)
}

func TestProvisionRollback(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	// occupy the next project's admin group name, the group insert during
	// provisioning will hit the UNIQUE constraint
	_, err = db.SqlDB.Exec("INSERT INTO grp (name) VALUES (?)", core.AdminGroupName(p.ID()+1))
	require.NoError(t, err)

	_, err = db.CreateProject("Gemini", "", alice)
	require.Error(t, err)

	// the failed provisioning must roll back the project row too
	_, err = db.GetProjectByTitle("Gemini")
	require.Equal(t, sql.ErrNoRows, err)
	require.False(t, db.CanView(alice, p.ID()+1))
}

func TestAccessControl(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")
	bob := mustRegister(t, db, "bob")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	require.False(t, db.CanView(bob, p.ID()))
	require.False(t, db.CanChange(bob, p.ID()))

	// nil user and unknown project look the same as missing permission
	require.False(t, db.CanView(nil, p.ID()))
	require.False(t, db.CanView(alice, 99999))
	require.False(t, db.CanChange(alice, 99999))
}

func TestMembership(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")
	bob := mustRegister(t, db, "bob")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	require.NoError(t, db.ChangeMembership(p, bob, core.AddMember))
	require.True(t, db.CanView(bob, p.ID()))
	require.False(t, db.CanChange(bob, p.ID()))

	// adding twice is fine
	require.NoError(t, db.ChangeMembership(p, bob, core.AddMember))

	require.NoError(t, db.ChangeMembership(p, bob, core.PromoteToAdmin))
	require.True(t, db.CanChange(bob, p.ID()))

	require.NoError(t, db.ChangeMembership(p, bob, core.DemoteAdmin))
	require.True(t, db.CanView(bob, p.ID()))
	require.False(t, db.CanChange(bob, p.ID()))

	require.NoError(t, db.ChangeMembership(p, bob, core.RemoveMember))
	require.False(t, db.CanView(bob, p.ID()))

	// removing an admin clears both roles
	require.NoError(t, db.ChangeMembership(p, bob, core.PromoteToAdmin))
	require.NoError(t, db.ChangeMembership(p, bob, core.RemoveMember))
	require.False(t, db.CanView(bob, p.ID()))
	require.False(t, db.CanChange(bob, p.ID()))
}

func TestOwnerImmunity(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	// removing or demoting the creator is a silent no-op
	require.NoError(t, db.ChangeMembership(p, alice, core.RemoveMember))
	require.True(t, db.CanView(alice, p.ID()))
	require.True(t, db.CanChange(alice, p.ID()))

	require.NoError(t, db.ChangeMembership(p, alice, core.DemoteAdmin))
	require.True(t, db.CanChange(alice, p.ID()))
}

func TestProjectValidation(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	_, err := db.CreateProject("", "", alice)
	require.IsType(t, core.ValidationError(""), err)

	_, err = db.CreateProject(strings.Repeat("a", 256), "", alice)
	require.IsType(t, core.ValidationError(""), err)

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	_, err = db.CreateProject("Apollo", "", alice)
	require.IsType(t, core.ValidationError(""), err)

	// a project can keep its own title
	require.NoError(t, db.SetTitle(p, "Apollo"))
	require.NoError(t, db.SetTitle(p, "Apollo 11"))

	q, err := db.CreateProject("Gemini", "", alice)
	require.NoError(t, err)
	require.IsType(t, core.ValidationError(""), db.SetTitle(q, "Apollo 11"))
}

func TestDiscussionsAndMessages(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	d, err := db.AddDiscussion(p, "  Launch window  ")
	require.NoError(t, err)
	require.Equal(t, "Launch window", d.Name())

	_, err = db.AddDiscussion(p, "   ")
	require.IsType(t, core.ValidationError(""), err)

	m, err := db.PostMessage(d, alice, `<script>alert(1)</script>go for launch`)
	require.NoError(t, err)
	require.Equal(t, "alert(1)go for launch", m.Text())
	require.Equal(t, "alice", m.Username())

	// the author name is a snapshot, renaming doesn't touch old messages
	require.NoError(t, db.SetInfo(alice, "alice2", "", "", alice.Mail()))
	messages, err := db.GetMessagesOf(d)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "alice", messages[0].Username())

	count, err := db.CountMessagesOf(p)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestTasks(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	task, err := db.AddTask(p, "stack the rocket")
	require.NoError(t, err)
	require.False(t, task.Solved())

	require.NoError(t, db.SetSolved(task, true))
	task, err = db.GetTask(task.ID())
	require.NoError(t, err)
	require.True(t, task.Solved())

	require.NoError(t, db.SetSolved(task, false))
	task, err = db.GetTask(task.ID())
	require.NoError(t, err)
	require.False(t, task.Solved())
}

func TestAttachments(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	a, err := db.AddAttachment(p, "flightplan.txt", strings.NewReader("T minus 10"))
	require.NoError(t, err)
	require.Equal(t, "flightplan.txt", a.Filename())

	src, err := db.Uploads.Open(a.Path(), a.Filename())
	require.NoError(t, err)
	src.Close()

	// same name again, the stored name must differ
	b, err := db.AddAttachment(p, "flightplan.txt", strings.NewReader("T minus 9"))
	require.NoError(t, err)
	require.NotEqual(t, a.Filename(), b.Filename())

	_, err = db.AddAttachment(p, "../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err) // filepath.Base strips the folders

	_, err = db.AddAttachment(p, "  ", strings.NewReader("nope"))
	require.IsType(t, core.ValidationError(""), err)
}

func TestDeleteProject(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	d, err := db.AddDiscussion(p, "Launch window")
	require.NoError(t, err)
	_, err = db.PostMessage(d, alice, "go for launch")
	require.NoError(t, err)
	_, err = db.AddTask(p, "stack the rocket")
	require.NoError(t, err)
	a, err := db.AddAttachment(p, "flightplan.txt", strings.NewReader("T minus 10"))
	require.NoError(t, err)

	require.NoError(t, db.DeleteProject(p))

	_, err = db.GetProject(p.ID())
	require.Equal(t, sql.ErrNoRows, err)

	// roles and permissions are gone
	_, err = db.GetGroupByName(core.MemberGroupName(p.ID()))
	require.Equal(t, sql.ErrNoRows, err)
	_, err = db.GetGroupByName(core.AdminGroupName(p.ID()))
	require.Equal(t, sql.ErrNoRows, err)
	_, err = db.GetPermission(core.ViewPermission(p.ID()))
	require.Equal(t, sql.ErrNoRows, err)
	_, err = db.GetPermission(core.ChangePermission(p.ID()))
	require.Equal(t, sql.ErrNoRows, err)

	require.False(t, db.CanView(alice, p.ID()))

	// content rows and files are gone
	discussions, err := db.GetDiscussionsOf(p)
	require.NoError(t, err)
	require.Empty(t, discussions)

	_, err = db.Uploads.Open(a.Path(), a.Filename())
	require.Error(t, err)
}

func TestDeleteAccount(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")
	bob := mustRegister(t, db, "bob")

	mine, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)
	require.NoError(t, db.ChangeMembership(mine, bob, core.AddMember))

	theirs, err := db.CreateProject("Gemini", "", bob)
	require.NoError(t, err)
	require.NoError(t, db.ChangeMembership(theirs, alice, core.AddMember))

	require.NoError(t, db.DeleteAccount(alice))

	_, err = db.GetUserByName("alice")
	require.Equal(t, sql.ErrNoRows, err)

	// alice's project is torn down, bob loses access to it
	_, err = db.GetProject(mine.ID())
	require.Equal(t, sql.ErrNoRows, err)
	require.False(t, db.CanView(bob, mine.ID()))

	// bob's project survives without alice
	members, err := db.Members(theirs)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "bob", members[0].Username())
}

func TestProjectListing(t *testing.T) {

	db := newTestDB(t)
	alice := mustRegister(t, db, "alice")
	bob := mustRegister(t, db, "bob")

	apollo, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)
	_, err = db.CreateProject("Gemini", "", alice)
	require.NoError(t, err)

	require.NoError(t, db.ChangeMembership(apollo, bob, core.AddMember))

	count, err := db.CountProjectsOf(bob)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	projects, err := db.GetProjectsOf(bob, 10, 0)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Apollo", projects[0].Title())

	count, err = db.CountProjectsOf(alice)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	created, err := db.GetProjectsCreatedBy(alice)
	require.NoError(t, err)
	require.Len(t, created, 2)
}

func TestRegisterAndLogin(t *testing.T) {

	db := newTestDB(t)

	_, err := db.Register("alice", "Alice", "Armstrong", "alice@example.com", "secret")
	require.NoError(t, err)

	_, err = db.Register("alice", "", "", "", "secret")
	require.IsType(t, core.ValidationError(""), err)

	_, err = db.Register("bob", "", "", "", "")
	require.Equal(t, core.ErrEmptyPassword, err)

	u, err := db.LoginUser("alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username())

	_, err = db.LoginUser("alice", "wrong")
	require.Equal(t, sqldb.ErrAuth, err)

	_, err = db.LoginUser("nobody", "secret")
	require.Equal(t, sqldb.ErrAuth, err)
}
