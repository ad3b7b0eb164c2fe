package backend

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/sqldb"
	"github.com/DNSK-LINK/basecamp-replica/sqldb/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *core.CoreDB) {
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

	srv := httptest.NewServer(db.SessionManager.LoadAndSave(NewRouter(db, "")))
	t.Cleanup(srv.Close)

	return srv, db
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doLogin(t *testing.T, client *http.Client, srv *httptest.Server, username, password string) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	resp.Body.Close()
}

func get(t *testing.T, client *http.Client, rawurl string, header http.Header) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	require.NoError(t, err)
	for key, values := range header {
		req.Header[key] = values
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestUserinfoSelfOnly(t *testing.T) {

	srv, db := newTestServer(t)

	alice, err := db.Register("alice", "Alice", "Armstrong", "alice@example.com", "secret")
	require.NoError(t, err)
	bob, err := db.Register("bob", "", "", "bob@example.com", "secret")
	require.NoError(t, err)

	client := newClient(t)
	doLogin(t, client, srv, "bob", "secret")

	// other profiles are private, names and mail must not leak
	_, body := get(t, client, srv.URL+"/userinfo/"+strconv.Itoa(alice.ID()), nil)
	require.NotContains(t, body, "alice@example.com")
	require.NotContains(t, body, "Armstrong")
	require.Contains(t, body, core.ErrDenied.Error())

	// the own profile renders
	_, body = get(t, client, srv.URL+"/userinfo/"+strconv.Itoa(bob.ID()), nil)
	require.Contains(t, body, "bob@example.com")
}

func TestProjectAccessOverHTTP(t *testing.T) {

	srv, db := newTestServer(t)

	alice, err := db.Register("alice", "", "", "", "secret")
	require.NoError(t, err)
	bob, err := db.Register("bob", "", "", "", "secret")
	require.NoError(t, err)

	p, err := db.CreateProject("Apollo", "moon landing", alice)
	require.NoError(t, err)

	client := newClient(t)
	doLogin(t, client, srv, "bob", "secret")

	projectURL := srv.URL + "/project/" + strconv.Itoa(p.ID())

	// not a member, the project must look nonexistent
	_, body := get(t, client, projectURL, nil)
	require.NotContains(t, body, "Apollo")
	require.Contains(t, body, core.ErrDenied.Error())

	require.NoError(t, db.ChangeMembership(p, bob, core.AddMember))
	_, body = get(t, client, projectURL, nil)
	require.Contains(t, body, "Apollo")
}

func TestDateFormatFollowsAcceptLanguage(t *testing.T) {

	srv, db := newTestServer(t)

	_, err := db.Register("alice", "", "", "", "secret")
	require.NoError(t, err)
	alice, err := db.GetUserByName("alice")
	require.NoError(t, err)

	p, err := db.CreateProject("Apollo", "", alice)
	require.NoError(t, err)

	client := newClient(t)
	doLogin(t, client, srv, "alice", "secret")

	projectURL := srv.URL + "/project/" + strconv.Itoa(p.ID())

	_, body := get(t, client, projectURL, nil)
	require.Contains(t, body, time.Unix(p.TsCreated(), 0).Format("January 2, 2006"))

	_, body = get(t, client, projectURL, http.Header{"Accept-Language": {"de-DE"}})
	require.Contains(t, body, "Uhr")
}
