package core

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/filestore"
	"github.com/DNSK-LINK/basecamp-replica/upload"
	"github.com/alexedwards/scs/v2"
)

type CoreDB struct {
	AttachmentDB
	DiscussionDB
	GroupDB
	PermissionDB
	ProjectDB
	TaskDB
	UserDB
	SessionManager *scs.SessionManager
	Uploads        upload.Store

	SqlDB *sql.DB // exported because main closes it
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string, uploadDir string) error {

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"         // 'The default value is "/". Passing the empty string "" will result in it being set to the path that the cookie was issued from.'
	c.SessionManager.Cookie.Persist = false                 // Don't store cookie across browser sessions. Required for GDPR cookie consent exemption criterion B. https://ec.europa.eu/justice/article-29/documentation/opinion-recommendation/files/2012/wp194_en.pdf
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = 12 * time.Hour
	c.SessionManager.Lifetime = 720 * time.Hour

	c.Uploads = &filestore.Store{
		UploadDir: uploadDir,
	}

	return nil
}

// DeleteProject shadows ProjectDB.DeleteProject. It tears down the project's
// roles and permissions and deletes the project and all of its content in one
// transaction, then removes the attachment files from disk.
func (c *CoreDB) DeleteProject(p DBProject) error {

	attachments, err := c.GetAttachmentsOf(p)
	if err != nil {
		return err
	}

	if err := c.ProjectDB.DeleteProject(p); err != nil {
		return err
	}

	// database state is authoritative, leftover files are just garbage
	for _, a := range attachments {
		if err := c.Uploads.Remove(a.Path(), a.Filename()); err != nil {
			log.Printf("error removing attachment file %s/%s: %v", a.Path(), a.Filename(), err)
		}
	}

	return nil
}

// DeleteAccount deletes a user. Projects the user created are torn down
// first, roles and permissions included.
func (c *CoreDB) DeleteAccount(u DBUser) error {

	projects, err := c.GetProjectsCreatedBy(u)
	if err != nil {
		return err
	}

	for _, p := range projects {
		if err := c.DeleteProject(p); err != nil {
			return err
		}
	}

	if err := c.GroupDB.LeaveAll(u); err != nil {
		return err
	}

	return c.UserDB.Delete(u)
}
