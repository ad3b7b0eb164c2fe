package core

import (
	"database/sql"
	"fmt"
	"strings"
)

const MaxFieldLen = 255

// ValidationError is a user-facing rejection of a form input. It is rendered
// as a notification, not treated as a server failure.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

type DBProject interface {
	ID() int
	Title() string
	Description() string
	CreatedBy() int // user id
	TsCreated() int64
}

type ProjectDB interface {
	// InsertProject persists a project and provisions its two groups and two
	// permissions in one transaction.
	InsertProject(title, description string, creator DBUser) (DBProject, error)
	// Provision is idempotent. InsertProject calls it, callers normally don't.
	Provision(p DBProject, creator DBUser) error
	DeleteProject(p DBProject) error
	GetProject(id int) (DBProject, error)
	GetProjectByTitle(title string) (DBProject, error)
	GetProjectsOf(u DBUser, limit, offset int) ([]DBProject, error)
	GetProjectsCreatedBy(u DBUser) ([]DBProject, error)
	CountProjectsOf(u DBUser) (int, error)
	GroupsOf(p DBProject) ([]DBGroup, error)
	SetTitle(p DBProject, title string) error
	SetDescription(p DBProject, description string) error
	Writeable() bool
}

// CreateProject validates, persists and provisions a project.
func (c *CoreDB) CreateProject(title, description string, creator DBUser) (DBProject, error) {

	title = strings.TrimSpace(title)
	if creator == nil {
		return nil, ValidationError("creator does not exist")
	}
	if err := c.checkTitle(title, 0); err != nil {
		return nil, err
	}
	if len(description) > MaxFieldLen {
		return nil, ValidationError("description is too long")
	}

	return c.ProjectDB.InsertProject(title, description, creator)
}

// SetTitle shadows ProjectDB.SetTitle.
func (c *CoreDB) SetTitle(p DBProject, title string) error {
	title = strings.TrimSpace(title)
	if err := c.checkTitle(title, p.ID()); err != nil {
		return err
	}
	return c.ProjectDB.SetTitle(p, title)
}

// SetDescription shadows ProjectDB.SetDescription.
func (c *CoreDB) SetDescription(p DBProject, description string) error {
	if len(description) > MaxFieldLen {
		return ValidationError("description is too long")
	}
	return c.ProjectDB.SetDescription(p, description)
}

// checkTitle reports length violations and duplicate titles. selfID is
// excluded from the duplicate check, so a project can keep its own title.
func (c *CoreDB) checkTitle(title string, selfID int) error {
	if title == "" {
		return ValidationError("title must not be empty")
	}
	if len(title) > MaxFieldLen {
		return ValidationError("title is too long")
	}
	if existing, err := c.ProjectDB.GetProjectByTitle(title); err == nil {
		if existing.ID() != selfID {
			return ValidationError(fmt.Sprintf("project %s already exists", title))
		}
	} else if err != sql.ErrNoRows {
		return err
	}
	return nil
}
