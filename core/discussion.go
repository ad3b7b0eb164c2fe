package core

import (
	"strings"

	"github.com/DNSK-LINK/basecamp-replica/util"
)

type DBDiscussion interface {
	ID() int
	Name() string
	TsCreated() int64
	ProjectID() int
}

type DBMessage interface {
	ID() int
	Username() string // snapshot of the author's name at posting time
	Text() string
	TsCreated() int64
	DiscussionID() int
}

type DiscussionDB interface {
	InsertDiscussion(p DBProject, name string) (DBDiscussion, error)
	GetDiscussion(id int) (DBDiscussion, error)
	GetDiscussionsOf(p DBProject) ([]DBDiscussion, error)
	InsertMessage(d DBDiscussion, username, text string) (DBMessage, error)
	GetMessagesOf(d DBDiscussion) ([]DBMessage, error)
	CountMessagesOf(p DBProject) (int, error)
	Writeable() bool
}

// AddDiscussion shadows DiscussionDB.InsertDiscussion.
func (c *CoreDB) AddDiscussion(p DBProject, name string) (DBDiscussion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("discussion name must not be empty")
	}
	if len(name) > MaxFieldLen {
		return nil, ValidationError("discussion name is too long")
	}
	return c.DiscussionDB.InsertDiscussion(p, name)
}

// PostMessage records a message under the author's current username. The
// username is stored as text, renaming or deleting the author later leaves
// the attribution as it was at posting time.
func (c *CoreDB) PostMessage(d DBDiscussion, author DBUser, text string) (DBMessage, error) {
	text = strings.TrimSpace(util.StripTags(text))
	if text == "" {
		return nil, ValidationError("message must not be empty")
	}
	if len(text) > MaxFieldLen {
		return nil, ValidationError("message is too long")
	}
	return c.DiscussionDB.InsertMessage(d, author.Username(), text)
}
