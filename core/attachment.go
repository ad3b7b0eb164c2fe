package core

import (
	"io"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/upload"
)

type DBAttachment interface {
	ID() int
	Path() string // upload folder, like "2022/05/10"
	Filename() string
	TsCreated() int64
	ProjectID() int
}

type AttachmentDB interface {
	InsertAttachment(p DBProject, path, filename string) (DBAttachment, error)
	GetAttachment(id int) (DBAttachment, error)
	GetAttachmentsOf(p DBProject) ([]DBAttachment, error)
	Writeable() bool
}

// AddAttachment stores the uploaded file under today's upload folder and
// records it. The stored filename may differ from the submitted one if it
// would collide.
func (c *CoreDB) AddAttachment(p DBProject, filename string, src io.Reader) (DBAttachment, error) {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return nil, ValidationError(err.Error())
	}

	path, storedName, err := c.Uploads.Upload(time.Now(), filename, src)
	if err != nil {
		return nil, err
	}

	return c.AttachmentDB.InsertAttachment(p, path, storedName)
}
