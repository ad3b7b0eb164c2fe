package sqldb

import (
	"database/sql"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/core"
)

type attachment struct {
	id        int
	path      string
	filename  string
	tsCreated int64
	projectID int
}

func (a *attachment) ID() int {
	return a.id
}

func (a *attachment) Path() string {
	return a.path
}

func (a *attachment) Filename() string {
	return a.filename
}

func (a *attachment) TsCreated() int64 {
	return a.tsCreated
}

func (a *attachment) ProjectID() int {
	return a.projectID
}

type AttachmentDB struct {
	*sql.DB
	get    *sql.Stmt
	getOf  *sql.Stmt
	insert *sql.Stmt
}

func NewAttachmentDB(db *sql.DB) *AttachmentDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS attachment (
			id INTEGER PRIMARY KEY,
			path varchar(32) NOT NULL, -- upload day folder, like "2022/05/10"
			filename varchar(255) NOT NULL,
			tsCreated int(11) NOT NULL,
			project int(11) NOT NULL
		);`)

	var attachmentDB = &AttachmentDB{}
	attachmentDB.DB = db
	attachmentDB.get = mustPrepare(db, "SELECT path, filename, tsCreated, project FROM attachment WHERE id = ? LIMIT 1")
	attachmentDB.getOf = mustPrepare(db, "SELECT id, path, filename, tsCreated FROM attachment WHERE project = ? ORDER BY id")
	attachmentDB.insert = mustPrepare(db, "INSERT INTO attachment (path, filename, tsCreated, project) VALUES (?, ?, ?, ?)")
	return attachmentDB
}

func (db *AttachmentDB) Writeable() bool {
	return true
}

func (db *AttachmentDB) InsertAttachment(p core.DBProject, path, filename string) (core.DBAttachment, error) {

	var now = time.Now().Unix()

	res, err := db.insert.Exec(path, filename, now, p.ID())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &attachment{
		id:        int(id),
		path:      path,
		filename:  filename,
		tsCreated: now,
		projectID: p.ID(),
	}, nil
}

// GetAttachment may return sql.ErrNoRows.
func (db *AttachmentDB) GetAttachment(id int) (core.DBAttachment, error) {
	var a = &attachment{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&a.path, &a.filename, &a.tsCreated, &a.projectID)
	return a, err
}

func (db *AttachmentDB) GetAttachmentsOf(p core.DBProject) ([]core.DBAttachment, error) {

	rows, err := db.getOf.Query(p.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments = []core.DBAttachment{}

	for rows.Next() {
		var a = &attachment{
			projectID: p.ID(),
		}
		if err := rows.Scan(&a.id, &a.path, &a.filename, &a.tsCreated); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}

	return attachments, nil
}
