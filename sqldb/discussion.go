package sqldb

import (
	"database/sql"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/core"
)

type discussion struct {
	id        int
	name      string
	tsCreated int64
	projectID int
}

func (d *discussion) ID() int {
	return d.id
}

func (d *discussion) Name() string {
	return d.name
}

func (d *discussion) TsCreated() int64 {
	return d.tsCreated
}

func (d *discussion) ProjectID() int {
	return d.projectID
}

type message struct {
	id           int
	username     string
	text         string
	tsCreated    int64
	discussionID int
}

func (m *message) ID() int {
	return m.id
}

func (m *message) Username() string {
	return m.username
}

func (m *message) Text() string {
	return m.text
}

func (m *message) TsCreated() int64 {
	return m.tsCreated
}

func (m *message) DiscussionID() int {
	return m.discussionID
}

type DiscussionDB struct {
	*sql.DB
	countMessagesOf *sql.Stmt
	get             *sql.Stmt
	getOf           *sql.Stmt
	insert          *sql.Stmt
	insertMessage   *sql.Stmt
	messagesOf      *sql.Stmt
}

func NewDiscussionDB(db *sql.DB) *DiscussionDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS discussion (
			id INTEGER PRIMARY KEY,
			name varchar(255) NOT NULL,
			tsCreated int(11) NOT NULL,
			project int(11) NOT NULL
		);
		CREATE TABLE IF NOT EXISTS discussion_message (
			id INTEGER PRIMARY KEY,
			username varchar(100) NOT NULL, -- author name snapshot, not a reference
			message varchar(255) NOT NULL,
			tsCreated int(11) NOT NULL,
			discussion int(11) NOT NULL
		);`)

	var discussionDB = &DiscussionDB{}
	discussionDB.DB = db
	discussionDB.countMessagesOf = mustPrepare(db, "SELECT COUNT(1) FROM discussion_message, discussion WHERE discussion_message.discussion = discussion.id AND discussion.project = ?")
	discussionDB.get = mustPrepare(db, "SELECT name, tsCreated, project FROM discussion WHERE id = ? LIMIT 1")
	discussionDB.getOf = mustPrepare(db, "SELECT id, name, tsCreated FROM discussion WHERE project = ? ORDER BY id")
	discussionDB.insert = mustPrepare(db, "INSERT INTO discussion (name, tsCreated, project) VALUES (?, ?, ?)")
	discussionDB.insertMessage = mustPrepare(db, "INSERT INTO discussion_message (username, message, tsCreated, discussion) VALUES (?, ?, ?, ?)")
	discussionDB.messagesOf = mustPrepare(db, "SELECT id, username, message, tsCreated FROM discussion_message WHERE discussion = ? ORDER BY id")
	return discussionDB
}

func (db *DiscussionDB) Writeable() bool {
	return true
}

func (db *DiscussionDB) InsertDiscussion(p core.DBProject, name string) (core.DBDiscussion, error) {

	var now = time.Now().Unix()

	res, err := db.insert.Exec(name, now, p.ID())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &discussion{
		id:        int(id),
		name:      name,
		tsCreated: now,
		projectID: p.ID(),
	}, nil
}

// GetDiscussion may return sql.ErrNoRows.
func (db *DiscussionDB) GetDiscussion(id int) (core.DBDiscussion, error) {
	var d = &discussion{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&d.name, &d.tsCreated, &d.projectID)
	return d, err
}

func (db *DiscussionDB) GetDiscussionsOf(p core.DBProject) ([]core.DBDiscussion, error) {

	rows, err := db.getOf.Query(p.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discussions = []core.DBDiscussion{}

	for rows.Next() {
		var d = &discussion{
			projectID: p.ID(),
		}
		if err := rows.Scan(&d.id, &d.name, &d.tsCreated); err != nil {
			return nil, err
		}
		discussions = append(discussions, d)
	}

	return discussions, nil
}

func (db *DiscussionDB) InsertMessage(d core.DBDiscussion, username, text string) (core.DBMessage, error) {

	var now = time.Now().Unix()

	res, err := db.insertMessage.Exec(username, text, now, d.ID())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &message{
		id:           int(id),
		username:     username,
		text:         text,
		tsCreated:    now,
		discussionID: d.ID(),
	}, nil
}

func (db *DiscussionDB) GetMessagesOf(d core.DBDiscussion) ([]core.DBMessage, error) {

	rows, err := db.messagesOf.Query(d.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = []core.DBMessage{}

	for rows.Next() {
		var m = &message{
			discussionID: d.ID(),
		}
		if err := rows.Scan(&m.id, &m.username, &m.text, &m.tsCreated); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, nil
}

func (db *DiscussionDB) CountMessagesOf(p core.DBProject) (int, error) {
	var count int
	err := db.countMessagesOf.QueryRow(p.ID()).Scan(&count)
	return count, err
}
