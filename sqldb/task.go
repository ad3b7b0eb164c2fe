package sqldb

import (
	"database/sql"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/core"
)

type task struct {
	id        int
	name      string
	tsCreated int64
	solved    bool
	projectID int
}

func (t *task) ID() int {
	return t.id
}

func (t *task) Name() string {
	return t.name
}

func (t *task) TsCreated() int64 {
	return t.tsCreated
}

func (t *task) Solved() bool {
	return t.solved
}

func (t *task) ProjectID() int {
	return t.projectID
}

type TaskDB struct {
	*sql.DB
	get       *sql.Stmt
	getOf     *sql.Stmt
	insert    *sql.Stmt
	setSolved *sql.Stmt
}

func NewTaskDB(db *sql.DB) *TaskDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS task (
			id INTEGER PRIMARY KEY,
			name varchar(255) NOT NULL,
			tsCreated int(11) NOT NULL,
			solved bool NOT NULL DEFAULT 0,
			project int(11) NOT NULL
		);`)

	var taskDB = &TaskDB{}
	taskDB.DB = db
	taskDB.get = mustPrepare(db, "SELECT name, tsCreated, solved, project FROM task WHERE id = ? LIMIT 1")
	taskDB.getOf = mustPrepare(db, "SELECT id, name, tsCreated, solved FROM task WHERE project = ? ORDER BY id")
	taskDB.insert = mustPrepare(db, "INSERT INTO task (name, tsCreated, project) VALUES (?, ?, ?)")
	taskDB.setSolved = mustPrepare(db, "UPDATE task SET solved = ? WHERE id = ?")
	return taskDB
}

func (db *TaskDB) Writeable() bool {
	return true
}

func (db *TaskDB) InsertTask(p core.DBProject, name string) (core.DBTask, error) {

	var now = time.Now().Unix()

	res, err := db.insert.Exec(name, now, p.ID())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &task{
		id:        int(id),
		name:      name,
		tsCreated: now,
		projectID: p.ID(),
	}, nil
}

// GetTask may return sql.ErrNoRows.
func (db *TaskDB) GetTask(id int) (core.DBTask, error) {
	var t = &task{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&t.name, &t.tsCreated, &t.solved, &t.projectID)
	return t, err
}

func (db *TaskDB) GetTasksOf(p core.DBProject) ([]core.DBTask, error) {

	rows, err := db.getOf.Query(p.ID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks = []core.DBTask{}

	for rows.Next() {
		var t = &task{
			projectID: p.ID(),
		}
		if err := rows.Scan(&t.id, &t.name, &t.tsCreated, &t.solved); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

func (db *TaskDB) SetSolved(t core.DBTask, solved bool) error {
	if _, err := db.setSolved.Exec(solved, t.ID()); err != nil {
		return err
	}
	t.(*task).solved = solved
	return nil
}
