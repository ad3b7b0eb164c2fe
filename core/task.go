package core

import "strings"

type DBTask interface {
	ID() int
	Name() string
	TsCreated() int64
	Solved() bool
	ProjectID() int
}

type TaskDB interface {
	InsertTask(p DBProject, name string) (DBTask, error)
	GetTask(id int) (DBTask, error)
	GetTasksOf(p DBProject) ([]DBTask, error)
	SetSolved(t DBTask, solved bool) error
	Writeable() bool
}

// AddTask shadows TaskDB.InsertTask. New tasks are unsolved.
func (c *CoreDB) AddTask(p DBProject, name string) (DBTask, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("task name must not be empty")
	}
	if len(name) > MaxFieldLen {
		return nil, ValidationError("task name is too long")
	}
	return c.TaskDB.InsertTask(p, name)
}
