package core

type DBGroup interface {
	ID() int
	Name() string
	HasMember(u DBUser) (bool, error)
	Members() (map[int]interface{}, error)
}

// Groups are provisioned and deleted along with their project, see
// ProjectDB, so GroupDB only reads groups and mutates memberships.
type GroupDB interface {
	GetGroupByName(name string) (DBGroup, error)
	Join(g DBGroup, u DBUser) error
	Leave(g DBGroup, u DBUser) error
	LeaveAll(u DBUser) error
	Writeable() bool
}

// join is an idempotent GroupDB.Join.
func (c *CoreDB) join(g DBGroup, u DBUser) error {
	has, err := g.HasMember(u)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	return c.GroupDB.Join(g, u)
}

// leave is an idempotent GroupDB.Leave.
func (c *CoreDB) leave(g DBGroup, u DBUser) error {
	has, err := g.HasMember(u)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	return c.GroupDB.Leave(g, u)
}
