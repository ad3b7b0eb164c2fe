package core

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type DBUser interface {
	ID() int
	Username() string
	FirstName() string
	LastName() string
	Mail() string
}

type UserDB interface {
	ChangePassword(u DBUser, old, new string) error
	Delete(u DBUser) error
	GetUser(id int) (DBUser, error)
	GetUserByName(username string) (DBUser, error)
	GetAllUsers(limit, offset int) ([]DBUser, error)
	InsertUser(username string) (DBUser, error)
	LoginUser(username, password string) (DBUser, error)
	SetInfo(u DBUser, username, firstName, lastName, mail string) error
	SetPassword(u DBUser, password string) error
	Writeable() bool
}

var ErrEmptyPassword = errors.New("refusing to set empty password")

// shadows UserDB.SetPassword
func (c *CoreDB) SetPassword(u DBUser, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	return c.UserDB.SetPassword(u, password)
}

// Register creates a user account and sets its password.
func (c *CoreDB) Register(username, firstName, lastName, mail, password string) (DBUser, error) {

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ValidationError("username must not be empty")
	}
	if len(username) > 50 {
		return nil, ValidationError("username is too long")
	}

	if _, err := c.UserDB.GetUserByName(username); err == nil {
		return nil, ValidationError(fmt.Sprintf("user %s already exists", username))
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	u, err := c.UserDB.InsertUser(username)
	if err != nil {
		return nil, err
	}

	if err := c.UserDB.SetInfo(u, username, firstName, lastName, mail); err != nil {
		return nil, err
	}

	if err := c.SetPassword(u, password); err != nil {
		return nil, err
	}

	return u, nil
}
