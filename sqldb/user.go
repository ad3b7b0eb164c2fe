package sqldb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/util"
)

var ErrAuth = errors.New("authentication failed")

func clean(name string) string {
	return strings.TrimSpace(name)
}

func hash(salt string, password string) string {
	var hash = sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(hash[:])
}

type user struct {
	id        int
	username  string
	firstName string
	lastName  string
	mail      string
	salt      string
	pass      string // hash
}

func (u *user) hash(password string) string {
	return hash(u.salt, password)
}

func (u *user) ID() int {
	return u.id
}

func (u *user) Username() string {
	return u.username
}

func (u *user) FirstName() string {
	return u.firstName
}

func (u *user) LastName() string {
	return u.lastName
}

func (u *user) Mail() string {
	return u.mail
}

type UserDB struct {
	*sql.DB
	delete      *sql.Stmt
	get         *sql.Stmt
	getAll      *sql.Stmt
	getByName   *sql.Stmt
	insert      *sql.Stmt
	login       *sql.Stmt
	setInfo     *sql.Stmt
	setPassword *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS usr (
			id INTEGER PRIMARY KEY,
			username varchar(50) NOT NULL,
			firstName varchar(50) NOT NULL DEFAULT '',
			lastName varchar(50) NOT NULL DEFAULT '',
			mail varchar(128) NOT NULL DEFAULT '',
			salt varchar(64) NOT NULL DEFAULT '',
			password varchar(64) NOT NULL DEFAULT '',
			UNIQUE(username)
		);`)

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.delete = mustPrepare(db, "DELETE FROM usr WHERE id = ?")
	userDB.get = mustPrepare(db, "SELECT username, firstName, lastName, mail FROM usr WHERE id = ? LIMIT 1")
	userDB.getAll = mustPrepare(db, "SELECT id, username, firstName, lastName, mail FROM usr ORDER BY username LIMIT ? OFFSET ?")
	userDB.getByName = mustPrepare(db, "SELECT id, firstName, lastName, mail FROM usr WHERE username = ? LIMIT 1")
	userDB.insert = mustPrepare(db, "INSERT INTO usr (username) VALUES (?)") // empty password field should be safe because no hash value equals it
	userDB.login = mustPrepare(db, "SELECT id, salt, password FROM usr WHERE username = ?")
	userDB.setInfo = mustPrepare(db, "UPDATE usr SET username = ?, firstName = ?, lastName = ?, mail = ? WHERE id = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET salt = ?, password = ? WHERE id = ?")
	return userDB
}

func (db *UserDB) Writeable() bool {
	return true
}

// ChangePassword verifies the old password through the login query. The
// given core.DBUser may have been loaded without its password hash.
func (db *UserDB) ChangePassword(u core.DBUser, old, new string) error {
	if _, err := db.LoginUser(u.Username(), old); err != nil {
		return err
	}
	return db.SetPassword(u, new)
}

func (db *UserDB) Delete(u core.DBUser) error {
	_, err := db.delete.Exec(u.ID())
	return err
}

// GetUser may return sql.ErrNoRows, because we can not compare the returned core.DBUser to nil.
func (db *UserDB) GetUser(id int) (core.DBUser, error) {
	var u = &user{
		id: id,
	}
	err := db.get.QueryRow(id).Scan(&u.username, &u.firstName, &u.lastName, &u.mail)
	return u, err
}

func (db *UserDB) GetUserByName(username string) (core.DBUser, error) {
	var u = &user{
		username: clean(username),
	}
	err := db.getByName.QueryRow(u.username).Scan(&u.id, &u.firstName, &u.lastName, &u.mail)
	return u, err
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]core.DBUser, error) {

	var all = []core.DBUser{}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u = &user{}
		err = rows.Scan(&u.id, &u.username, &u.firstName, &u.lastName, &u.mail)
		if err != nil {
			return nil, err
		}
		all = append(all, u)
	}

	return all, nil
}

func (db *UserDB) InsertUser(username string) (core.DBUser, error) {

	username = clean(username)

	res, err := db.insert.Exec(username)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &user{
		id:       int(id),
		username: username,
	}, nil
}

func (db *UserDB) LoginUser(username, password string) (core.DBUser, error) {

	username = clean(username)

	var u = &user{
		username: username,
	}

	err := db.login.QueryRow(username).Scan(&u.id, &u.salt, &u.pass)
	if err == sql.ErrNoRows {
		return nil, ErrAuth // user not found
	}
	if err != nil {
		return nil, err
	}

	if u.hash(password) != u.pass {
		return nil, ErrAuth // wrong password
	}

	return u, nil
}

func (db *UserDB) SetInfo(u core.DBUser, username, firstName, lastName, mail string) error {

	username = clean(username)
	if username == "" {
		return errors.New("username can't be empty")
	}

	_, err := db.setInfo.Exec(username, clean(firstName), clean(lastName), clean(mail), u.ID())
	if err != nil {
		return err
	}

	var usr = u.(*user)
	usr.username = username
	usr.firstName = clean(firstName)
	usr.lastName = clean(lastName)
	usr.mail = clean(mail)
	return nil
}

func (db *UserDB) SetPassword(u core.DBUser, password string) error {

	if password == "" {
		return errors.New("no password given")
	}

	if u.ID() == 0 {
		return errors.New("can't set password of user 0")
	}

	salt, err := util.RandomString32()
	if err != nil {
		return err
	}

	_, err = db.setPassword.Exec(salt, hash(salt, password), u.ID())
	if err != nil {
		return err
	}

	u.(*user).salt = salt
	u.(*user).pass = hash(salt, password)
	return nil
}
