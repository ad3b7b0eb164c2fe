package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/backend"
	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/sqldb"
	"github.com/DNSK-LINK/basecamp-replica/sqldb/mysql"
	"github.com/DNSK-LINK/basecamp-replica/sqldb/sqlite3"
	"github.com/DNSK-LINK/basecamp-replica/util"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

type prefixedResponseWriter struct {
	http.ResponseWriter
	prefix string // without trailing slash
}

// shadows the original WriteHeader func
func (w prefixedResponseWriter) WriteHeader(statusCode int) {
	// prepend prefix to Location header, so redirects work
	if w.prefix != "" {
		if location := w.Header().Get("Location"); len(location) > 0 && location[0] == '/' { // only absolute locations
			w.Header().Set("Location", w.prefix+location)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// prefix should be without trailing slash
func handleStrip(prefix string, handler http.Handler) {
	http.Handle(
		prefix+"/", // http mux needs trailing slash
		http.StripPrefix(
			prefix,
			http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					w = &prefixedResponseWriter{w, prefix}
					handler.ServeHTTP(w, r)
				},
			),
		),
	)
}

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

const defaultDB = "sqlite3:basecamp.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

func main() {

	var dbArg string // is in both FlagSets

	// config file defaults, flags override them

	config, err := util.Ini("config/basecamp.ini")
	if err != nil {
		config = map[string]string{}
	}
	configOr := func(key, fallback string) string {
		if v, ok := config[key]; ok {
			return v
		}
		return fallback
	}

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", configOr("base", ""), "strip off this `prefix` from every HTTP request and prepend it to every link")
	// MySQL: collation should be utf8mb4_unicode_ci
	flag.StringVar(&dbArg, "db", configOr("db", defaultDB), "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", configOr("listen", "127.0.0.1:8080"), "serve HTTP content at this `ip:port`")
	var uploadDir = flag.String("uploads", configOr("uploads", "uploads"), "store uploaded files in this `folder`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", configOr("db", defaultDB), "sql database url, see github.com/xo/dburl") // copied from above
	var initInsert = initFlags.Bool("insert", false, "creates the given user")
	var initPasswd = initFlags.Bool("passwd", false, "resets the given user's password")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	db := &core.CoreDB{}
	if err := db.Init(sessionStore, *base, *uploadDir); err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	db.AttachmentDB = sqldb.NewAttachmentDB(sqlDB)
	db.DiscussionDB = sqldb.NewDiscussionDB(sqlDB)
	groupDB := sqldb.NewGroupDB(sqlDB)
	db.GroupDB = groupDB
	db.PermissionDB = sqldb.NewPermissionDB(sqlDB)
	db.TaskDB = sqldb.NewTaskDB(sqlDB)
	db.UserDB = sqldb.NewUserDB(sqlDB)
	db.ProjectDB = sqldb.NewProjectDB(sqlDB, groupDB) // last, its statements touch the other stores' tables

	db.SqlDB = sqlDB

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		switch {
		case *initInsert:
			if *username != "" {
				insertUser(db, *username)
			}
		case *initPasswd:
			if *username != "" {
				passwd(db, *username)
			}
		}
		return
	}

	listen(db, *listenAddr, *base)
}

// readPassword prompts twice and returns the password.
func readPassword(username string) (string, bool) {

	fmt.Printf("password for user %s: ", username)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return "", false
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return "", false
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return "", false
	}

	return string(pass1), true
}

func insertUser(db *core.CoreDB, name string) {

	pass, ok := readPassword(name)
	if !ok {
		return
	}

	user, err := db.UserDB.InsertUser(name)
	if err != nil {
		log.Printf("error creating user %s: %v", name, err)
		return
	}

	if err := db.SetPassword(user, pass); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func passwd(db *core.CoreDB, name string) {

	user, err := db.GetUserByName(name)
	if err != nil {
		log.Printf("error getting user %s: %v", name, err)
		return
	}

	pass, ok := readPassword(name)
	if !ok {
		return
	}

	if err := db.SetPassword(user, pass); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func listen(db *core.CoreDB, addr string, base string) {

	// mux
	//
	// golang mux recovers from panics, so the program won't crash

	handleStrip(base, backend.NewRouter(db, base))

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(http.DefaultServeMux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
