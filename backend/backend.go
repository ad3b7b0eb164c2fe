package backend

import (
	"database/sql"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/util"
	"github.com/julienschmidt/httprouter"
)

// we need the CoreDB in the handlers
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

func (ctx *context) CanChange(projectID int) bool {
	return ctx.db.CanChange(ctx.User, projectID)
}

// requireProject parses a project id and checks the required permission
// before touching the database. A missing project and a missing permission
// yield the same ErrDenied, so responses don't reveal which projects exist.
func (ctx *context) requireProject(idParam string, require func(core.DBUser, int) bool) (core.DBProject, error) {

	id, err := strconv.Atoi(idParam)
	if err != nil {
		return nil, core.ErrDenied
	}

	if !require(ctx.User, id) {
		return nil, core.ErrDenied
	}

	p, err := ctx.db.GetProject(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrDenied
		}
		return nil, err
	}

	return p, nil
}

func middleware(db *core.CoreDB, prefix string, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var request = db.NewRequest(w, req)

		var ctx = &context{
			Prefix:  prefix + "/",
			Request: request,
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/login")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			// probably no template has been executed, so execute error template
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewRouter(db *core.CoreDB, prefix string) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	router.GET("/", middleware(db, prefix, false, home))
	GETAndPOST("/register", middleware(db, prefix, false, register))
	GETAndPOST("/login", middleware(db, prefix, false, login))

	// private
	router.GET("/logout", middleware(db, prefix, true, logout))
	router.GET("/project", middleware(db, prefix, true, projects))
	GETAndPOST("/create_project", middleware(db, prefix, true, createProject))
	router.GET("/project/:id", middleware(db, prefix, true, projectDetail))
	router.POST("/project/:id/add-info", middleware(db, prefix, true, addInfo))
	router.POST("/project/:id/task/:task", middleware(db, prefix, true, solveTask))
	router.GET("/project/:id/file/:file", middleware(db, prefix, true, downloadAttachment))
	GETAndPOST("/project/:id/membership", middleware(db, prefix, true, membership))
	GETAndPOST("/edit_project/:id", middleware(db, prefix, true, editProject))
	GETAndPOST("/delete_project/:id", middleware(db, prefix, true, deleteProject))
	GETAndPOST("/userinfo/:id", middleware(db, prefix, true, userinfo))
	GETAndPOST("/delete/:id", middleware(db, prefix, true, deleteUser))

	return router
}

func tmpl(text string) *template.Template {
	t := template.Must(baseTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var baseTmpl = template.Must(template.New("base").Funcs(
	template.FuncMap{
		"Markdown": RenderMarkdown,
		"Trunc":    util.Trunc,
		"UserLink": func(user core.DBUser) template.HTML {
			return template.HTML(fmt.Sprintf(`<a href="userinfo/%d">%s</a>`, user.ID(), template.HTMLEscapeString(user.Username())))
		},
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<link rel="stylesheet" type="text/css" href="https://stackpath.bootstrapcdn.com/bootstrap/4.4.1/css/bootstrap.min.css">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		<title>Basecamp</title>

		<style>

			body {
				padding-bottom: 1rem;
			}

			h1 {
				font-size: 1.5rem !important;
				margin: 1rem 0 0.7rem !important;
			}

			h2 {
				font-size: 1.3rem !important;
				margin: 0.2rem 0 0.5rem !important;
			}

			table {
				margin-top: 0.5rem;
				border-bottom: 1px solid #dee2e6;
			}

		</style>
	</head>
	<body>

		<nav class="navbar navbar-expand-md bg-light">
			<a class="navbar-brand" href="/">Basecamp</a>
			<ul class="navbar-nav">

				{{ if .LoggedIn }}

					<li class="nav-item">
						<a class="nav-link" href="project">Projects</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="create_project">New project</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="userinfo/{{ .User.ID }}">{{ .User.Username }}</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="logout">Logout</a>
					</li>

				{{ else }}

					<li class="nav-item">
						<a class="nav-link" href="login">Login</a>
					</li>
					<li class="nav-item">
						<a class="nav-link" href="register">Register</a>
					</li>

				{{ end }}

			</ul>
		</nav>

		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>
	</body>
</html>`))
