package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var homeTmpl = tmpl(`
	<div class="jumbotron mt-3">
		<h1 class="display-4">Basecamp</h1>
		<p class="lead">Create projects, invite your team, discuss, track tasks and share files.</p>
		{{ if .LoggedIn }}
			<a class="btn btn-primary" href="project">Your projects</a>
		{{ else }}
			<a class="btn btn-primary" href="register">Register</a>
			<a class="btn btn-outline-primary" href="login">Login</a>
		{{ end }}
	</div>`)

func home(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	return homeTmpl.Execute(w, ctx)
}
