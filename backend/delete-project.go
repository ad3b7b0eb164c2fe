package backend

import (
	"net/http"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var deleteProjectTmpl = tmpl(`<h1>Delete {{ .Project.Title }}</h1>

	<p>This removes the project with all of its discussions, tasks and attachments. There is no undo.</p>

	<form method="post">
		<button type="submit" class="btn btn-danger">Delete project</button>
		<a class="btn btn-secondary" href="project/{{ .Project.ID }}">Cancel</a>
	</form>`)

func deleteProject(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanChange)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {
		if err := ctx.db.DeleteProject(p); err != nil {
			return err
		}
		ctx.Success("project %s has been deleted", p.Title())
		ctx.SeeOther("/project")
		return nil
	}

	return deleteProjectTmpl.Execute(w, struct {
		*context
		Project core.DBProject
	}{
		context: ctx,
		Project: p,
	})
}
