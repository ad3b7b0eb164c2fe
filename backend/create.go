package backend

import (
	"net/http"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var createProjectTmpl = tmpl(`<h1>New Project</h1>
	<form method="post">
		<div class="form-group">
			<label>Title</label>
			<input type="text" class="form-control" name="title" value="{{ .Title }}" maxlength="255" required autofocus>
		</div>
		<div class="form-group">
			<label>Description</label>
			<textarea class="form-control" name="description" rows="3" maxlength="255">{{ .Description }}</textarea>
		</div>
		<button type="submit" class="btn btn-primary" name="submit_create">Create project</button>
	</form>`)

type createProjectData struct {
	*context
	Title       string
	Description string
}

func createProject(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var data = &createProjectData{
		context: ctx,
	}

	if req.Method == http.MethodPost {

		data.Title = req.PostFormValue("title")
		data.Description = req.PostFormValue("description")

		p, err := ctx.db.CreateProject(data.Title, data.Description, ctx.User)
		if err != nil {
			if _, ok := err.(core.ValidationError); ok {
				ctx.Danger(err)
				return createProjectTmpl.Execute(w, data)
			}
			return err
		}

		ctx.Success("project %s has been created", p.Title())
		ctx.SeeOther("/project/%d", p.ID())
		return nil
	}

	return createProjectTmpl.Execute(w, data)
}
