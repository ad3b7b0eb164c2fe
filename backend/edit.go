package backend

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var editProjectTmpl = tmpl(`<h1>Edit {{ .Project.Title }}</h1>

	<form method="post">

		<div class="form-group">
			<label for="title">Title</label>
			<input type="text" class="form-control" id="title" name="title" maxlength="255" value="{{ .Project.Title }}" required>
		</div>

		<div class="form-group">
			<label for="description">Description</label>
			<textarea class="form-control" id="description" name="description" rows="6">{{ .Project.Description }}</textarea>
		</div>

		<div class="form-group">
			<label for="add_user">Add a user (optional)</label>
			<input type="text" class="form-control" id="add_user" name="add_user" maxlength="50" placeholder="Username">
		</div>

		<div class="form-check mb-3">
			<input type="checkbox" class="form-check-input" id="as_admin" name="as_admin">
			<label class="form-check-label" for="as_admin">as admin</label>
		</div>

		<button type="submit" class="btn btn-primary">Save</button>
		<a class="btn btn-secondary" href="project/{{ .Project.ID }}">Cancel</a>

	</form>`)

func editProject(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanChange)
	if err != nil {
		return err
	}

	var data = struct {
		*context
		Project core.DBProject
	}{
		context: ctx,
		Project: p,
	}

	if req.Method == http.MethodPost {

		if err := ctx.db.SetTitle(p, req.PostFormValue("title")); err != nil {
			if _, ok := err.(core.ValidationError); ok {
				ctx.Danger(err)
				return editProjectTmpl.Execute(w, data)
			}
			return err
		}

		if err := ctx.db.SetDescription(p, req.PostFormValue("description")); err != nil {
			return err
		}

		if username := req.PostFormValue("add_user"); username != "" {
			target, err := ctx.db.GetUserByName(username)
			if err != nil {
				if err == sql.ErrNoRows {
					ctx.Danger(errors.New("no such user"))
					return editProjectTmpl.Execute(w, data)
				}
				return err
			}
			if err := ctx.db.ChangeMembership(p, target, core.AddMember); err != nil {
				return err
			}
			if req.PostFormValue("as_admin") != "" {
				if err := ctx.db.ChangeMembership(p, target, core.PromoteToAdmin); err != nil {
					return err
				}
			}
		}

		ctx.Success("project has been updated")
		ctx.SeeOther("/project/%d", p.ID())
		return nil
	}

	return editProjectTmpl.Execute(w, data)
}
