package backend

import (
	"net/http"
	"strconv"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var deleteUserTmpl = tmpl(`<h1>Delete your account</h1>

	<p>This deletes your account, removes you from all projects and deletes every project you created. There is no undo.</p>

	<form method="post">
		<button type="submit" class="btn btn-danger">Delete account</button>
		<a class="btn btn-secondary" href="userinfo/{{ .User.ID }}">Cancel</a>
	</form>`)

// deleteUser deletes the logged-in user's own account. Deleting someone
// else's account is denied.
func deleteUser(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return core.ErrDenied
	}
	if id != ctx.User.ID() {
		return core.ErrDenied
	}

	if req.Method == http.MethodPost {
		if err := ctx.db.DeleteAccount(ctx.User); err != nil {
			return err
		}
		ctx.Logout()
		ctx.SeeOther("/")
		return nil
	}

	return deleteUserTmpl.Execute(w, ctx)
}
