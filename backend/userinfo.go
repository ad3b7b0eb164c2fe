package backend

import (
	"net/http"
	"strconv"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var userinfoTmpl = tmpl(`<h1>{{ .User.Username }}</h1>

	<form method="post">

		<input type="hidden" name="option" value="info">

		<div class="form-group">
			<label for="username">Username</label>
			<input type="text" class="form-control" id="username" name="username" maxlength="50" value="{{ .User.Username }}" required>
		</div>

		<div class="form-group">
			<label for="first_name">First name</label>
			<input type="text" class="form-control" id="first_name" name="first_name" maxlength="100" value="{{ .User.FirstName }}">
		</div>

		<div class="form-group">
			<label for="last_name">Last name</label>
			<input type="text" class="form-control" id="last_name" name="last_name" maxlength="100" value="{{ .User.LastName }}">
		</div>

		<div class="form-group">
			<label for="mail">Mail address</label>
			<input type="email" class="form-control" id="mail" name="mail" maxlength="100" value="{{ .User.Mail }}">
		</div>

		<button type="submit" class="btn btn-primary">Save</button>

	</form>

	<h2 class="mt-4">Change password</h2>

	<form method="post">

		<input type="hidden" name="option" value="password">

		<div class="form-group">
			<label for="old_password">Current password</label>
			<input type="password" class="form-control" id="old_password" name="old_password" required>
		</div>

		<div class="form-group">
			<label for="new_password">New password</label>
			<input type="password" class="form-control" id="new_password" name="new_password" required>
		</div>

		<button type="submit" class="btn btn-primary">Change password</button>

	</form>

	<p class="mt-4"><a class="btn btn-outline-danger" href="delete/{{ .User.ID }}">Delete account</a></p>`)

// userinfo shows and edits a user profile. Profiles are private, anyone but
// the user themselves is denied.
func userinfo(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil {
		return core.ErrDenied
	}
	if id != ctx.User.ID() {
		return core.ErrDenied
	}

	if req.Method == http.MethodPost {

		switch req.PostFormValue("option") {

		case "info":
			err := ctx.db.SetInfo(ctx.User,
				req.PostFormValue("username"),
				req.PostFormValue("first_name"),
				req.PostFormValue("last_name"),
				req.PostFormValue("mail"),
			)
			if err != nil {
				ctx.Danger(err)
			} else {
				ctx.Success("your profile has been updated")
			}

		case "password":
			err := ctx.db.ChangePassword(ctx.User,
				req.PostFormValue("old_password"),
				req.PostFormValue("new_password"),
			)
			if err != nil {
				ctx.Danger(err)
			} else {
				ctx.Success("your password has been changed")
			}

		default:
			return core.ErrDenied
		}

		ctx.SeeOther("/userinfo/%d", ctx.User.ID())
		return nil
	}

	return userinfoTmpl.Execute(w, ctx)
}
