package backend

import (
	"errors"
	"net/http"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var registerTmpl = tmpl(`<h1>Registration</h1>
	<form method="post" style="max-width: 24rem; margin: auto;">
		<div class="form-group">
			<label>Username</label>
			<input type="text" class="form-control" name="username" value="{{ .Username }}" required autofocus>
		</div>
		<div class="form-group">
			<label>First name</label>
			<input type="text" class="form-control" name="first_name" value="{{ .FirstName }}">
		</div>
		<div class="form-group">
			<label>Last name</label>
			<input type="text" class="form-control" name="last_name" value="{{ .LastName }}">
		</div>
		<div class="form-group">
			<label>E-Mail</label>
			<input type="email" class="form-control" name="mail" value="{{ .Mail }}">
		</div>
		<div class="form-group">
			<label>Password</label>
			<input type="password" class="form-control" name="password1" required>
		</div>
		<div class="form-group">
			<label>Repeat password</label>
			<input type="password" class="form-control" name="password2" required>
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-primary" name="register">Register</button>
		</div>
	</form>`)

type registerData struct {
	*context
	Username  string
	FirstName string
	LastName  string
	Mail      string
}

func register(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var data = &registerData{
		context: ctx,
	}

	if req.Method == http.MethodPost {

		data.Username = req.PostFormValue("username")
		data.FirstName = req.PostFormValue("first_name")
		data.LastName = req.PostFormValue("last_name")
		data.Mail = req.PostFormValue("mail")

		var password1 = req.PostFormValue("password1")
		var password2 = req.PostFormValue("password2")

		if password1 != password2 {
			ctx.Danger(errors.New("passwords don't match"))
			return registerTmpl.Execute(w, data)
		}

		u, err := ctx.db.Register(data.Username, data.FirstName, data.LastName, data.Mail, password1)
		if err != nil {
			if _, ok := err.(core.ValidationError); ok {
				ctx.Danger(err)
				return registerTmpl.Execute(w, data)
			}
			return err
		}

		ctx.LoginAs(u)
		ctx.Success("Welcome %s!", u.Username())
		ctx.SeeOther("/project")
		return nil
	}

	return registerTmpl.Execute(w, data)
}
