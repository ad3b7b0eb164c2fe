package backend

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var membershipTmpl = tmpl(`<h1>Membership of {{ .Project.Title }}</h1>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>User</th>
				<th>Role</th>
				<th colspan="2"></th>
			</tr>
		</thead>
		<tbody>
			{{ range .Members }}
				<tr>
					<td>{{ UserLink . }}</td>
					<td>{{ if $.IsUserAdmin . }}admin{{ else }}member{{ end }}</td>
					<td>
						<form method="post">
							<input type="hidden" name="username" value="{{ .Username }}">
							{{ if $.IsUserAdmin . }}
								<button type="submit" name="action" value="demote" class="btn btn-sm btn-outline-secondary">Demote</button>
							{{ else }}
								<button type="submit" name="action" value="promote" class="btn btn-sm btn-outline-secondary">Promote to admin</button>
							{{ end }}
						</form>
					</td>
					<td>
						<form method="post">
							<input type="hidden" name="username" value="{{ .Username }}">
							<button type="submit" name="action" value="remove" class="btn btn-sm btn-outline-danger">Remove</button>
						</form>
					</td>
				</tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Add a member</h2>

	<form method="post" class="form-inline">
		<input type="hidden" name="action" value="add">
		<input type="text" class="form-control mr-2" name="username" maxlength="50" placeholder="Username" list="usernames" required>
		<datalist id="usernames">
			{{ range .Usernames }}
				<option value="{{ . }}">
			{{ end }}
		</datalist>
		<button type="submit" class="btn btn-primary">Add</button>
	</form>

	<p class="mt-3"><a href="project/{{ .Project.ID }}">Back to project</a></p>`)

type membershipData struct {
	*context
	Project   core.DBProject
	Members   []core.DBUser
	Usernames []string
	adminIDs  map[int]bool
}

func (data *membershipData) IsUserAdmin(u core.DBUser) bool {
	return data.adminIDs[u.ID()]
}

// membership lists members and their roles and processes role changes.
// Requires change permission.
func membership(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanChange)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		target, err := ctx.db.GetUserByName(req.PostFormValue("username"))
		if err != nil {
			if err == sql.ErrNoRows {
				ctx.Danger(errors.New("no such user"))
				ctx.SeeOther("/project/%d/membership", p.ID())
				return nil
			}
			return err
		}

		var action core.MembershipAction
		switch req.PostFormValue("action") {
		case "add":
			action = core.AddMember
		case "promote":
			action = core.PromoteToAdmin
		case "remove":
			action = core.RemoveMember
		case "demote":
			action = core.DemoteAdmin
		default:
			return core.ErrDenied
		}

		if err := ctx.db.ChangeMembership(p, target, action); err != nil {
			return err
		}

		ctx.SeeOther("/project/%d/membership", p.ID())
		return nil
	}

	members, err := ctx.db.Members(p)
	if err != nil {
		return err
	}

	admins, err := ctx.db.Admins(p)
	if err != nil {
		return err
	}
	var adminIDs = make(map[int]bool)
	for _, a := range admins {
		adminIDs[a.ID()] = true
	}

	// all usernames, for the add form's datalist
	users, err := ctx.db.GetAllUsers(1000, 0)
	if err != nil {
		return err
	}
	var usernames = []string{}
	for _, u := range users {
		usernames = append(usernames, u.Username())
	}

	return membershipTmpl.Execute(w, &membershipData{
		context:   ctx,
		Project:   p,
		Members:   members,
		Usernames: usernames,
		adminIDs:  adminIDs,
	})
}
