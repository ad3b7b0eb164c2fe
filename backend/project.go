package backend

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/julienschmidt/httprouter"
)

var projectTmpl = tmpl(`<h1>{{ .Project.Title }}</h1>

	{{ if .IsAdmin }}
		<p>
			<a class="btn btn-sm btn-outline-primary" href="edit_project/{{ .Project.ID }}">Edit</a>
			<a class="btn btn-sm btn-outline-primary" href="project/{{ .Project.ID }}/membership">Membership</a>
			<a class="btn btn-sm btn-outline-danger" href="delete_project/{{ .Project.ID }}">Delete</a>
		</p>
	{{ end }}

	<div class="card mb-3">
		<div class="card-body">
			{{ Markdown .Project.Description }}
			<small class="text-muted">created by {{ .Creator.Username }} on {{ $.FormatDateTime .Project.TsCreated }}</small>
		</div>
	</div>

	<h2>Discussions</h2>

	{{ range .Discussions }}
		<div class="card mb-2">
			<div class="card-header">{{ .Discussion.Name }}</div>
			<div class="card-body">
				{{ range .Messages }}
					<p class="mb-1"><strong>{{ .Username }}</strong>: {{ .Text }} <small class="text-muted">{{ $.FormatDateTime .TsCreated }}</small></p>
				{{ else }}
					<p class="text-muted">No messages yet.</p>
				{{ end }}
				<form method="post" action="project/{{ $.Project.ID }}/add-info" class="form-inline mt-2">
					<input type="hidden" name="option" value="message">
					<input type="hidden" name="discussion_id" value="{{ .Discussion.ID }}">
					<input type="text" class="form-control mr-2" name="title" maxlength="255" placeholder="Message" required>
					<button type="submit" class="btn btn-sm btn-primary">Send</button>
				</form>
			</div>
		</div>
	{{ else }}
		<p class="text-muted">No discussions yet.</p>
	{{ end }}

	<form method="post" action="project/{{ .Project.ID }}/add-info" class="form-inline mb-4">
		<input type="hidden" name="option" value="discussion">
		<input type="text" class="form-control mr-2" name="title" maxlength="255" placeholder="New discussion" required>
		<button type="submit" class="btn btn-sm btn-primary">Add discussion</button>
	</form>

	<h2>Tasks</h2>

	<table class="table table-sm">
		<tbody>
			{{ range .Tasks }}
				<tr>
					<td {{ if .Solved }}style="text-decoration: line-through;"{{ end }}>{{ .Name }}</td>
					<td>{{ $.FormatDateTime .TsCreated }}</td>
					<td>
						<form method="post" action="project/{{ $.Project.ID }}/task/{{ .ID }}">
							<button type="submit" class="btn btn-sm btn-outline-secondary">
								{{ if .Solved }}Reopen{{ else }}Solve{{ end }}
							</button>
						</form>
					</td>
				</tr>
			{{ else }}
				<tr><td colspan="3">No tasks yet.</td></tr>
			{{ end }}
		</tbody>
	</table>

	<form method="post" action="project/{{ .Project.ID }}/add-info" class="form-inline mb-4">
		<input type="hidden" name="option" value="task">
		<input type="text" class="form-control mr-2" name="title" maxlength="255" placeholder="New task" required>
		<button type="submit" class="btn btn-sm btn-primary">Add new task</button>
	</form>

	<h2>Attachments</h2>

	<ul>
		{{ range .Attachments }}
			<li><a href="project/{{ $.Project.ID }}/file/{{ .ID }}">{{ .Filename }}</a> <small class="text-muted">{{ $.FormatDateTime .TsCreated }}</small></li>
		{{ else }}
			<li class="text-muted">No attachments yet.</li>
		{{ end }}
	</ul>

	<form method="post" action="project/{{ .Project.ID }}/add-info" enctype="multipart/form-data" class="form-inline mb-4">
		<input type="hidden" name="option" value="attachment">
		<input type="file" class="form-control-file mr-2" name="file" required>
		<button type="submit" class="btn btn-sm btn-primary">Add attachment</button>
	</form>

	<h2>Members</h2>

	<ul>
		{{ range .Members }}
			<li>{{ .Username }}{{ if $.IsUserAdmin . }} <span class="badge badge-secondary">admin</span>{{ end }}</li>
		{{ end }}
	</ul>`)

type discussionView struct {
	Discussion core.DBDiscussion
	Messages   []core.DBMessage
}

type projectData struct {
	*context
	Project     core.DBProject
	Creator     core.DBUser
	IsAdmin     bool
	Discussions []discussionView
	Tasks       []core.DBTask
	Attachments []core.DBAttachment
	Members     []core.DBUser
	adminIDs    map[int]bool
}

func (data *projectData) IsUserAdmin(u core.DBUser) bool {
	return data.adminIDs[u.ID()]
}

func projectDetail(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanView)
	if err != nil {
		return err
	}

	creator, err := ctx.db.GetUser(p.CreatedBy())
	if err != nil {
		return err
	}

	discussions, err := ctx.db.GetDiscussionsOf(p)
	if err != nil {
		return err
	}

	var views = []discussionView{}
	for _, d := range discussions {
		messages, err := ctx.db.GetMessagesOf(d)
		if err != nil {
			return err
		}
		views = append(views, discussionView{
			Discussion: d,
			Messages:   messages,
		})
	}

	tasks, err := ctx.db.GetTasksOf(p)
	if err != nil {
		return err
	}

	attachments, err := ctx.db.GetAttachmentsOf(p)
	if err != nil {
		return err
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

	return projectTmpl.Execute(w, &projectData{
		context:     ctx,
		Project:     p,
		Creator:     creator,
		IsAdmin:     ctx.CanChange(p.ID()),
		Discussions: views,
		Tasks:       tasks,
		Attachments: attachments,
		Members:     members,
		adminIDs:    adminIDs,
	})
}

// addInfo adds a discussion, message, task or attachment to a project,
// selected by the "option" value. View access suffices, any member may
// contribute.
func addInfo(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanView)
	if err != nil {
		return err
	}

	var title = req.PostFormValue("title")

	switch req.PostFormValue("option") {

	case "discussion":
		if _, err := ctx.db.AddDiscussion(p, title); err != nil {
			return formResult(ctx, p, err)
		}

	case "message":
		discussionID, err := strconv.Atoi(req.PostFormValue("discussion_id"))
		if err != nil {
			return core.ErrDenied
		}
		d, err := ctx.db.GetDiscussion(discussionID)
		if err != nil || d.ProjectID() != p.ID() {
			return core.ErrDenied
		}
		if _, err := ctx.db.PostMessage(d, ctx.User, title); err != nil {
			return formResult(ctx, p, err)
		}

	case "task":
		if _, err := ctx.db.AddTask(p, title); err != nil {
			return formResult(ctx, p, err)
		}

	case "attachment":
		file, header, err := req.FormFile("file")
		if err != nil {
			return formResult(ctx, p, core.ValidationError("no file given"))
		}
		defer file.Close()
		if _, err := ctx.db.AddAttachment(p, header.Filename, file); err != nil {
			return formResult(ctx, p, err)
		}

	default:
		return fmt.Errorf("unknown option %s", req.PostFormValue("option"))
	}

	ctx.SeeOther("/project/%d", p.ID())
	return nil
}

// formResult turns a ValidationError into a notification and a redirect back
// to the project. Other errors propagate.
func formResult(ctx *context, p core.DBProject, err error) error {
	if _, ok := err.(core.ValidationError); ok {
		ctx.Danger(err)
		ctx.SeeOther("/project/%d", p.ID())
		return nil
	}
	return err
}

func solveTask(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanView)
	if err != nil {
		return err
	}

	taskID, err := strconv.Atoi(params.ByName("task"))
	if err != nil {
		return core.ErrDenied
	}

	t, err := ctx.db.GetTask(taskID)
	if err != nil || t.ProjectID() != p.ID() {
		return core.ErrDenied
	}

	if err := ctx.db.SetSolved(t, !t.Solved()); err != nil {
		return err
	}

	ctx.SeeOther("/project/%d", p.ID())
	return nil
}

func downloadAttachment(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	p, err := ctx.requireProject(params.ByName("id"), ctx.db.CanView)
	if err != nil {
		return err
	}

	attachmentID, err := strconv.Atoi(params.ByName("file"))
	if err != nil {
		return core.ErrDenied
	}

	a, err := ctx.db.GetAttachment(attachmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.ErrDenied
		}
		return err
	}
	if a.ProjectID() != p.ID() {
		return core.ErrDenied
	}

	src, err := ctx.db.Uploads.Open(a.Path(), a.Filename())
	if err != nil {
		return err
	}
	defer src.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename()))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, err = io.Copy(w, src)
	return err
}
