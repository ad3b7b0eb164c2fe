package backend

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/DNSK-LINK/basecamp-replica/core"
	"github.com/DNSK-LINK/basecamp-replica/util"
	"github.com/julienschmidt/httprouter"
)

const projectsPerPage = 20

var projectsTmpl = tmpl(`<h1>Projects</h1>

	<h2>My projects</h2>

	<table class="table table-sm">
		<thead>
			<tr>
				<th>Title</th>
				<th>Members</th>
				<th>Messages</th>
				<th>Created</th>
			</tr>
		</thead>
		<tbody>
			{{ range .Mine }}
				<tr>
					<td><a href="project/{{ .Project.ID }}">{{ .Project.Title }}</a> <small class="text-muted">{{ Trunc .Project.Description 60 }}</small></td>
					<td>{{ .Members }}</td>
					<td>{{ .Messages }}</td>
					<td>{{ $.FormatDateTime .Project.TsCreated }}</td>
				</tr>
			{{ else }}
				<tr><td colspan="4">No projects yet. <a href="create_project">Create one</a>.</td></tr>
			{{ end }}
		</tbody>
	</table>

	<h2>Shared with me</h2>

	<table class="table table-sm">
		<tbody>
			{{ range .Shared }}
				<tr>
					<td><a href="project/{{ .Project.ID }}">{{ .Project.Title }}</a> <small class="text-muted">{{ Trunc .Project.Description 60 }}</small></td>
					<td>{{ .Members }}</td>
					<td>{{ .Messages }}</td>
					<td>{{ $.FormatDateTime .Project.TsCreated }}</td>
				</tr>
			{{ else }}
				<tr><td colspan="4">Nothing shared with you.</td></tr>
			{{ end }}
		</tbody>
	</table>

	{{ if .Pagelinks }}
		<nav>
			<ul class="pagination">
				{{ range .Pagelinks }}
					{{ . }}
				{{ end }}
			</ul>
		</nav>
	{{ end }}`)

type projectEntry struct {
	Project  core.DBProject
	Members  int
	Messages int
}

type projectsData struct {
	*context
	Mine      []projectEntry
	Shared    []projectEntry
	Pagelinks []template.HTML
}

func projects(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var page, _ = strconv.Atoi(req.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	count, err := ctx.db.CountProjectsOf(ctx.User)
	if err != nil {
		return err
	}

	var numPages = (count + projectsPerPage - 1) / projectsPerPage

	list, err := ctx.db.GetProjectsOf(ctx.User, projectsPerPage, (page-1)*projectsPerPage)
	if err != nil {
		return err
	}

	var data = &projectsData{
		context: ctx,
	}

	for _, p := range list {

		members, err := ctx.db.Members(p)
		if err != nil {
			return err
		}

		messages, err := ctx.db.CountMessagesOf(p)
		if err != nil {
			return err
		}

		var entry = projectEntry{
			Project:  p,
			Members:  len(members),
			Messages: messages,
		}

		if p.CreatedBy() == ctx.User.ID() {
			data.Mine = append(data.Mine, entry)
		} else {
			data.Shared = append(data.Shared, entry)
		}
	}

	if numPages > 1 {
		data.Pagelinks = util.PageLinks(
			page,
			numPages,
			func(page int, name string) string {
				return fmt.Sprintf(`<li class="page-item"><a class="page-link" href="project?page=%d">%s</a></li>`, page, name)
			},
			func(page int, name string) string {
				return fmt.Sprintf(`<li class="page-item active"><span class="page-link">%s</span></li>`, name)
			},
		)
	}

	return projectsTmpl.Execute(w, data)
}
