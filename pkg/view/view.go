// Package view renders server-side HTML pages around a shared layout.
// The layout surfaces the per-request flash messages and the current
// user so individual pages only provide their body markup.
package view

import (
	"html/template"
	"net/http"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/reqctx"
)

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}} — INFANPS</title>
</head>
<body>
<header>
{{if .CurrentUser}}<nav>{{.CurrentUser.Name}} &middot; <a href="/logout">Cerrar sesión</a></nav>{{else}}<nav><a href="/login">Iniciar sesión</a> &middot; <a href="/register">Registro</a></nav>{{end}}
</header>
{{range index .Flash "success"}}<p class="flash flash-success">{{.}}</p>
{{end}}{{range index .Flash "message"}}<p class="flash flash-message">{{.}}</p>
{{end}}<main>
{{.Body}}
</main>
</body>
</html>
`))

type page struct {
	Title       string
	Flash       map[string][]string
	CurrentUser *auth.Identity
	Body        template.HTML
}

// Render writes the page with a 200 status. Flash messages included in
// the output have already been consumed from the session, so a reload
// will not show them again.
func Render(w http.ResponseWriter, title string, body template.HTML, rc *reqctx.Context) {
	p := page{Title: title, Body: body}
	if rc != nil {
		p.Flash = rc.Flash
		p.CurrentUser = rc.CurrentUser
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Execute(w, p); err != nil {
		// Headers are already out at this point; nothing useful to send.
		return
	}
}
