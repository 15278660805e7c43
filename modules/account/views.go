package account

import (
	"html/template"
	"net/http"

	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/view"
)

const loginForm template.HTML = `<h1>Iniciar sesión</h1>
<form method="post" action="/login">
<label>Correo <input type="email" name="email" required></label>
<label>Contraseña <input type="password" name="password" required></label>
<button type="submit">Entrar</button>
</form>`

const registerForm template.HTML = `<h1>Registro</h1>
<form method="post" action="/register">
<label>Nombre <input type="text" name="name"></label>
<label>Correo <input type="email" name="email" required></label>
<label>Contraseña <input type="password" name="password" required></label>
<button type="submit">Crear cuenta</button>
</form>`

func renderPage(w http.ResponseWriter, title string, body template.HTML, rc *reqctx.Context) {
	view.Render(w, title, body, rc)
}
