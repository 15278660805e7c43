// Package content serves the home page and the informative content
// section of the site.
package content

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/view"
)

type Service struct {
	auth *auth.Service
	log  *slog.Logger
}

func NewService(authSvc *auth.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{auth: authSvc, log: log}
}

func (s *Service) Register(r chi.Router) {
	r.Get("/", s.home)
	r.Get("/contenido", s.listing)
}

func (s *Service) home(w http.ResponseWriter, r *http.Request) {
	rc := reqctx.MustFromContext(r.Context())
	body := template.HTML(`<h1>INFANPS</h1>
<p>Plataforma informativa sobre el uso seguro de internet para niños, niñas y adolescentes.</p>
<ul>
<li><a href="/contenido">Contenido</a></li>
<li><a href="/seguridad">Información de seguridad</a></li>
<li><a href="/actividades">Actividades</a></li>
</ul>`)
	view.Render(w, "Inicio", body, rc)
}

func (s *Service) listing(w http.ResponseWriter, r *http.Request) {
	if !s.auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	rc := reqctx.MustFromContext(r.Context())
	body := template.HTML(`<h1>Contenido</h1>
<p>Material educativo disponible para usuarios registrados.</p>`)
	view.Render(w, "Contenido", body, rc)
}
