// Package securityinfo serves the online-safety information section.
package securityinfo

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/view"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Register(r chi.Router) {
	r.Get("/seguridad", s.index)
}

func (s *Service) index(w http.ResponseWriter, r *http.Request) {
	rc := reqctx.MustFromContext(r.Context())
	body := template.HTML(`<h1>Información de seguridad</h1>
<p>Recomendaciones para padres, madres y tutores sobre la navegación segura de los menores.</p>`)
	view.Render(w, "Información de seguridad", body, rc)
}
