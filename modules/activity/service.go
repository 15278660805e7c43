// Package activity serves the interactive-activities section. The
// activities themselves are authored content; this group only guards
// access and flashes guidance for anonymous visitors.
package activity

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/flash"
	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/session"
	"github.com/Eerick6/infanps/pkg/view"
)

type Service struct {
	auth *auth.Service
}

func NewService(authSvc *auth.Service) *Service {
	return &Service{auth: authSvc}
}

func (s *Service) Register(r chi.Router) {
	r.Get("/actividades", s.index)
}

func (s *Service) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.auth.IsAuthenticated(ctx) {
		sess := session.MustFromContext(ctx)
		flash.Push(sess, flash.CategoryMessage, "Inicie sesión para acceder a las actividades")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	rc := reqctx.MustFromContext(ctx)
	body := template.HTML(`<h1>Actividades</h1>
<p>Actividades interactivas para reforzar el aprendizaje.</p>`)
	view.Render(w, "Actividades", body, rc)
}
