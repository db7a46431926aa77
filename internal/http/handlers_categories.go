package http

import (
	"net/http"

	"carteira/internal/core"
	"carteira/internal/forms"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.All(r.Context())
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar as categorias")
		return
	}
	s.renderView(w, r, "categories.html", "categories_list.html", s.newPage(r, "Categorias", "categories", cats))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	s.saveCategory(w, r, "")
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	s.saveCategory(w, r, id)
}

// saveCategory creates when id is empty and updates otherwise.
func (s *Server) saveCategory(w http.ResponseWriter, r *http.Request, id string) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseCategory(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	var cat core.Category
	msg := "Categoria criada"
	if id == "" {
		cat, err = s.deps.Categories.Create(r.Context(), in)
	} else {
		cat, err = s.deps.Categories.Update(r.Context(), id, in)
		msg = "Categoria atualizada"
	}
	if err != nil {
		s.fail(w, r, err, "Não foi possível salvar a categoria")
		return
	}
	s.logger.DebugContext(r.Context(), "Category saved", "category_uuid", cat.UUID, "earn", cat.Earn)
	s.changed(w, msg, NewHTMXResponse().
		TriggerCategoryChanged().
		TriggerFormReset())
}
