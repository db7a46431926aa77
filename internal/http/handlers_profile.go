package http

import (
	"net/http"

	"carteira/internal/forms"
)

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.deps.Profile.Missions(r.Context())
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar as missões")
		return
	}
	s.render(w, r, http.StatusOK, "missions.html", s.newPage(r, "Missões", "missions", missions))
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.deps.Profile.Achievements(r.Context())
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar as conquistas")
		return
	}
	s.render(w, r, http.StatusOK, "achievements.html", s.newPage(r, "Conquistas", "achievements", achievements))
}

// handleProfile shows the user card with rank, XP and the edit form.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	g, err := s.deps.Profile.Gamification(r.Context())
	if err != nil {
		s.fail(w, r, err, "Não foi possível carregar o perfil")
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", s.newPage(r, "Perfil", "profile", g))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseProfile(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := s.deps.Profile.Update(r.Context(), in); err != nil {
		s.fail(w, r, err, "Não foi possível atualizar o perfil")
		return
	}
	s.changed(w, "Perfil atualizado", NewHTMXResponse().TriggerFormReset())
}
