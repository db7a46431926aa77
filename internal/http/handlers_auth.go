package http

import (
	"net/http"

	"carteira/internal/api"
	"carteira/internal/auth"
	"carteira/internal/forms"
	"carteira/internal/log"
)

// authForm is what the login, signup and password pages render.
type authForm struct {
	Email string
	Name  string
	Token string
	Sent  bool
}

func (s *Server) authPage(r *http.Request, title string, f authForm) page {
	p := page{Title: title, Data: f}
	switch {
	case r.URL.Query().Has("registered"):
		p.Flash = "Conta criada. Entre com seu email e senha."
	case r.URL.Query().Has("reset"):
		p.Flash = "Senha alterada. Entre com a nova senha."
	}
	return p
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.deps.Guard.Current(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", s.authPage(r, "Entrar", authForm{}))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	p := page{Title: "Entrar"}

	in, err := forms.ParseLogin(body)
	p.Data = authForm{Email: in.Email}
	if err != nil {
		p.Error = forms.Translate(err)
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	token, err := s.deps.API.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected",
			log.FieldComponent, log.ComponentAuth,
			log.FieldOperation, log.OpLogin,
			log.FieldError, err.Error())
		p.Error = api.UserMessage(err, "Não foi possível entrar. Tente novamente.")
		s.render(w, r, http.StatusUnauthorized, "login.html", p)
		return
	}

	if _, err := s.deps.Guard.Login(w, r, token); err != nil {
		s.slog.LogError(r.Context(), "Failed to create session", err, log.ComponentAuth, log.OpLogin, nil)
		p.Error = "Não foi possível iniciar a sessão."
		s.render(w, r, http.StatusInternalServerError, "login.html", p)
		return
	}
	auth.Redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.deps.Guard.Logout(w, r)
	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged out",
		log.FieldComponent, log.ComponentAuth,
		log.FieldOperation, log.OpLogout)
	auth.Redirect(w, r, "/login")
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", s.authPage(r, "Criar conta", authForm{}))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	p := page{Title: "Criar conta", Data: authForm{Name: body.Get("name"), Email: body.Get("email")}}

	reg, err := forms.ParseSignup(body)
	if err != nil {
		p.Error = forms.Translate(err)
		s.render(w, r, http.StatusUnprocessableEntity, "signup.html", p)
		return
	}
	if err := s.deps.API.Register(r.Context(), reg); err != nil {
		p.Error = api.UserMessage(err, "Não foi possível criar a conta.")
		s.render(w, r, http.StatusBadGateway, "signup.html", p)
		return
	}
	auth.Redirect(w, r, "/login?registered=1")
}

func (s *Server) handleForgotPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "forgot.html", s.authPage(r, "Recuperar senha", authForm{}))
}

func (s *Server) handleForgot(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	email, err := forms.ParseForgot(body)
	p := page{Title: "Recuperar senha", Data: authForm{Email: email}}
	if err != nil {
		p.Error = forms.Translate(err)
		s.render(w, r, http.StatusUnprocessableEntity, "forgot.html", p)
		return
	}
	if err := s.deps.API.ForgotPassword(r.Context(), email); err != nil {
		p.Error = api.UserMessage(err, "Não foi possível enviar o email de recuperação.")
		s.render(w, r, http.StatusBadGateway, "forgot.html", p)
		return
	}
	p.Data = authForm{Email: email, Sent: true}
	s.render(w, r, http.StatusOK, "forgot.html", p)
}

func (s *Server) handleResetPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "reset.html", s.authPage(r, "Nova senha", authForm{Token: r.URL.Query().Get("token")}))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseReset(body)
	p := page{Title: "Nova senha", Data: authForm{Token: in.Token}}
	if err != nil {
		p.Error = forms.Translate(err)
		s.render(w, r, http.StatusUnprocessableEntity, "reset.html", p)
		return
	}
	if err := s.deps.API.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		p.Error = api.UserMessage(err, "Link inválido ou expirado.")
		s.render(w, r, http.StatusBadGateway, "reset.html", p)
		return
	}
	auth.Redirect(w, r, "/login?reset=1")
}
