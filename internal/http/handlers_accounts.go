package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"carteira/internal/core"
	"carteira/internal/forms"
)

type accountsView struct {
	Accounts []core.Account
	Banks    []core.Bank
	Types    []core.AccountType
}

// statementView feeds statement.html. Accounts and Categories fill the
// transfer modal.
type statementView struct {
	Account    core.Account
	Statement  core.Statement
	Accounts   []core.Account
	Categories []core.Category
	Today      string
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	var v accountsView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { v.Accounts, err = s.deps.Accounts.List(ctx, false); return })
	if !isHTMX(r) {
		g.Go(func() (err error) { v.Banks, err = s.deps.Accounts.Banks(ctx); return })
		g.Go(func() (err error) { v.Types, err = s.deps.Accounts.Types(ctx); return })
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "Não foi possível carregar as contas")
		return
	}
	s.renderView(w, r, "accounts.html", "accounts_list.html", s.newPage(r, "Contas", "accounts", v))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseAccount(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	acc, err := s.deps.Accounts.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, "Não foi possível criar a conta")
		return
	}
	s.changed(w, "Conta criada", NewHTMXResponse().
		TriggerAccountChanged(acc.UUID).
		TriggerFormReset())
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseAccount(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if _, err := s.deps.Accounts.Update(r.Context(), id, in); err != nil {
		s.fail(w, r, err, "Não foi possível atualizar a conta")
		return
	}
	s.changed(w, "Conta atualizada", NewHTMXResponse().
		TriggerAccountChanged(id).
		TriggerFormReset())
}

func (s *Server) handleAccountStatus(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "uuid")
		if !ok {
			badID(w)
			return
		}
		var (
			err error
			msg = "Conta ativada"
		)
		if active {
			err = s.deps.Accounts.Activate(r.Context(), id)
		} else {
			err = s.deps.Accounts.Deactivate(r.Context(), id)
			msg = "Conta desativada"
		}
		if err != nil {
			s.fail(w, r, err, "Não foi possível alterar a conta")
			return
		}
		s.changed(w, msg, NewHTMXResponse().TriggerAccountChanged(id))
	}
}

// handleStatement renders the extract of one account, transfer legs signed
// from its point of view.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}

	var v statementView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { v.Account, err = s.deps.Accounts.Get(ctx, id); return })
	g.Go(func() (err error) { v.Statement, err = s.deps.Accounts.Statement(ctx, id); return })
	if !isHTMX(r) {
		g.Go(func() (err error) { v.Accounts, err = s.deps.Accounts.List(ctx, true); return })
		g.Go(func() (err error) { v.Categories, err = s.deps.Categories.Active(ctx, false); return })
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "Não foi possível carregar o extrato")
		return
	}
	v.Today = core.Today(s.now())
	s.renderView(w, r, "statement.html", "statement_rows.html", s.newPage(r, "Extrato "+v.Account.Name, "accounts", v))
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	t, err := forms.ParseTransfer(body, id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	tx, err := s.deps.Ledger.Transfer(r.Context(), t)
	if err != nil {
		s.fail(w, r, err, "Não foi possível realizar a transferência")
		return
	}
	s.changed(w, "Transferência realizada", NewHTMXResponse().
		TriggerTransactionChanged(core.EntryTransfer, tx.UUID).
		TriggerAccountChanged(id).
		TriggerFormReset())
}
