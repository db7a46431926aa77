package http

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"carteira/internal/core"
	"carteira/internal/forms"
)

// ledgerKind binds the despesa and receita routes to their service calls.
type ledgerKind struct {
	path   string
	kind   string
	title  string
	noun   string
	earn   bool
	list   func(s *Server, ctx context.Context, from, to string) ([]core.Transaction, error)
	create func(s *Server, ctx context.Context, e core.Entry) (core.Transaction, error)
	update func(s *Server, ctx context.Context, uuid string, e core.Entry) (core.Transaction, error)
	delete func(s *Server, ctx context.Context, uuid string) error
}

var (
	despesas = ledgerKind{
		path:  "despesas",
		kind:  core.EntryDespesa,
		title: "Despesas",
		noun:  "Despesa",
		list: func(s *Server, ctx context.Context, from, to string) ([]core.Transaction, error) {
			return s.deps.Ledger.Despesas(ctx, from, to)
		},
		create: func(s *Server, ctx context.Context, e core.Entry) (core.Transaction, error) {
			return s.deps.Ledger.CreateDespesa(ctx, e)
		},
		update: func(s *Server, ctx context.Context, uuid string, e core.Entry) (core.Transaction, error) {
			return s.deps.Ledger.UpdateDespesa(ctx, uuid, e)
		},
		delete: func(s *Server, ctx context.Context, uuid string) error {
			return s.deps.Ledger.DeleteDespesa(ctx, uuid)
		},
	}
	receitas = ledgerKind{
		path:  "receitas",
		kind:  core.EntryReceita,
		title: "Receitas",
		noun:  "Receita",
		earn:  true,
		list: func(s *Server, ctx context.Context, from, to string) ([]core.Transaction, error) {
			return s.deps.Ledger.Receitas(ctx, from, to)
		},
		create: func(s *Server, ctx context.Context, e core.Entry) (core.Transaction, error) {
			return s.deps.Ledger.CreateReceita(ctx, e)
		},
		update: func(s *Server, ctx context.Context, uuid string, e core.Entry) (core.Transaction, error) {
			return s.deps.Ledger.UpdateReceita(ctx, uuid, e)
		},
		delete: func(s *Server, ctx context.Context, uuid string) error {
			return s.deps.Ledger.DeleteReceita(ctx, uuid)
		},
	}
)

// ledgerView feeds ledger.html and ledger_table.html.
type ledgerView struct {
	Path       string
	Kind       string
	Title      string
	Noun       string
	From, To   string
	Rows       []core.TransactionDisplay
	Total      core.Money
	Categories []core.Category
	Accounts   []core.Account
	Today      string
}

func (k ledgerKind) view(rows []core.Transaction, from, to string) ledgerView {
	return ledgerView{
		Path:  k.path,
		Kind:  k.kind,
		Title: k.title,
		Noun:  k.noun,
		From:  from,
		To:    to,
		Rows:  core.ClassifyAll(rows, ""),
		Total: core.SumValues(rows),
	}
}

// handleLedgerList renders the page with its form options, or only the
// table for htmx refreshes.
func (s *Server) handleLedgerList(k ledgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if isHTMX(r) {
			rows, err := k.list(s, ctx, "", "")
			if err != nil {
				s.fail(w, r, err, "Não foi possível carregar as "+strings.ToLower(k.title))
				return
			}
			s.render(w, r, http.StatusOK, "ledger_table.html", k.view(rows, "", ""))
			return
		}

		var (
			rows       []core.Transaction
			categories []core.Category
			accounts   []core.Account
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) { rows, err = k.list(s, gctx, "", ""); return })
		g.Go(func() (err error) { categories, err = s.deps.Categories.Active(gctx, k.earn); return })
		g.Go(func() (err error) { accounts, err = s.deps.Accounts.List(gctx, true); return })
		if err := g.Wait(); err != nil {
			s.fail(w, r, err, "Não foi possível carregar as "+strings.ToLower(k.title))
			return
		}

		v := k.view(rows, "", "")
		v.Categories = categories
		v.Accounts = accounts
		v.Today = core.Today(s.now())
		s.render(w, r, http.StatusOK, "ledger.html", s.newPage(r, k.title, k.path, v))
	}
}

func (s *Server) handleLedgerSearch(k ledgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := forms.ParseRange(r.URL.Query())
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		rows, err := k.list(s, r.Context(), from, to)
		if err != nil {
			s.fail(w, r, err, "Não foi possível pesquisar as "+strings.ToLower(k.title))
			return
		}
		s.render(w, r, http.StatusOK, "ledger_table.html", k.view(rows, from, to))
	}
}

func (s *Server) handleLedgerCreate(k ledgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, fail := parseBody(w, r)
		if fail != nil {
			fail.Write(w)
			return
		}
		e, err := forms.ParseEntry(body)
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		tx, err := k.create(s, r.Context(), e)
		if err != nil {
			s.fail(w, r, err, "Não foi possível salvar a "+strings.ToLower(k.noun))
			return
		}
		s.changed(w, k.noun+" registrada", NewHTMXResponse().
			TriggerTransactionChanged(k.kind, tx.UUID).
			TriggerAccountChanged(e.AccountUUID).
			TriggerFormReset())
	}
}

func (s *Server) handleLedgerUpdate(k ledgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		e, err := forms.ParseEntry(body)
		if err != nil {
			s.fail(w, r, err, "")
			return
		}
		if _, err := k.update(s, r.Context(), id, e); err != nil {
			s.fail(w, r, err, "Não foi possível atualizar a "+strings.ToLower(k.noun))
			return
		}
		s.changed(w, k.noun+" atualizada", NewHTMXResponse().
			TriggerTransactionChanged(k.kind, id).
			TriggerAccountChanged(e.AccountUUID).
			TriggerFormReset())
	}
}

// handleLedgerDelete answers with an empty body so hx-swap="outerHTML"
// removes the row.
func (s *Server) handleLedgerDelete(k ledgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "uuid")
		if !ok {
			badID(w)
			return
		}
		if err := k.delete(s, r.Context(), id); err != nil {
			s.fail(w, r, err, "Não foi possível excluir a "+strings.ToLower(k.noun))
			return
		}
		s.changed(w, k.noun+" excluída", NewHTMXResponse().
			TriggerTransactionChanged(k.kind, id).
			TriggerAccountChanged(""))
	}
}
