package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"carteira/internal/core"
	"carteira/internal/forms"
	"carteira/internal/services"
)

type cardsView struct {
	Cards []core.CreditCard
	Flags []core.CardFlag
}

type billsView struct {
	Card  core.CreditCard
	Bills []core.Bill
}

// billView feeds bill.html. Categories fill the new purchase form.
type billView struct {
	services.BillDetail
	Categories []core.Category
	Today      string
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var v cardsView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { v.Cards, err = s.deps.Cards.List(ctx, false); return })
	if !isHTMX(r) {
		g.Go(func() (err error) { v.Flags, err = s.deps.Cards.Flags(ctx); return })
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "Não foi possível carregar os cartões")
		return
	}
	s.renderView(w, r, "cards.html", "cards_list.html", s.newPage(r, "Cartões", "cards", v))
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	body, fail := parseBody(w, r)
	if fail != nil {
		fail.Write(w)
		return
	}
	in, err := forms.ParseCard(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	card, err := s.deps.Cards.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, "Não foi possível criar o cartão")
		return
	}
	s.changed(w, "Cartão criado", NewHTMXResponse().
		TriggerCardChanged(card.UUID).
		TriggerFormReset())
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
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
	in, err := forms.ParseCard(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if _, err := s.deps.Cards.Update(r.Context(), id, in); err != nil {
		s.fail(w, r, err, "Não foi possível atualizar o cartão")
		return
	}
	s.changed(w, "Cartão atualizado", NewHTMXResponse().
		TriggerCardChanged(id).
		TriggerFormReset())
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	if err := s.deps.Cards.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, "Não foi possível excluir o cartão")
		return
	}
	s.changed(w, "Cartão excluído", NewHTMXResponse().TriggerCardChanged(id))
}

func (s *Server) handleCardStatus(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "uuid")
		if !ok {
			badID(w)
			return
		}
		var (
			err error
			msg = "Cartão ativado"
		)
		if active {
			err = s.deps.Cards.Activate(r.Context(), id)
		} else {
			err = s.deps.Cards.Deactivate(r.Context(), id)
			msg = "Cartão desativado"
		}
		if err != nil {
			s.fail(w, r, err, "Não foi possível alterar o cartão")
			return
		}
		s.changed(w, msg, NewHTMXResponse().TriggerCardChanged(id))
	}
}

// handleBills lists the faturas of one card.
func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	var v billsView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { v.Card, err = s.deps.Cards.Get(ctx, id); return })
	g.Go(func() (err error) { v.Bills, err = s.deps.Cards.Bills(ctx, id); return })
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "Não foi possível carregar as faturas")
		return
	}
	s.renderView(w, r, "bills.html", "bills_list.html", s.newPage(r, "Faturas "+v.Card.Description, "cards", v))
}

func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "uuid")
	if !ok {
		badID(w)
		return
	}
	var v billView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { v.BillDetail, err = s.deps.Cards.Bill(ctx, id); return })
	if !isHTMX(r) {
		g.Go(func() (err error) { v.Categories, err = s.deps.Categories.Active(ctx, false); return })
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, err, "Não foi possível carregar a fatura")
		return
	}
	v.Today = core.Today(s.now())
	s.renderView(w, r, "bill.html", "bill_items.html", s.newPage(r, "Fatura "+v.Bill.MonthName, "cards", v))
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
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
	amount, err := forms.ParsePayment(body)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := s.deps.Cards.PayBill(r.Context(), id, amount); err != nil {
		s.fail(w, r, err, "Não foi possível pagar a fatura")
		return
	}
	s.changed(w, "Pagamento registrado", NewHTMXResponse().
		TriggerCardChanged(id).
		TriggerFormReset())
}

func (s *Server) handleAddBillItem(w http.ResponseWriter, r *http.Request) {
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
	in, err := forms.ParseBillItem(body, id)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if err := s.deps.Cards.AddBillItem(r.Context(), in); err != nil {
		s.fail(w, r, err, "Não foi possível adicionar a compra")
		return
	}
	s.changed(w, "Compra adicionada", NewHTMXResponse().
		TriggerCardChanged(id).
		TriggerFormReset())
}
