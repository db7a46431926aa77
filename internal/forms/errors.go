package forms

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"carteira/internal/core"
)

var fieldNames = map[string]string{
	"value":            "Valor",
	"amount":           "Valor",
	"balance":          "Saldo",
	"limit":            "Limite",
	"description":      "Descrição",
	"date":             "Data",
	"close_date":       "Data de fechamento",
	"expiry_date":      "Data de validade",
	"category":         "Categoria",
	"account":          "Conta",
	"to_account":       "Conta de destino",
	"bank":             "Banco",
	"type":             "Tipo de conta",
	"flag":             "Bandeira",
	"card":             "Cartão",
	"installments":     "Parcelas",
	"name":             "Nome",
	"email":            "Email",
	"number":           "Telefone",
	"phone":            "Telefone",
	"password":         "Senha",
	"confirm":          "Confirmação de senha",
	"current_password": "Senha atual",
	"token":            "Token",
	"from":             "Data inicial",
	"to":               "Data final",
}

var domainMessages = map[error]string{
	core.ErrInvalidAmount:       "Informe um valor maior que zero",
	core.ErrEmptyDescription:    "Descrição é obrigatória",
	core.ErrShortDescription:    "Descrição deve ter no mínimo 3 caracteres",
	core.ErrLongDescription:     "Descrição deve ter no máximo 200 caracteres",
	core.ErrInvalidDate:         "Data inválida",
	core.ErrMissingCategory:     "Categoria é obrigatória",
	core.ErrMissingAccount:      "Conta é obrigatória",
	core.ErrSameAccount:         "A conta de destino deve ser diferente da conta de origem",
	core.ErrInactiveDestination: "A conta de destino está inativa",
	core.ErrUnknownAccount:      "Conta não encontrada",
	core.ErrInsufficientBalance: "Saldo insuficiente na conta de origem",
	core.ErrInvalidInstallments: "Parcelas devem estar entre 2 e 24",
	core.ErrMissingCard:         "Cartão é obrigatório",
	core.ErrMissingBill:         "Fatura é obrigatória",
	core.ErrEmptyName:           "Nome é obrigatório",
	core.ErrMissingBank:         "Banco é obrigatório",
	core.ErrMissingAccountType:  "Tipo de conta é obrigatório",
}

// IsInvalid reports whether err is a problem with user input rather than
// with the backend.
func IsInvalid(err error) bool {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	for sentinel := range domainMessages {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Translate turns a validation or domain error into the message shown in
// the error toast. Only the first failing field is reported.
func Translate(err error) string {
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return translateField(ve[0])
	}
	for sentinel, msg := range domainMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Dados inválidos"
}

func fieldName(field string) string {
	if n, ok := fieldNames[field]; ok {
		return n
	}
	return field
}

func translateField(fe validator.FieldError) string {
	name := fieldName(fe.Field())

	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("%s é obrigatório", name)
	case "email":
		return "Email inválido"
	case "money", "amount":
		return fmt.Sprintf("%s inválido: informe um valor maior que zero", name)
	case "datetime":
		return fmt.Sprintf("%s inválida", name)
	case "min":
		if fe.Kind().String() == "int" {
			return fmt.Sprintf("%s deve ser no mínimo %s", name, fe.Param())
		}
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", name, fe.Param())
	case "max":
		if fe.Kind().String() == "int" {
			return fmt.Sprintf("%s deve ser no máximo %s", name, fe.Param())
		}
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", name, fe.Param())
	case "eqfield":
		return "As senhas não conferem"
	case "nefield":
		return "A conta de destino deve ser diferente da conta de origem"
	}
	return fmt.Sprintf("%s inválido", name)
}
