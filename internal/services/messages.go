package services

import (
	"context"
	"errors"

	"financas/internal/core"
	"financas/internal/gateway"
)

// User-facing messages.
const (
	MsgTransactionAdded = "Transação adicionada com sucesso!"
	MsgAddFailed        = "Erro ao adicionar: "
	MsgDeleteFailed     = "Erro ao excluir: "
	MsgUnknownError     = "Erro desconhecido"
	MsgGoalCreated      = "Meta criada com sucesso!"
	MsgGoalFailed       = "Erro: "
	MsgGoalUpdated      = "Meta atualizada com sucesso!"
	MsgUpdateFailed     = "Erro ao atualizar"
	MsgPINFormat        = "O PIN deve ter 4 dígitos."
	MsgPINSaved         = "PIN de segurança salvo com sucesso!"
	MsgNamesSaved       = "Nomes salvos com sucesso!"
	MsgSaveFailed       = "Erro ao salvar: "
	MsgLoginCheckFailed = "Erro ao verificar configurações: "
	MsgConnectionError  = "Erro de conexão"
	MsgDashboardFailed  = "Erro ao carregar painel: "
	MsgGoalsFailed      = "Erro ao carregar metas: "
	MsgSettingsFailed   = "Erro ao carregar configurações: "
	MsgTimeout          = "tempo de resposta esgotado"
)

var validationText = []struct {
	err  error
	text string
}{
	{core.ErrInvalidAmount, "valor inválido"},
	{core.ErrEmptyDescription, "descrição obrigatória"},
	{core.ErrLongDescription, "descrição muito longa (máximo 200 caracteres)"},
	{core.ErrEmptyCategory, "categoria obrigatória"},
	{core.ErrInvalidType, "tipo inválido"},
	{core.ErrInvalidDate, "data inválida"},
	{core.ErrEmptyGoalName, "nome da meta obrigatório"},
	{core.ErrInvalidTarget, "valor alvo inválido"},
	{core.ErrMissingID, "registro não informado"},
	{core.ErrInvalidPIN, MsgPINFormat},
}

// Reason is the text shown after a message prefix. Application failures
// show the backend's own message, which may be empty.
func Reason(err error) string {
	var appErr *gateway.ApplicationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return appErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	case errors.Is(err, core.ErrValidation):
		for _, v := range validationText {
			if errors.Is(err, v.err) {
				return v.text
			}
		}
	}
	return err.Error()
}

// ReasonOr is Reason with a fallback for failures that carry no text.
func ReasonOr(err error, fallback string) string {
	if r := Reason(err); r != "" {
		return r
	}
	return fallback
}
