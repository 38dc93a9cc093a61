// Package httpx reúne utilitários de resposta HTTP compartilhados por handlers e middlewares.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
)

// JSON envia data como JSON com o status informado.
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorBody traduz err para o corpo de erro padronizado da API.
func ErrorBody(err error) domain.ErrorResponse {
	status, category, message := apperror.MapToHTTPStatus(err)
	body := domain.ErrorResponse{Code: status, Category: category, Message: message}

	var insufficient *apperror.InsufficientStockError
	if errors.As(err, &insufficient) {
		body.ProductID = insufficient.ProductID
	}
	return body
}

// Error envia a resposta de erro padronizada.
func Error(w http.ResponseWriter, err error) {
	body := ErrorBody(err)
	_ = JSON(w, body.Code, body)
}

// Respond processa o resultado de um serviço: sucesso com successStatus ou erro mapeado.
func Respond(w http.ResponseWriter, r *http.Request, log logger.Logger, data any, err error, successStatus int) {
	if err == nil {
		log.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})
		if jsonErr := JSON(w, successStatus, data); jsonErr != nil {
			log.Error("Falha ao codificar JSON de resposta", jsonErr)
		}
		return
	}

	body := ErrorBody(err)
	if body.Code >= 500 {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", body.Category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", body.Code, body.Category), map[string]interface{}{"path": r.URL.Path})
	}
	_ = JSON(w, body.Code, body)
}

// DecodeJSON decodifica o corpo da requisição; JSON malformado vira ValidationError.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}
