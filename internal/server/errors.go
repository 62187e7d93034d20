package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	clientedomain "github.com/smallbiznis/clientes/internal/cliente/domain"
	"github.com/smallbiznis/clientes/internal/config"
	obslogger "github.com/smallbiznis/clientes/internal/observability/logger"
	"go.uber.org/zap"
)

type operation string

const (
	opGetCliente          operation = "get_cliente"
	opListClientes        operation = "list_clientes"
	opCreateCliente       operation = "create_cliente"
	opUpdateCliente       operation = "update_cliente"
	opUpdateClienteByBody operation = "update_cliente_by_body"
	opDeleteCliente       operation = "delete_cliente"
)

const msgInvalidID = "ID invalido"

// operationMessages holds the client-facing text per error kind. An empty
// entry means the kind is not expected for the operation and is reported as
// internal.
type operationMessages struct {
	validation string
	notFound   string
	conflict   string
	internal   string
}

var messages = map[operation]operationMessages{
	opGetCliente: {
		validation: msgInvalidID,
		notFound:   "Cliente no encontrado",
		internal:   "Error al obtener el cliente",
	},
	opListClientes: {
		validation: "Parametros faltantes",
		notFound:   "Clientes no encontrados",
		internal:   "Error al obtener los clientes",
	},
	opCreateCliente: {
		validation: "Datos incompletos",
		conflict:   "La cuenta ya existe",
		internal:   "Error al crear el cliente",
	},
	opUpdateCliente: {
		validation: "No hay datos para actualizar",
		notFound:   "Cliente no encontrado",
		internal:   "Error al actualizar el cliente",
	},
	opUpdateClienteByBody: {
		validation: "ID requerido para actualizar",
		notFound:   "Cliente no encontrado",
		internal:   "Error al actualizar cliente",
	},
	opDeleteCliente: {
		validation: msgInvalidID,
		notFound:   "Cliente no encontrado",
		internal:   "Error al eliminar el cliente",
	},
}

// legacyStatus lists the outcomes that keep HTTP 500 unless strict status
// codes are enabled.
var legacyStatus = map[operation]clientedomain.ErrorKind{
	opCreateCliente:       clientedomain.KindConflict,
	opUpdateCliente:       clientedomain.KindNotFound,
	opUpdateClienteByBody: clientedomain.KindNotFound,
}

type errorResponse struct {
	Result bool   `json:"result"`
	Error  string `json:"error"`
}

// operationError ties a service error to the handler that produced it.
type operationError struct {
	op  operation
	err error
}

func (e *operationError) Error() string {
	return string(e.op) + ": " + e.err.Error()
}

func (e *operationError) Unwrap() error {
	return e.err
}

func opError(op operation, err error) error {
	if err == nil {
		return nil
	}
	return &operationError{op: op, err: err}
}

// ErrorHandlingMiddleware renders the last handler error as a
// {result:false, error} envelope. A nil holder keeps legacy status codes.
func ErrorHandlingMiddleware(httpCfg *config.HTTPConfigHolder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		strict := httpCfg != nil && httpCfg.Get().StrictStatus
		status, payload, unexpected := mapError(lastErr.Err, strict)
		if unexpected {
			obslogger.FromContext(c.Request.Context()).Error("request failed", zap.Error(lastErr.Err))
		}

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError picks the status and envelope for err. unexpected reports that the
// error had no message of its own for the operation and fell back to the
// internal one.
func mapError(err error, strict bool) (status int, resp errorResponse, unexpected bool) {
	var opErr *operationError
	if !errors.As(err, &opErr) {
		return http.StatusInternalServerError, errorResponse{Error: "Error interno del servidor"}, true
	}

	msgs := messages[opErr.op]
	kind := clientedomain.KindOf(opErr.err)

	switch kind {
	case clientedomain.KindValidation:
		msg := msgs.validation
		if errors.Is(opErr.err, clientedomain.ErrInvalidID) {
			msg = msgInvalidID
		}
		return http.StatusBadRequest, errorResponse{Error: msg}, false
	case clientedomain.KindNotFound:
		if msgs.notFound != "" {
			return statusFor(opErr.op, kind, http.StatusNotFound, strict), errorResponse{Error: msgs.notFound}, false
		}
	case clientedomain.KindConflict:
		if msgs.conflict != "" {
			return statusFor(opErr.op, kind, http.StatusConflict, strict), errorResponse{Error: msgs.conflict}, false
		}
	}

	return http.StatusInternalServerError, errorResponse{Error: msgs.internal}, true
}

func statusFor(op operation, kind clientedomain.ErrorKind, strictStatus int, strict bool) int {
	if legacy, ok := legacyStatus[op]; ok && legacy == kind && !strict {
		return http.StatusInternalServerError
	}
	return strictStatus
}

// classifyErrorForLog returns the error_type and error_code fields of the
// request log line.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	kind := clientedomain.KindOf(err)
	var opErr *operationError
	if errors.As(err, &opErr) {
		return kind.String(), string(opErr.op)
	}
	return kind.String(), ""
}
