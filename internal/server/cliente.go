package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	clientedomain "github.com/smallbiznis/clientes/internal/cliente/domain"
	obscontext "github.com/smallbiznis/clientes/internal/observability/context"
	obsmetrics "github.com/smallbiznis/clientes/internal/observability/metrics"
)

type listClientesQuery struct {
	OwnerID string `form:"id_usuario"`
}

func (s *Server) GetClienteByID(c *gin.Context) {
	s.begin(c, opGetCliente)

	item, err := s.clienteSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, opGetCliente, err)
		return
	}

	s.succeed(c, opGetCliente)
	c.JSON(http.StatusOK, gin.H{"result": true, "cliente": item})
}

func (s *Server) ListClientes(c *gin.Context) {
	s.begin(c, opListClientes)

	var query listClientesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.fail(c, opListClientes, clientedomain.ErrMissingOwner)
		return
	}

	items, err := s.clienteSvc.ListByOwner(c.Request.Context(), query.OwnerID)
	if err != nil {
		s.fail(c, opListClientes, err)
		return
	}

	s.succeed(c, opListClientes)
	c.JSON(http.StatusOK, gin.H{"result": true, "clientes": items})
}

func (s *Server) CreateCliente(c *gin.Context) {
	s.begin(c, opCreateCliente)

	var req clientedomain.CreateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, opCreateCliente, clientedomain.ErrIncompleteData)
		return
	}

	item, err := s.clienteSvc.Create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, opCreateCliente, err)
		return
	}

	s.succeed(c, opCreateCliente)
	c.JSON(http.StatusOK, gin.H{"result": true, "cliente": item})
}

func (s *Server) UpdateCliente(c *gin.Context) {
	s.begin(c, opUpdateCliente)

	var req clientedomain.UpdateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, opUpdateCliente, clientedomain.ErrNoUpdateData)
		return
	}

	item, err := s.clienteSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.fail(c, opUpdateCliente, err)
		return
	}

	s.succeed(c, opUpdateCliente)
	c.JSON(http.StatusOK, gin.H{"result": true, "cliente": item})
}

func (s *Server) UpdateClienteByBody(c *gin.Context) {
	s.begin(c, opUpdateClienteByBody)

	var req clientedomain.UpdateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, opUpdateClienteByBody, clientedomain.ErrMissingID)
		return
	}

	item, err := s.clienteSvc.UpdateByBody(c.Request.Context(), req)
	if err != nil {
		s.fail(c, opUpdateClienteByBody, err)
		return
	}

	s.succeed(c, opUpdateClienteByBody)
	c.JSON(http.StatusOK, gin.H{"result": true, "cliente": item})
}

func (s *Server) DeleteCliente(c *gin.Context) {
	s.begin(c, opDeleteCliente)

	if err := s.clienteSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, opDeleteCliente, err)
		return
	}

	s.succeed(c, opDeleteCliente)
	c.JSON(http.StatusOK, gin.H{"result": true, "message": "Cliente eliminado"})
}

func (s *Server) begin(c *gin.Context, op operation) {
	c.Request = c.Request.WithContext(obscontext.WithOperation(c.Request.Context(), string(op)))
}

func (s *Server) succeed(c *gin.Context, op operation) {
	s.obsMetrics.RecordOperation(c.Request.Context(), string(op), obsmetrics.OutcomeOK)
}

func (s *Server) fail(c *gin.Context, op operation, err error) {
	s.obsMetrics.RecordOperation(c.Request.Context(), string(op), outcomeOf(err))
	AbortWithError(c, opError(op, err))
}

func outcomeOf(err error) string {
	switch clientedomain.KindOf(err) {
	case clientedomain.KindValidation:
		return obsmetrics.OutcomeValidation
	case clientedomain.KindNotFound:
		return obsmetrics.OutcomeNotFound
	case clientedomain.KindConflict:
		return obsmetrics.OutcomeConflict
	default:
		return obsmetrics.OutcomeError
	}
}
