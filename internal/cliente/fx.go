package cliente

import (
	"github.com/smallbiznis/clientes/internal/cliente/repository"
	"github.com/smallbiznis/clientes/internal/cliente/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cliente.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
