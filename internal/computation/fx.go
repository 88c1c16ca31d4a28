package computation

import (
	"github.com/smallbiznis/malipo/internal/computation/repository"
	"github.com/smallbiznis/malipo/internal/computation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("computation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
