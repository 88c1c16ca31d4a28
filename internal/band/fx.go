package band

import (
	"github.com/smallbiznis/malipo/internal/band/repository"
	"github.com/smallbiznis/malipo/internal/band/service"
	"go.uber.org/fx"
)

var Module = fx.Module("band.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
