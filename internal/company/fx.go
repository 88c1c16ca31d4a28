package company

import (
	companydomain "github.com/smallbiznis/malipo/internal/company/domain"
	"github.com/smallbiznis/malipo/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("company",
	fx.Provide(repository.ProvideStore[companydomain.Company]),
)
