package staff

import (
	staffdomain "github.com/smallbiznis/malipo/internal/staff/domain"
	"github.com/smallbiznis/malipo/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("staff",
	fx.Provide(repository.ProvideStore[staffdomain.Staff]),
)
