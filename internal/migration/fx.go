package migration

import (
	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	catalogdomain "github.com/smallbiznis/malipo/internal/catalog/domain"
	companydomain "github.com/smallbiznis/malipo/internal/company/domain"
	computationdomain "github.com/smallbiznis/malipo/internal/computation/domain"
	"github.com/smallbiznis/malipo/internal/config"
	"github.com/smallbiznis/malipo/internal/seed"
	staffdomain "github.com/smallbiznis/malipo/internal/staff/domain"
	pkgdb "github.com/smallbiznis/malipo/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, dbCfg pkgdb.Config, holder *config.StatutoryConfigHolder) error {
		if dbCfg.Type == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL installs rely on the model definitions.
			err := conn.AutoMigrate(
				&companydomain.Company{},
				&staffdomain.Staff{},
				&banddomain.Band{},
				&catalogdomain.PayrollCode{},
				&computationdomain.Computation{},
				&computationdomain.ComputationComponent{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsureStatutoryBands(conn, holder.Get())
	}),
)
