package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/malipo/internal/catalog/domain"
	"github.com/smallbiznis/malipo/internal/clock"
	"github.com/smallbiznis/malipo/internal/formula"
	pkgdb "github.com/smallbiznis/malipo/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	companyID, err := parseID(req.CompanyID)
	if err != nil {
		return nil, catalogdomain.ErrInvalidCompany
	}

	now := s.clock.Now()
	entity := &catalogdomain.PayrollCode{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Variable:      strings.TrimSpace(req.Variable),
		Kind:          req.Kind,
		Value:         req.Value,
		Formula:       req.Formula,
		SortOrder:     req.Order,
		EffectiveFrom: req.EffectiveFrom.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(req.Tags) > 0 {
		entity.Tags = datatypes.NewJSONSlice(req.Tags)
	}

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if entity.Kind == catalogdomain.CodeKindFormula {
		if err := s.validateFormula(ctx, entity); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ExistsByOrderAndEffective(ctx, s.db, companyID, entity.SortOrder, entity.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalogdomain.ErrDuplicateOrder
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateOrder
		}
		return nil, err
	}

	s.log.Info("payroll code created",
		zap.String("payroll_code_id", entity.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.String("variable", entity.Variable),
		zap.String("kind", string(entity.Kind)),
		zap.Int("order", entity.SortOrder),
	)

	return toResponse(entity), nil
}

// validateFormula parses the formula under the closed grammar and verifies
// every referenced identifier will be bound by the time the component runs:
// either a band seed or a variable introduced by a strictly earlier order.
func (s *Service) validateFormula(ctx context.Context, entity *catalogdomain.PayrollCode) error {
	expr, err := formula.Parse(*entity.Formula)
	if err != nil {
		return err
	}

	available := map[string]struct{}{
		formula.TaxBandsVar:          {},
		formula.ContributionBandsVar: {},
	}
	codes, err := s.Applicable(ctx, entity.CompanyID, entity.EffectiveFrom)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if code.SortOrder < entity.SortOrder {
			available[code.Variable] = struct{}{}
		}
	}

	for _, name := range expr.Variables() {
		if _, ok := available[name]; !ok {
			return &catalogdomain.UnknownReferenceError{Formula: *entity.Formula, Name: name}
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, companyID snowflake.ID) ([]catalogdomain.Response, error) {
	items, err := s.repo.List(ctx, s.db, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]catalogdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Applicable(ctx context.Context, companyID snowflake.ID, asOf time.Time) ([]catalogdomain.PayrollCode, error) {
	rows, err := s.repo.ListEffective(ctx, s.db, companyID, asOf)
	if err != nil {
		return nil, err
	}

	// Rows arrive grouped by variable, newest first; keep the newest version
	// of each variable and reject ties on effective_from.
	latest := make([]catalogdomain.PayrollCode, 0, len(rows))
	for i := 0; i < len(rows); {
		current := rows[i]
		j := i + 1
		for j < len(rows) && rows[j].Variable == current.Variable {
			if rows[j].EffectiveFrom.Equal(current.EffectiveFrom) {
				return nil, &catalogdomain.AmbiguousVersionError{Variable: current.Variable}
			}
			j++
		}
		latest = append(latest, current)
		i = j
	}

	sort.Slice(latest, func(i, j int) bool {
		if latest[i].SortOrder != latest[j].SortOrder {
			return latest[i].SortOrder < latest[j].SortOrder
		}
		return latest[i].Variable < latest[j].Variable
	})
	return latest, nil
}

func toResponse(c *catalogdomain.PayrollCode) *catalogdomain.Response {
	return &catalogdomain.Response{
		ID:            c.ID.String(),
		CompanyID:     c.CompanyID.String(),
		Name:          c.Name,
		Description:   c.Description,
		Variable:      c.Variable,
		Kind:          c.Kind,
		Tags:          c.Tags,
		Value:         c.Value,
		Formula:       c.Formula,
		Order:         c.SortOrder,
		EffectiveFrom: c.EffectiveFrom,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
