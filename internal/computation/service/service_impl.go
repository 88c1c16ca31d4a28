package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	catalogdomain "github.com/smallbiznis/malipo/internal/catalog/domain"
	"github.com/smallbiznis/malipo/internal/clock"
	computationdomain "github.com/smallbiznis/malipo/internal/computation/domain"
	"github.com/smallbiznis/malipo/internal/formula"
	"github.com/smallbiznis/malipo/internal/observability/metrics"
	staffdomain "github.com/smallbiznis/malipo/internal/staff/domain"
	"github.com/smallbiznis/malipo/pkg/db/option"
	"github.com/smallbiznis/malipo/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    computationdomain.Repository
	Bands   banddomain.Service
	Catalog catalogdomain.Service
	Staff   repository.Repository[staffdomain.Staff]
	Metrics *metrics.EngineMetrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    computationdomain.Repository
	bands   banddomain.Service
	catalog catalogdomain.Service
	staff   repository.Repository[staffdomain.Staff]
	metrics *metrics.EngineMetrics
}

func New(p Params) computationdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("computation.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		bands:   p.Bands,
		catalog: p.Catalog,
		staff:   p.Staff,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req computationdomain.CreateRequest) (*computationdomain.Response, error) {
	companyID, err := snowflake.ParseString(strings.TrimSpace(req.CompanyID))
	if err != nil {
		return nil, computationdomain.ErrInvalidCompany
	}

	now := s.clock.Now()
	entity := &computationdomain.Computation{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		Status:      computationdomain.StatusDraft,
		Notes:       req.Notes,
		GeneratedBy: req.GeneratedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("computation created",
		zap.String("computation_id", entity.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.Time("period_start", entity.PeriodStart),
		zap.Time("period_end", entity.PeriodEnd),
	)
	return toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*computationdomain.Response, error) {
	entity, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) Cancel(ctx context.Context, id snowflake.ID) error {
	from := []computationdomain.Status{computationdomain.StatusDraft, computationdomain.StatusProcessing}
	ok, err := s.repo.UpdateStatus(ctx, s.db, id, from, computationdomain.StatusCancelled, s.clock.Now())
	if err != nil {
		return err
	}
	if ok {
		s.log.Info("computation cancelled", zap.String("computation_id", id.String()))
		return nil
	}

	entity, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return err
	}
	if entity.Status == computationdomain.StatusCancelled {
		return nil
	}
	return computationdomain.ErrInvalidStatus
}

func (s *Service) SupplyInput(ctx context.Context, id snowflake.ID, staffNumber, variable string, value decimal.Decimal) error {
	entity, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return err
	}
	switch entity.Status {
	case computationdomain.StatusProcessing:
		return computationdomain.ErrRunInProgress
	case computationdomain.StatusCancelled:
		return computationdomain.ErrCancelled
	}

	codes, err := s.catalog.Applicable(ctx, entity.CompanyID, entity.PeriodStart)
	if err != nil {
		return err
	}
	var code *catalogdomain.PayrollCode
	for i := range codes {
		if codes[i].Variable == variable {
			code = &codes[i]
			break
		}
	}
	if code == nil {
		return computationdomain.ErrUnknownVariable
	}
	if code.Kind != catalogdomain.CodeKindInput {
		return computationdomain.ErrNotInputKind
	}

	member, err := s.staff.FindOne(ctx, &staffdomain.Staff{CompanyID: entity.CompanyID, StaffNumber: staffNumber})
	if err != nil {
		return err
	}
	if member == nil {
		return computationdomain.ErrUnknownStaff
	}

	now := s.clock.Now()
	component := &computationdomain.ComputationComponent{
		ID:            s.genID.Generate(),
		ComputationID: entity.ID,
		PayrollCodeID: code.ID,
		StaffID:       member.ID,
		Variable:      code.Variable,
		Value:         value.Round(2),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.repo.UpsertComponent(ctx, s.db, component)
}

// runPlan is everything resolved up front, before the first staff member is
// touched: the band tables and catalog versions applicable at period start,
// pre-parsed formulas, and the roster in staff-number order.
type runPlan struct {
	taxBands          []formula.Bracket
	contributionBands []formula.Bracket
	codes             []catalogdomain.PayrollCode
	exprs             map[snowflake.ID]*formula.Expr
	staff             []*staffdomain.Staff
}

func (s *Service) Run(ctx context.Context, id snowflake.ID) (<-chan computationdomain.StaffResult, error) {
	entity, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	started := s.clock.Now()
	ok, err := s.repo.UpdateStatus(ctx, s.db, id, computationdomain.RunnableStatuses(), computationdomain.StatusProcessing, started)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.ObserveRun(metrics.RunStatusRejected, 0)
		current, err := s.repo.Find(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		switch current.Status {
		case computationdomain.StatusProcessing:
			return nil, computationdomain.ErrRunInProgress
		case computationdomain.StatusCancelled:
			return nil, computationdomain.ErrCancelled
		default:
			return nil, computationdomain.ErrInvalidStatus
		}
	}

	plan, err := s.buildPlan(ctx, entity)
	if err != nil {
		s.finish(ctx, id, computationdomain.StatusFailed)
		s.metrics.ObserveRun(metrics.RunStatusFailed, s.clock.Now().Sub(started))
		return nil, err
	}

	s.log.Info("computation run started",
		zap.String("computation_id", id.String()),
		zap.Int("codes", len(plan.codes)),
		zap.Int("staff", len(plan.staff)),
	)

	results := make(chan computationdomain.StaffResult)
	go s.execute(ctx, entity, plan, results, started)
	return results, nil
}

func (s *Service) buildPlan(ctx context.Context, entity *computationdomain.Computation) (*runPlan, error) {
	taxRows, err := s.bands.Lookup(ctx, banddomain.BandKindTax, banddomain.BandFrequencyMonthly, entity.PeriodStart)
	if err != nil {
		return nil, err
	}
	contributionRows, err := s.bands.Lookup(ctx, banddomain.BandKindContribution, banddomain.BandFrequencyMonthly, entity.PeriodStart)
	if err != nil {
		return nil, err
	}

	codes, err := s.catalog.Applicable(ctx, entity.CompanyID, entity.PeriodStart)
	if err != nil {
		return nil, err
	}

	exprs := make(map[snowflake.ID]*formula.Expr)
	for i := range codes {
		if codes[i].Kind != catalogdomain.CodeKindFormula {
			continue
		}
		expr, err := formula.Parse(*codes[i].Formula)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", codes[i].Variable, err)
		}
		exprs[codes[i].ID] = expr
	}

	roster, err := s.staff.Find(ctx,
		&staffdomain.Staff{CompanyID: entity.CompanyID, IsActive: true},
		option.WithOrderBy("staff_number ASC"),
	)
	if err != nil {
		return nil, err
	}

	return &runPlan{
		taxBands:          banddomain.Brackets(taxRows),
		contributionBands: banddomain.Brackets(contributionRows),
		codes:             codes,
		exprs:             exprs,
		staff:             roster,
	}, nil
}

func (s *Service) execute(ctx context.Context, entity *computationdomain.Computation, plan *runPlan, results chan<- computationdomain.StaffResult, started time.Time) {
	defer close(results)

	failed := false
	for _, member := range plan.staff {
		if ctx.Err() != nil {
			s.cancelRun(ctx, entity.ID, started)
			return
		}

		values, err := s.evaluateStaff(ctx, entity, plan, member)
		result := computationdomain.StaffResult{Staff: *member}
		if err != nil {
			failed = true
			s.metrics.EvaluationFailure(failureReason(err))
			s.log.Warn("staff evaluation failed",
				zap.String("computation_id", entity.ID.String()),
				zap.String("staff_number", member.StaffNumber),
				zap.Error(err),
			)
			result.Err = err
		} else {
			s.metrics.StaffEvaluated()
			result.Values = values
		}

		select {
		case results <- result:
		case <-ctx.Done():
			s.cancelRun(ctx, entity.ID, started)
			return
		}
	}

	terminal := computationdomain.StatusCompleted
	status := metrics.RunStatusCompleted
	if failed {
		terminal = computationdomain.StatusFailed
		status = metrics.RunStatusFailed
	}
	s.finish(ctx, entity.ID, terminal)
	s.metrics.ObserveRun(status, s.clock.Now().Sub(started))
	s.log.Info("computation run finished",
		zap.String("computation_id", entity.ID.String()),
		zap.String("status", string(terminal)),
	)
}

func (s *Service) evaluateStaff(ctx context.Context, entity *computationdomain.Computation, plan *runPlan, member *staffdomain.Staff) (map[string]decimal.Decimal, error) {
	values := make(map[string]decimal.Decimal, len(plan.codes))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		env := formula.NewEnv()
		env.BindBands(formula.TaxBandsVar, plan.taxBands)
		env.BindBands(formula.ContributionBandsVar, plan.contributionBands)

		now := s.clock.Now()
		for i := range plan.codes {
			code := &plan.codes[i]

			var value decimal.Decimal
			switch code.Kind {
			case catalogdomain.CodeKindInput:
				row, err := s.repo.FindComponent(ctx, tx, entity.ID, code.ID, member.ID)
				if err != nil {
					return &computationdomain.ComponentError{StaffNumber: member.StaffNumber, Variable: code.Variable, Err: err}
				}
				if row == nil {
					return &computationdomain.MissingInputError{StaffNumber: member.StaffNumber, Variable: code.Variable}
				}
				value = row.Value
			case catalogdomain.CodeKindFixed:
				value = *code.Value
			case catalogdomain.CodeKindFormula:
				evaluated, err := plan.exprs[code.ID].Eval(env)
				if err != nil {
					return &computationdomain.ComponentError{StaffNumber: member.StaffNumber, Variable: code.Variable, Err: err}
				}
				value = evaluated
			}

			if code.Kind != catalogdomain.CodeKindInput {
				component := &computationdomain.ComputationComponent{
					ID:            s.genID.Generate(),
					ComputationID: entity.ID,
					PayrollCodeID: code.ID,
					StaffID:       member.ID,
					Variable:      code.Variable,
					Value:         value.Round(2),
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := s.repo.UpsertComponent(ctx, tx, component); err != nil {
					return &computationdomain.ComponentError{StaffNumber: member.StaffNumber, Variable: code.Variable, Err: err}
				}
			}

			// Environments carry full precision; rounding applies only to
			// what is persisted and surfaced.
			env.Bind(code.Variable, value)
			values[code.Variable] = value.Round(2)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Service) cancelRun(ctx context.Context, id snowflake.ID, started time.Time) {
	s.finish(context.WithoutCancel(ctx), id, computationdomain.StatusCancelled)
	s.metrics.ObserveRun(metrics.RunStatusCancelled, s.clock.Now().Sub(started))
	s.log.Info("computation run cancelled", zap.String("computation_id", id.String()))
}

func (s *Service) finish(ctx context.Context, id snowflake.ID, to computationdomain.Status) {
	from := []computationdomain.Status{computationdomain.StatusProcessing}
	if _, err := s.repo.UpdateStatus(ctx, s.db, id, from, to, s.clock.Now()); err != nil {
		s.log.Error("status transition failed",
			zap.String("computation_id", id.String()),
			zap.String("to", string(to)),
			zap.Error(err),
		)
	}
}

func failureReason(err error) string {
	var missing *computationdomain.MissingInputError
	if errors.As(err, &missing) {
		return metrics.FailureReasonMissingInput
	}
	var (
		undefined *formula.UndefinedVariableError
		mismatch  *formula.TypeMismatchError
		divZero   *formula.DivisionByZeroError
	)
	if errors.As(err, &undefined) || errors.As(err, &mismatch) || errors.As(err, &divZero) {
		return metrics.FailureReasonEvaluation
	}
	return metrics.FailureReasonDB
}

func toResponse(c *computationdomain.Computation) *computationdomain.Response {
	return &computationdomain.Response{
		ID:          c.ID.String(),
		CompanyID:   c.CompanyID.String(),
		PeriodStart: c.PeriodStart,
		PeriodEnd:   c.PeriodEnd,
		Status:      c.Status,
		Notes:       c.Notes,
		GeneratedBy: c.GeneratedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
