package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	banddomain "github.com/smallbiznis/malipo/internal/band/domain"
	"github.com/smallbiznis/malipo/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  banddomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  banddomain.Repository
}

func New(p Params) banddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("band.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req banddomain.CreateRequest) (*banddomain.Response, error) {
	now := s.clock.Now()
	entity := &banddomain.Band{
		ID:          s.genID.Generate(),
		Kind:        req.Kind,
		Frequency:   req.Frequency,
		Lower:       req.Lower,
		Upper:       req.Upper,
		Rate:        req.Rate,
		PeriodStart: req.PeriodStart.UTC(),
		PeriodEnd:   req.PeriodEnd.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("band created",
		zap.String("band_id", entity.ID.String()),
		zap.String("kind", string(entity.Kind)),
		zap.String("frequency", string(entity.Frequency)),
	)

	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]banddomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]banddomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Lookup(ctx context.Context, kind banddomain.BandKind, frequency banddomain.BandFrequency, asOf time.Time) ([]banddomain.Band, error) {
	return s.repo.ListEffective(ctx, s.db, kind, frequency, asOf)
}

func toResponse(b *banddomain.Band) *banddomain.Response {
	return &banddomain.Response{
		ID:          b.ID.String(),
		Kind:        b.Kind,
		Frequency:   b.Frequency,
		Lower:       b.Lower,
		Upper:       b.Upper,
		Rate:        b.Rate,
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
