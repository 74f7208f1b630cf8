package service

import (
	"context"
	"time"

	"secureview/internal/cache"
	"secureview/internal/insight"
	"secureview/internal/logger"
	"secureview/internal/model"
	"secureview/internal/repository"
)

// InsightService turns stored department scores into manager-facing reports
type InsightService struct {
	repo  repository.InsightRepo
	cache cache.InsightCache
	now   func() time.Time
	log   *logger.Logger
}

// NewInsightService creates a new insight service. cache may be nil.
func NewInsightService(repo repository.InsightRepo, reportCache cache.InsightCache, log *logger.Logger) *InsightService {
	return &InsightService{
		repo:  repo,
		cache: reportCache,
		now:   time.Now,
		log:   log.With("component", "insights"),
	}
}

// Report returns the classified and summarized insights of a department.
func (s *InsightService) Report(ctx context.Context, department string) (*model.InsightReport, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, department)
		if err != nil {
			s.log.Warn("insight cache read failed", "department", department, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	src, err := s.repo.GetByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrInsightsNotFound
	}

	report := insight.Report(src)
	report.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.log.Warn("insight cache write failed", "department", department, "error", err)
		}
	}
	return report, nil
}

// ReportFor enforces that managers only read their own department.
func (s *InsightService) ReportFor(ctx context.Context, p *model.Principal, department string) (*model.InsightReport, error) {
	if p.Role != model.RoleManager || p.Department != department {
		return nil, ErrForbidden
	}
	return s.Report(ctx, department)
}

// Publish stores new department scores and drops the cached report.
func (s *InsightService) Publish(ctx context.Context, src *model.DepartmentInsights) error {
	if err := s.repo.Upsert(ctx, src); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, src.Department); err != nil {
			s.log.Warn("insight cache invalidation failed", "department", src.Department, "error", err)
		}
	}
	return nil
}
