package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the caller of the Orchestrator: it runs an analysis and hands
// the envelope to the Result Store.
type Service struct {
	Orchestrator *Orchestrator
	Repo         domain.Repository
	// Archive is optional
	Archive domain.Archive
	Logger  *zap.Logger
}

// AnalyzeAndStore runs one analysis and saves it. Nothing is stored when the
// analysis fails.
func (s *Service) AnalyzeAndStore(ctx context.Context, req domain.Request, ownerID string) (*domain.Result, error) {
	res, err := s.Orchestrator.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{Result: *res, OwnerID: ownerID, Filename: req.Filename}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save analysis %s: %w", res.ID, err)
	}

	if s.Archive != nil {
		// arsip cuma best effort, record sudah aman di database
		if url, err := s.Archive.Put(ctx, rec); err != nil {
			s.logger().Warn("archive analysis failed", zap.String("id", res.ID), zap.Error(err))
		} else {
			s.logger().Debug("analysis archived", zap.String("id", res.ID), zap.String("url", url))
		}
	}
	return res, nil
}

// Get returns (nil, nil) when the id is unknown or the record belongs to
// another owner. Anonymous records are readable by anyone holding the id.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*domain.Result, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.OwnerID != "" && rec.OwnerID != ownerID {
		return nil, nil
	}
	return &rec.Result, nil
}

// Page is one page of stored analyses for an owner.
type Page struct {
	Data     []*domain.Result `json:"data"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Summary  domain.Summary   `json:"summary"`
}

// List returns the owner's analyses, newest first. An empty owner lists
// anonymous analyses.
func (s *Service) List(ctx context.Context, ownerID string, page, pageSize int) (Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	recs, err := s.Repo.ListByOwner(ctx, ownerID, page, pageSize)
	if err != nil {
		return Page{}, err
	}
	out := Page{Data: make([]*domain.Result, 0, len(recs)), Page: page, PageSize: pageSize}
	for _, r := range recs {
		out.Data = append(out.Data, &r.Result)
	}
	out.Summary = domain.Summarize(out.Data...)
	return out, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
