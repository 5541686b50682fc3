package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/repository"
)

// TaxonomyService exposes the question taxonomy: locales, contests and the
// tag hierarchy.
type TaxonomyService struct {
	taxonomyRepo *repository.TaxonomyRepository
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(taxonomyRepo *repository.TaxonomyRepository) *TaxonomyService {
	return &TaxonomyService{taxonomyRepo: taxonomyRepo}
}

// ListLocales retrieves all question locales.
func (s *TaxonomyService) ListLocales(ctx context.Context) ([]model.Locale, error) {
	return s.taxonomyRepo.ListLocales(ctx)
}

// ListContests retrieves all contests.
func (s *TaxonomyService) ListContests(ctx context.Context) ([]model.Contest, error) {
	return s.taxonomyRepo.ListContests(ctx)
}

// ListTags retrieves the flat tag list.
func (s *TaxonomyService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.taxonomyRepo.ListTags(ctx)
}

// ReduceTags folds a question's tag set for display, replacing fully covered
// subtrees by their parent.
func (s *TaxonomyService) ReduceTags(ctx context.Context, tagIDs []uuid.UUID) ([]model.ReducedTag, error) {
	tags, err := s.taxonomyRepo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return model.NewTagTree(tags).Reduce(tagIDs), nil
}
