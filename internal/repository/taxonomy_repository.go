package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
)

// TaxonomyRepository handles locale, contest and tag data access.
type TaxonomyRepository struct {
	pool *pgxpool.Pool
}

// NewTaxonomyRepository creates a new TaxonomyRepository.
func NewTaxonomyRepository(pool *pgxpool.Pool) *TaxonomyRepository {
	return &TaxonomyRepository{pool: pool}
}

// ListLocales retrieves all question locales.
func (r *TaxonomyRepository) ListLocales(ctx context.Context) ([]model.Locale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name FROM locales ORDER BY code`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locales []model.Locale
	for rows.Next() {
		var l model.Locale
		if err := rows.Scan(&l.ID, &l.Code, &l.Name); err != nil {
			return nil, err
		}
		locales = append(locales, l)
	}
	return locales, rows.Err()
}

// ListContests retrieves all contests questions can be sourced from.
func (r *TaxonomyRepository) ListContests(ctx context.Context) ([]model.Contest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM contests ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		var c model.Contest
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		contests = append(contests, c)
	}
	return contests, rows.Err()
}

// ListTags retrieves the full tag hierarchy as a flat list.
func (r *TaxonomyRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, parent_id FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.ParentID); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
