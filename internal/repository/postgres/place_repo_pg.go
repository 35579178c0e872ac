package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const placeColumns = `p.id, p.geoname_id, p.city, p.country, p.admin_division, p.photo_url, p.created_at, p.updated_at`

type PlaceRepository struct {
	db *sqlx.DB
}

func NewPlaceRepo(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

type rankedPlaceRow struct {
	domain.Place
	domain.PlaceRollup
}

func (row rankedPlaceRow) toDomain() domain.RankedPlace {
	return domain.RankedPlace{
		Place:           row.Place,
		PlaceStatistics: row.PlaceRollup.Statistics(),
	}
}

// ListRanked pages over places that have at least one review. The score is
// computed over every review of a place before the page window is applied.
// score_tenths is PlaceRollup.ScoreTenths in integer arithmetic, so the
// order always matches the scores returned.
func (r *PlaceRepository) ListRanked(ctx context.Context, page domain.Page) ([]domain.RankedPlace, error) {
	const query = `
		SELECT ` + placeColumns + `,
		       stats.review_count,
		       stats.sum_cost,
		       stats.sum_safety,
		       stats.sum_fun
		FROM place p
		JOIN (
			SELECT place_id,
			       COUNT(*)::int AS review_count,
			       SUM(cost)::bigint AS sum_cost,
			       SUM(safety)::bigint AS sum_safety,
			       SUM(fun)::bigint AS sum_fun,
			       (2 * (100 * (SUM(cost) + SUM(safety) + SUM(fun)) + COUNT(*) * LEAST(COUNT(*), 100)) + 10 * COUNT(*))
			           / (20 * COUNT(*)) AS score_tenths
			FROM review
			GROUP BY place_id
		) stats ON stats.place_id = p.id
		ORDER BY stats.score_tenths DESC, p.id ASC
		LIMIT $1 OFFSET $2
	`

	var rows []rankedPlaceRow
	if err := r.db.SelectContext(ctx, &rows, query, page.Limit, page.Offset); err != nil {
		return nil, err
	}

	places := make([]domain.RankedPlace, 0, len(rows))
	for _, row := range rows {
		places = append(places, row.toDomain())
	}
	return places, nil
}

func (r *PlaceRepository) FindRankedByID(ctx context.Context, id int64) (*domain.RankedPlace, error) {
	const query = `
		SELECT ` + placeColumns + `,
		       COUNT(rv.id)::int AS review_count,
		       COALESCE(SUM(rv.cost), 0)::bigint AS sum_cost,
		       COALESCE(SUM(rv.safety), 0)::bigint AS sum_safety,
		       COALESCE(SUM(rv.fun), 0)::bigint AS sum_fun
		FROM place p
		LEFT JOIN review rv ON rv.place_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`

	var row rankedPlaceRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	ranked := row.toDomain()
	return &ranked, nil
}

// UpsertByGeonameID returns the place for a geocoded location, inserting it
// when neither the geoname id nor the (city, country) pair is known yet.
// Existing rows are never modified except to record a missing geoname id.
func (r *PlaceRepository) UpsertByGeonameID(ctx context.Context, location domain.GeoLocation) (*domain.Place, error) {
	const insert = `
		INSERT INTO place (geoname_id, city, country, admin_division)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`
	adminDivision := nullString(&location.AdminDivision)
	if _, err := r.db.ExecContext(ctx, insert, location.GeonameID, location.City, location.Country, adminDivision); err != nil {
		return nil, err
	}

	place, err := r.findOne(ctx, `p.geoname_id = $1`, location.GeonameID)
	if err == nil {
		return place, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// The insert lost to the (city, country) key: a pre-seeded row without a
	// geoname id is adopted, otherwise the row for that pair is returned as is.
	const adopt = `
		UPDATE place p
		SET geoname_id = $1, updated_at = NOW()
		WHERE p.city = $2 AND p.country = $3 AND p.geoname_id IS NULL
		RETURNING ` + placeColumns
	var adopted domain.Place
	err = r.db.GetContext(ctx, &adopted, adopt, location.GeonameID, location.City, location.Country)
	if err == nil {
		return &adopted, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return r.findOne(ctx, `p.city = $1 AND p.country = $2`, location.City, location.Country)
}

func (r *PlaceRepository) UpsertByCityCountry(ctx context.Context, input domain.PlaceInput) (*domain.Place, error) {
	const query = `
		INSERT INTO place AS p (city, country, admin_division, photo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (city, country) DO UPDATE
		SET admin_division = COALESCE(p.admin_division, EXCLUDED.admin_division),
		    photo_url = COALESCE(p.photo_url, EXCLUDED.photo_url)
		RETURNING ` + placeColumns

	var place domain.Place
	err := r.db.GetContext(ctx, &place, query,
		strings.TrimSpace(input.City),
		strings.TrimSpace(input.Country),
		nullString(input.AdminDivision),
		nullString(input.PhotoURL),
	)
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) UpdatePhotoURL(ctx context.Context, id int64, photoURL string) (*domain.Place, error) {
	const query = `
		UPDATE place p
		SET photo_url = $2, updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + placeColumns

	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, id, photoURL); err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) ListVisitedByAuthor(ctx context.Context, email string) ([]domain.VisitedPlace, error) {
	const query = `
		SELECT DISTINCT p.id, p.city, p.country, p.admin_division
		FROM place p
		JOIN review rv ON rv.place_id = p.id
		JOIN user_account u ON u.id = rv.author_id
		WHERE u.email = $1
		ORDER BY p.country, p.city, p.id
	`
	places := []domain.VisitedPlace{}
	if err := r.db.SelectContext(ctx, &places, query, email); err != nil {
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM place p WHERE ` + where
	var place domain.Place
	if err := r.db.GetContext(ctx, &place, query, args...); err != nil {
		return nil, err
	}
	return &place, nil
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
