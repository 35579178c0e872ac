package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/njprem/CityScore_APP_BackEnd/internal/domain"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
)

const reviewSelect = `
	SELECT
		r.id,
		r.place_id,
		r.author_id,
		r.cost,
		r.safety,
		r.fun,
		r.comment,
		r.created_at,
		r.updated_at,
		u.email AS author_email,
		u.full_name AS author_name,
		u.user_image_url AS author_image
	FROM review r
	JOIN user_account u ON u.id = r.author_id
`

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review for an existing author and place. The author is
// connected by email; sql.ErrNoRows means no such user.
func (r *ReviewRepository) Create(ctx context.Context, authorEmail string, placeID int64, input domain.ReviewInput) (*domain.Review, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO review (place_id, author_id, cost, safety, fun, comment)
			SELECT CAST($1 AS BIGINT), u.id, CAST($2 AS SMALLINT), CAST($3 AS SMALLINT), CAST($4 AS SMALLINT), CAST($5 AS TEXT)
			FROM user_account u
			WHERE u.email = $6
			RETURNING *
		)
		SELECT
			i.id, i.place_id, i.author_id, i.cost, i.safety, i.fun, i.comment, i.created_at, i.updated_at,
			u.email AS author_email,
			u.full_name AS author_name,
			u.user_image_url AS author_image
		FROM inserted i
		JOIN user_account u ON u.id = i.author_id
	`
	cost, safety, fun := input.Ratings()

	var stored domain.Review
	row := r.db.QueryRowxContext(ctx, query, placeID, cost, safety, fun, input.Comment, authorEmail)
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := reviewSelect + `WHERE r.id = $1`

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, placeID *int64, page domain.Page) ([]domain.Review, error) {
	where := ""
	args := []any{}
	idx := 1
	if placeID != nil {
		where = fmt.Sprintf("WHERE r.place_id = $%d", idx)
		args = append(args, *placeID)
		idx++
	}
	args = append(args, page.Limit, page.Offset)

	query := fmt.Sprintf(`%s
		%s
		ORDER BY r.updated_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d
	`, reviewSelect, where, idx, idx+1)

	reviews := []domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, err
	}
	return reviews, nil
}

type authoredReviewRow struct {
	domain.Review
	PlaceCity          string         `db:"place_city"`
	PlaceCountry       string         `db:"place_country"`
	PlaceAdminDivision sql.NullString `db:"place_admin_division"`
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, email string, page domain.Page) ([]domain.Review, error) {
	const query = `
		SELECT
			r.id,
			r.place_id,
			r.author_id,
			r.cost,
			r.safety,
			r.fun,
			r.comment,
			r.created_at,
			r.updated_at,
			u.email AS author_email,
			u.full_name AS author_name,
			u.user_image_url AS author_image,
			p.city AS place_city,
			p.country AS place_country,
			p.admin_division AS place_admin_division
		FROM review r
		JOIN user_account u ON u.id = r.author_id
		JOIN place p ON p.id = r.place_id
		WHERE u.email = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryxContext(ctx, query, email, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var row authoredReviewRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		review := row.Review
		summary := &domain.PlaceSummary{
			ID:      review.PlaceID,
			City:    row.PlaceCity,
			Country: row.PlaceCountry,
		}
		if row.PlaceAdminDivision.Valid {
			v := row.PlaceAdminDivision.String
			summary.AdminDivision = &v
		}
		review.Place = summary
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// Update rewrites the three ratings and the comment together.
func (r *ReviewRepository) Update(ctx context.Context, id int64, input domain.ReviewInput) (*domain.Review, error) {
	const query = `
		WITH updated AS (
			UPDATE review
			SET cost = $2, safety = $3, fun = $4, comment = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT
			d.id, d.place_id, d.author_id, d.cost, d.safety, d.fun, d.comment, d.created_at, d.updated_at,
			u.email AS author_email,
			u.full_name AS author_name,
			u.user_image_url AS author_image
		FROM updated d
		JOIN user_account u ON u.id = d.author_id
	`
	cost, safety, fun := input.Ratings()

	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id, cost, safety, fun, input.Comment); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) (*domain.Review, error) {
	const query = `
		WITH deleted AS (
			DELETE FROM review WHERE id = $1
			RETURNING *
		)
		SELECT
			d.id, d.place_id, d.author_id, d.cost, d.safety, d.fun, d.comment, d.created_at, d.updated_at,
			u.email AS author_email,
			u.full_name AS author_name,
			u.user_image_url AS author_image
		FROM deleted d
		JOIN user_account u ON u.id = d.author_id
	`
	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
