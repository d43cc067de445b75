package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cartColumns = `id, user_id, course_id, bought, added_at`

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) Insert(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (user_id, course_id)
		VALUES ($1, $2)
		RETURNING ` + cartColumns

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		// Two concurrent adds for the same pair: the unique constraint wins
		// the race, not the application.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyInCart
		}
		return nil, err
	}
	return item, nil
}

func (r *CartRepository) Find(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND course_id = $2`
	return scanCartItem(r.pool.QueryRow(ctx, query, userID, courseID))
}

func (r *CartRepository) FindUnbought(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND course_id = $2 AND NOT bought`
	return scanCartItem(r.pool.QueryRow(ctx, query, userID, courseID))
}

func (r *CartRepository) DeleteUnbought(ctx context.Context, userID string, courseID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND course_id = $2 AND NOT bought`,
		userID, courseID,
	)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CartRepository) ListByBought(ctx context.Context, userID string, bought bool) ([]*domain.CartItem, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart_items
		WHERE user_id = $1 AND bought = $2
		ORDER BY added_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, bought)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []*domain.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepository) MarkAllBought(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET bought = TRUE WHERE user_id = $1 AND NOT bought`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark cart bought: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) DeleteAllUnbought(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND NOT bought`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CartRepository) CountUnbought(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE user_id = $1 AND NOT bought`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cart items: %w", err)
	}
	return count, nil
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.CourseID, &item.Bought, &item.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("scan cart item: %w", err)
	}
	return &item, nil
}
