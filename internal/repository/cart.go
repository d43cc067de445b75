package repository

import (
	"context"

	"github.com/coursemarket/backend/internal/domain"
)

type CartRepository interface {
	Insert(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error)
	// Find returns the row for (userID, courseID) regardless of bought state.
	Find(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error)
	FindUnbought(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error)
	DeleteUnbought(ctx context.Context, userID string, courseID int64) (bool, error)
	ListByBought(ctx context.Context, userID string, bought bool) ([]*domain.CartItem, error)
	MarkAllBought(ctx context.Context, userID string) (int64, error)
	DeleteAllUnbought(ctx context.Context, userID string) (int64, error)
	CountUnbought(ctx context.Context, userID string) (int, error)
}
