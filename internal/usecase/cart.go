package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/coursemarket/backend/internal/repository"
)

type CartUsecase struct {
	items repository.CartRepository
}

func NewCartUsecase(items repository.CartRepository) *CartUsecase {
	return &CartUsecase{items: items}
}

// AddToCart inserts an unbought row for (userID, courseID). An existing bought
// row fails with ErrAlreadyPurchased, an existing unbought row with
// ErrAlreadyInCart. The pre-check only picks the right error; the store's
// unique constraint is what actually serializes concurrent adds, and a lost
// race surfaces as ErrAlreadyInCart from Insert.
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error) {
	existing, err := u.items.Find(ctx, userID, courseID)
	switch {
	case err == nil:
		if existing.Bought {
			return nil, domain.ErrAlreadyPurchased
		}
		return nil, domain.ErrAlreadyInCart
	case errors.Is(err, domain.ErrCartItemNotFound):
		// fall through to insert
	default:
		return nil, fmt.Errorf("check cart: %w", err)
	}

	return u.items.Insert(ctx, userID, courseID)
}

// RemoveFromCart deletes an unbought row and reports whether one was removed.
// Bought rows are immutable through this path: removing one is a no-op.
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID string, courseID int64) (bool, error) {
	return u.items.DeleteUnbought(ctx, userID, courseID)
}

// ListItems returns the user's items in one bought partition, newest first.
func (u *CartUsecase) ListItems(ctx context.Context, userID string, bought bool) ([]*domain.CartItem, error) {
	return u.items.ListByBought(ctx, userID, bought)
}

// CheckoutCart commits the active cart: every unbought row flips to bought.
// Reports whether any row was affected.
func (u *CartUsecase) CheckoutCart(ctx context.Context, userID string) (bool, error) {
	n, err := u.items.MarkAllBought(ctx, userID)
	return n > 0, err
}

// AbandonCart bulk-deletes the user's unbought rows. Purchase history is
// untouched. Reports whether any row was affected.
func (u *CartUsecase) AbandonCart(ctx context.Context, userID string) (bool, error) {
	n, err := u.items.DeleteAllUnbought(ctx, userID)
	return n > 0, err
}

// Count counts unbought rows only: the active cart, not purchase history.
func (u *CartUsecase) Count(ctx context.Context, userID string) (int, error) {
	return u.items.CountUnbought(ctx, userID)
}

// IsInCart reports whether an unbought row exists for (userID, courseID).
func (u *CartUsecase) IsInCart(ctx context.Context, userID string, courseID int64) (bool, error) {
	_, err := u.items.FindUnbought(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetItem returns the unbought row for (userID, courseID), if any.
func (u *CartUsecase) GetItem(ctx context.Context, userID string, courseID int64) (*domain.CartItem, error) {
	return u.items.FindUnbought(ctx, userID, courseID)
}
