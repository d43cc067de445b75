package domain

import (
	"errors"
	"time"
)

var (
	ErrAlreadyInCart    = errors.New("course is already in the cart")
	ErrAlreadyPurchased = errors.New("course has already been purchased")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartItem links a user to a course. bought=false rows are the active cart;
// bought=true rows are purchase history. (user_id, course_id) is unique across
// both partitions.
type CartItem struct {
	ID       string
	UserID   string
	CourseID int64
	Bought   bool
	AddedAt  time.Time
}
