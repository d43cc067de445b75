package handler

import (
	"time"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// Every response shares the envelope {success, message, ...payload, error?}.

func respondOK(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message, "error": message})
}

type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Phone     *string     `json:"phone,omitempty"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type cartItemResponse struct {
	ID       string    `json:"id"`
	CourseID int64     `json:"courseId"`
	Bought   bool      `json:"bought"`
	AddedAt  time.Time `json:"addedAt"`
}

func toCartItemResponse(item *domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:       item.ID,
		CourseID: item.CourseID,
		Bought:   item.Bought,
		AddedAt:  item.AddedAt,
	}
}

func toCartItemResponses(items []*domain.CartItem) []cartItemResponse {
	out := make([]cartItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toCartItemResponse(item))
	}
	return out
}
