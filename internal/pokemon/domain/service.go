package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	FindOne(ctx context.Context, term string) (*Response, error)
	Update(ctx context.Context, term string, req UpdateRequest) (*Response, error)
	Remove(ctx context.Context, id string) error
}

type CreateRequest struct {
	No         int            `json:"no"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

type UpdateRequest struct {
	No         *int           `json:"no"`
	Name       *string        `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

type ListRequest struct {
	Limit  *int
	Offset *int
}

type Response struct {
	ID         string         `json:"id"`
	No         int            `json:"no"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
}
