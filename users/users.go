package users

import (
	"context"
	"fmt"
	"time"

	"github.com/healthhive/registry/access"
	"github.com/healthhive/registry/errors"
)

var (
	ErrNotFound = fmt.Errorf("%w: user not found", errors.NotFound)
	ErrInactive = fmt.Errorf("%w: user is inactive", errors.Forbidden)
)

//go:generate mockgen --build_flags=--mod=mod -source=./users.go -destination=./test/mock_service.go -package test Service

type User struct {
	UserId            string     `bson:"user_id" json:"user_id"`
	Username          string     `bson:"username" json:"username"`
	FullName          string     `bson:"full_name" json:"full_name"`
	Role              string     `bson:"role" json:"role"`
	AssignedBarangays []string   `bson:"assigned_barangays" json:"assigned_barangays"`
	IsActive          bool       `bson:"is_active" json:"is_active"`
	LastLogin         *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// Caller maps a user record to its request-scoped identity.
func (u *User) Caller() access.Caller {
	return access.Caller{
		Id:              u.UserId,
		Role:            access.Role(u.Role),
		AssignedRegions: u.AssignedBarangays,
	}
}

type Service interface {
	Get(ctx context.Context, userId string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	TouchLastLogin(ctx context.Context, userId string) error
}

func NewService(repo Repository) Service {
	return repo
}
