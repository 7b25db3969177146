package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/repository/builder"
)

var userColumns = []string{"user_id", "username", "password", "role", "created_at"}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query, args := builder.NewSQLBuilder().
		Select(userColumns...).
		From("users").
		Where("username = ?", username).
		Build()

	var u domain.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, wrapError("get user", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query, args := builder.NewSQLBuilder().
		Select(userColumns...).
		From("users").
		Where("user_id = ?", id).
		Build()

	var u domain.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, wrapError("get user", err)
	}
	return &u, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	query, args := builder.NewSQLBuilder().
		Select("COUNT(*)").
		From("users").
		Where("role = ?", role).
		Build()

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, wrapError("count users", err)
	}
	return n, nil
}

// Create inserts the user and fills its ID and CreatedAt.
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query, args := builder.NewSQLBuilder().
		Insert("users", "username", "password", "role").
		Values(u.Username, u.PasswordHash, u.Role).
		Returning("user_id", "created_at").
		Build()

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		return wrapError("create user", err)
	}
	return nil
}
