package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"jwtauthenticator/internal/models"
)

var (
	// ErrDuplicateUsername is returned when an insert hits the UNIQUE
	// constraint on username. The constraint, not any pre-check, is the
	// authoritative guard against concurrent registrations.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrUserNotFound is returned when no row matches the username.
	ErrUserNotFound = errors.New("user not found")
)

type AuthRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	ListUsers() ([]models.User, error)
}

type authRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewAuthRepository(db *sqlx.DB, log *zap.Logger) AuthRepository {
	return &authRepository{db: db, log: log}
}

func (r *authRepository) CreateUser(user *models.User) error {
	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowx(query, user.Username, user.PasswordHash).StructScan(user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *authRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	err := r.db.Get(&user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) ListUsers() ([]models.User, error) {
	var users []models.User
	query := `SELECT id, username, password_hash, created_at FROM users ORDER BY id`
	err := r.db.Select(&users, query)
	if err != nil {
		return nil, err
	}
	return users, nil
}
