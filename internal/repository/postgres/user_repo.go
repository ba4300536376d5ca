package postgres

import (
	"context"
	"fmt"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/db"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, is_active, date_joined`

type UserRepo struct {
	DB *db.DB
}

func (r *UserRepo) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.DB.Conn(ctx).Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.DateJoined,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
        ORDER BY LOWER(username) = LOWER($1) DESC
        LIMIT 1`
	return r.getUser(ctx, query, login)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *UserRepo) UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND id <> $2)`, username, except)
}

func (r *UserRepo) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`, email, except)
}

func (r *UserRepo) UpdateUserIdentity(ctx context.Context, id uuid.UUID, username, email string) error {
	tag, err := r.DB.Conn(ctx).Exec(ctx, `UPDATE users SET username = $2, email = $3 WHERE id = $1`, id, username, email)
	if err != nil {
		return fmt.Errorf("update user: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.DB.Conn(ctx).Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepo) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.DB.Conn(ctx).QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.DateJoined,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := r.DB.Conn(ctx).QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}

type ProfileRepo struct {
	DB *db.DB
}

func (r *ProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p := model.Profile{UserID: userID}
	err := r.DB.Conn(ctx).QueryRow(ctx, `SELECT phone_number FROM profiles WHERE user_id = $1`, userID).Scan(&p.PhoneNumber)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepo) UpsertProfile(ctx context.Context, p *model.Profile) error {
	_, err := r.DB.Conn(ctx).Exec(ctx, `
        INSERT INTO profiles (user_id, phone_number) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET phone_number = EXCLUDED.phone_number`,
		p.UserID, p.PhoneNumber)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

