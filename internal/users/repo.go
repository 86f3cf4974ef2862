package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrLoginRequestNotFound = errors.New("login request not found")
)

type Repo struct{ DB *pgxpool.Pool }

type RegisterInput struct {
	Name         string
	Email        string
	PhoneNumber  string
	BusinessName string
}

// Register creates a business user in pending state.
func (r *Repo) Register(ctx context.Context, in RegisterInput) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO users (type, name, email, phone_number, business_name, status)
		VALUES ('business', $1, $2, $3, $4, 'pending')
		RETURNING id, type, name, email, COALESCE(phone_number, ''), COALESCE(business_name, ''),
		          status, remarks, created_at, updated_at`,
		in.Name, in.Email, in.PhoneNumber, in.BusinessName)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Type, &u.Name, &u.Email, &u.PhoneNumber, &u.BusinessName,
		&u.Status, &u.Remarks, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, type, name, email, COALESCE(phone_number, ''), COALESCE(business_name, ''),
		       status, remarks, created_at, updated_at
		FROM users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SetStatus records the admin's approve/reject/deny decision and
// returns the updated user.
func (r *Repo) SetStatus(ctx context.Context, id int64, status string, remarks *string) (*User, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE users SET status=$2, remarks=$3, updated_at=now() WHERE id=$1`,
		id, status, remarks)
	if err != nil {
		return nil, fmt.Errorf("set user status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) CreateLoginRequest(ctx context.Context, userID int64, sessionMinutes int) (*LoginRequest, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO login_requests (user_id, session_time_minutes, status)
		VALUES ($1, $2, 'pending')
		RETURNING id`,
		userID, sessionMinutes).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	return r.GetLoginRequest(ctx, id)
}

func (r *Repo) GetLoginRequest(ctx context.Context, id int64) (*LoginRequest, error) {
	var lr LoginRequest
	err := r.DB.QueryRow(ctx, `
		SELECT lr.id, lr.user_id, lr.session_time_minutes, lr.status, lr.remarks, lr.created_at,
		       COALESCE(u.name, '')
		FROM login_requests lr
		LEFT JOIN users u ON lr.user_id = u.id
		WHERE lr.id=$1`, id).
		Scan(&lr.ID, &lr.UserID, &lr.SessionTimeMinutes, &lr.Status, &lr.Remarks, &lr.CreatedAt, &lr.UserName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoginRequestNotFound
		}
		return nil, fmt.Errorf("get login request: %w", err)
	}
	return &lr, nil
}

func (r *Repo) DecideLoginRequest(ctx context.Context, id int64, status string, remarks *string) (*LoginRequest, error) {
	ct, err := r.DB.Exec(ctx,
		`UPDATE login_requests SET status=$2, remarks=$3 WHERE id=$1`,
		id, status, remarks)
	if err != nil {
		return nil, fmt.Errorf("decide login request: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrLoginRequestNotFound
	}
	return r.GetLoginRequest(ctx, id)
}
