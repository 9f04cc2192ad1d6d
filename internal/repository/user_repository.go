package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/property-rental/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const userColumns = "id,email,password,first_name,last_name,role,phone_number,is_active,created_at,updated_at"

// UserRepo reads and writes the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(s rowScanner) (model.User, error) {
	var (
		u     model.User
		role  string
		phone sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &phone,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.PhoneNumber = phone.String
	return u, nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "email=?", NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "id=?", id)
}

// Create inserts u and returns its new ID. A duplicate email maps to
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	var phone sql.NullString
	if u.PhoneNumber != "" {
		phone = sql.NullString{String: u.PhoneNumber, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password, first_name, last_name, role, phone_number) VALUES (?,?,?,?,?,?)",
		NormalizeEmail(u.Email), u.PasswordHash, u.FirstName, u.LastName, string(u.Role), phone)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return uint64(id), nil
}

// Update applies the non-nil fields of upd and returns the stored row.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd model.ProfileUpdate) (model.User, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	if upd.FirstName != nil {
		sets, args = append(sets, "first_name=?"), append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		sets, args = append(sets, "last_name=?"), append(args, *upd.LastName)
	}
	if upd.PhoneNumber != nil {
		phone := sql.NullString{String: *upd.PhoneNumber, Valid: *upd.PhoneNumber != ""}
		sets, args = append(sets, "phone_number=?"), append(args, phone)
	}
	if upd.IsActive != nil {
		sets, args = append(sets, "is_active=?"), append(args, *upd.IsActive)
	}
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	// MySQL reports zero affected rows when values are unchanged, so only
	// the follow-up read can tell a missing row apart.
	return r.GetByID(ctx, id)
}

// Delete removes a user. ErrNotFound when no row was deleted.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// CountByRole returns the number of users per role. Roles without users
// are reported as zero.
func (r *UserRepo) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	defer rows.Close()

	out := make(map[model.Role]int, 3)
	for _, role := range model.Roles() {
		out[role] = 0
	}
	for rows.Next() {
		var (
			role string
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("count users: %w", err)
		}
		out[model.Role(role)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return out, nil
}
