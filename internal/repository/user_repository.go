package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/farmsight/pestscan/internal/model"
	"github.com/farmsight/pestscan/internal/utils"
)

// UserRepo persists accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, phone, password_hash, name, location, language, units, theme,
 farm_name, farm_size, COALESCE(crops,''), notification_email, notification_push,
 oauth_provider, oauth_id, created_at, last_login, is_active`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Name, &u.Location,
		&u.Language, &u.Units, &u.Theme, &u.FarmName, &u.FarmSize, &u.Crops,
		&u.NotificationEmail, &u.NotificationPush, &u.OAuthProvider, &u.OAuthID,
		&u.CreatedAt, &u.LastLogin, &u.IsActive)
	return u, err
}

// RegisterParams carries the inputs for account creation. Phone and
// Location are optional.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Location *string
}

// Create inserts an account with a bcrypt-hashed password and returns
// its ID. Email is lowercased before storage; preference columns take
// their schema defaults. Unique-index collisions surface as
// ErrEmailExists / ErrPhoneExists.
func (r *UserRepo) Create(ctx context.Context, p RegisterParams, bcryptCost int) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	hash, err := utils.HashPassword(p.Password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, phone, password_hash, name, location) VALUES (?,?,?,?,?)",
		email, p.Phone, hash, p.Name, p.Location)
	if err != nil {
		switch {
		case isDuplicate(err, "uq_users_email"):
			return 0, ErrEmailExists
		case isDuplicate(err, "uq_users_phone"):
			return 0, ErrPhoneExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByIdentifier fetches an account whose email OR phone matches the
// identifier. Email comparison is case-insensitive via lowercasing.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR phone=? LIMIT 1",
		strings.ToLower(identifier), identifier))
}

// Authenticate matches the identifier against email or phone and
// verifies the password hash. Both a missing account and a wrong
// password collapse into ErrInvalidCredentials so user existence is
// not revealed.
func (r *UserRepo) Authenticate(ctx context.Context, identifier, password string) (model.User, error) {
	u, err := r.GetByIdentifier(ctx, identifier)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// TouchLastLogin stamps last_login after a successful authentication.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=? WHERE id=?", at.UTC(), id)
	return err
}

// ProfileUpdate is a partial update of profile fields. Nil pointers
// leave the stored value untouched; Crops, when non-nil, is stored
// comma-joined.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Location *string
	FarmName *string
	FarmSize *string
	Crops    []string
}

// UpdateProfile applies a partial profile update and returns the
// fresh row. Only supplied fields are written; the statement is built
// column by column so an empty update is a no-op read.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) (model.User, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.Phone != nil {
		sets = append(sets, "phone=?")
		if trimmed := strings.TrimSpace(*p.Phone); trimmed == "" {
			args = append(args, nil)
		} else {
			args = append(args, trimmed)
		}
	}
	if p.Location != nil {
		sets = append(sets, "location=?")
		args = append(args, *p.Location)
	}
	if p.FarmName != nil {
		sets = append(sets, "farm_name=?")
		args = append(args, *p.FarmName)
	}
	if p.FarmSize != nil {
		sets = append(sets, "farm_size=?")
		args = append(args, *p.FarmSize)
	}
	if p.Crops != nil {
		sets = append(sets, "crops=?")
		args = append(args, model.JoinCrops(p.Crops))
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
		if err != nil {
			if isDuplicate(err, "uq_users_phone") {
				return model.User{}, ErrPhoneExists
			}
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdatePreferences sets language, units and theme in one statement.
// Validation of the values happens at the handler; this method only
// persists them.
func (r *UserRepo) UpdatePreferences(ctx context.Context, id uint64, language, units, theme string) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET language=?, units=?, theme=? WHERE id=?",
		language, units, theme, id)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateNotifications toggles the two independent notification flags.
// Nothing else on the row is touched.
func (r *UserRepo) UpdateNotifications(ctx context.Context, id uint64, emailOn, pushOn bool) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET notification_email=?, notification_push=? WHERE id=?",
		emailOn, pushOn, id)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// ChangePassword verifies the current password inside a transaction
// before writing the new hash, so a concurrent change cannot slip in
// between verify and update.
func (r *UserRepo) ChangePassword(ctx context.Context, id uint64, current, next string, bcryptCost int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var hash string
	err = tx.QueryRowContext(ctx,
		"SELECT password_hash FROM users WHERE id=? FOR UPDATE", id).Scan(&hash)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(hash, current) {
		return ErrWrongPassword
	}
	newHash, err := utils.HashPassword(next, bcryptCost)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", newHash, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the account. Scans, feedbacks and refresh tokens go
// with it through ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
