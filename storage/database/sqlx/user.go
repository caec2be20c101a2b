package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

const userColumns = `id, username, first_name, last_name, email, phone_number,
	is_active, is_superuser, password_hash, date_joined, last_login`

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := `SELECT username, email FROM users WHERE (username = ? OR (email <> '' AND email = ?))`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		q, args, err = sqlx.In(q+` AND id NOT IN (?)`, username, email, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var found []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := repo.db.SelectContext(ctx, &found, repo.db.Rebind(q+` LIMIT 2`), args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	for _, f := range found {
		if f.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(found) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`INSERT INTO users
		(username, first_name, last_name, email, phone_number, is_active, is_superuser, password_hash, date_joined, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(ctx, q,
		usr.Username, usr.FirstName, usr.LastName, usr.Email, usr.PhoneNumber,
		usr.IsActive, usr.IsSuperuser, usr.PasswordHash, usr.DateJoined, usr.LastLogin,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where string
		args  []interface{}
	)
	switch {
	case filter.ID != 0:
		where, args = "id = ?", []interface{}{filter.ID}
	case filter.Username != "":
		where, args = "username = ?", []interface{}{filter.Username}
	case filter.Email != "":
		where, args = "email = ?", []interface{}{filter.Email}
	case filter.UsernameOrEmail != "":
		where, args = "(username = ? OR email = ?)", []interface{}{filter.UsernameOrEmail, filter.UsernameOrEmail}
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := repo.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY id LIMIT 1`)
	if err := repo.db.GetContext(ctx, &usr, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.IsActive != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *filter.IsActive)
	}
	if filter.IsSuperuser != nil {
		conds = append(conds, "is_superuser = ?")
		args = append(args, *filter.IsSuperuser)
	}

	q := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	users := make([]user.User, 0)
	if err := repo.db.SelectContext(ctx, &users, repo.db.Rebind(q+` ORDER BY id`), args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET
		username = :username, first_name = :first_name, last_name = :last_name, email = :email,
		phone_number = :phone_number, is_active = :is_active, is_superuser = :is_superuser,
		password_hash = :password_hash, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
