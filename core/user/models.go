package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/kepzesmindenkinek/backend/core"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"`   // UTC
}

var _ core.Addressee = User{}

// FullName returns the name in hungarian order (last name first).
func (u User) FullName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

func (u User) EmailAddress() mail.Address {
	return mail.Address{Name: u.FullName(), Address: u.Email}
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) HasPhoneNumber() bool {
	return core.CleanString(u.PhoneNumber) != ""
}

// NewUser contains information needed to sign up.
type NewUser struct {
	Username        string `json:"username" validate:"required,max=150,username"`
	FirstName       string `json:"first_name" validate:"required,notblank,max=150"`
	LastName        string `json:"last_name" validate:"required,notblank,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	PhoneNumber     string `json:"phone_number" validate:"max=20,hu_phone"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.PhoneNumber = core.CleanString(nu.PhoneNumber)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// PersonalData defines what information a user may change about themselves.
type PersonalData struct {
	FirstName   string `json:"first_name" validate:"required,notblank,max=150"`
	LastName    string `json:"last_name" validate:"required,notblank,max=150"`
	Email       string `json:"email" validate:"required,email,max=254"`
	PhoneNumber string `json:"phone_number" validate:"max=20,hu_phone"`
}

func (pd *PersonalData) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	pd.FirstName = core.CleanString(pd.FirstName)
	pd.LastName = core.CleanString(pd.LastName)
	pd.Email = core.CleanString(pd.Email, true /* lower */)
	pd.PhoneNumber = core.CleanString(pd.PhoneNumber)

	if err := validate.Struct(pd); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, origUsr.Username, pd.Email, origUsr)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	usr User // checked for similarity
}

func (cp *ChangePassword) Validate(usr User, validate *validator.Validate) error {
	cp.usr = usr
	if err := validate.Struct(cp); err != nil {
		return err
	}
	if err := usr.CheckPassword(cp.OldPassword); err != nil {
		return core.NewFieldValidationError("old_password", "your old password was entered incorrectly")
	}
	return nil
}

type ResetPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// GetFilter selects a single user. The first non-zero field is used.
type GetFilter struct {
	ID              int
	Username        string
	Email           string
	UsernameOrEmail string
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	IsActive    *bool
	IsSuperuser *bool
}

func BoolPtr(b bool) *bool { return &b }
