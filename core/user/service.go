package user

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kepzesmindenkinek/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactive           = errors.New("account deactivated")
	ErrInvalidActivation  = errors.New("the activation link is invalid or has expired")
	ErrNoPhoneNumber      = errors.New("no phone number is set, a callback cannot be requested")
	ErrSuperuserCancel    = errors.New("superusers cannot cancel their profile")

	invalidValueMsg = "invalid value"
)

// email subjects
const (
	SubjectRegistration  = "Erősítsd meg a regisztrációdat a Képzés Mindenkinek! oldalán"
	SubjectCancellation  = "Deaktiváltuk a fiókodat"
	SubjectCallback      = "Valaki visszahívást kért"
	SubjectPasswordReset = "Jelszó visszaállítása a Képzés Mindenkinek! oldalán"
)

type (
	Repository interface {
		// CheckUsernameUniqueness returns ErrUsernameExists or ErrEmailExists if another user (not in excludedUsers) holds them.
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers returns matching users ordered by ID.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error
		SignUp(ctx context.Context, nu NewUser) (User, error)
		Activate(ctx context.Context, uid, token string) (User, error)
		Authenticate(ctx context.Context, uname, pwd string) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		UpdatePersonalData(ctx context.Context, usr User, pd PersonalData) (User, error)
		ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetPassword) error
		Cancel(ctx context.Context, usr User) (User, error)
		RequestCallback(ctx context.Context, usr User) error
		Superusers(ctx context.Context) ([]User, error)
		SuperuserEmails(ctx context.Context) ([]string, error)
	}

	service struct {
		repo             Repository
		mailSvc          core.EmailService
		logger           core.Logger
		activationTokens TokenGenerator
		resetTokens      TokenGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) Service {
	return &service{
		repo:             repo,
		mailSvc:          mailSvc,
		logger:           logger,
		activationTokens: ActivationTokens(conf),
		resetTokens:      PasswordResetTokens(conf),
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking username uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// SignUp creates an inactive user and sends them the activation link.
func (svc *service) SignUp(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:    nu.Username,
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		Email:       nu.Email,
		PhoneNumber: nu.PhoneNumber,
		IsActive:    false,
		DateJoined:  time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendActivationLink(usr)
	svc.logger.Info(fmt.Sprintf("New user signed up: %d, %s", usr.ID, usr.Username))
	return usr, nil
}

func (svc *service) Activate(ctx context.Context, uid, token string) (User, error) {
	id, err := DecodeUID(uid)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("Unsuccessful token validation: uid %s; token %s", uid, token))
		return User{}, ErrInvalidActivation
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			svc.logger.Warn(fmt.Sprintf("Unsuccessful token validation: uid %s; token %s", uid, token))
			return User{}, ErrInvalidActivation
		}
		return User{}, errors.Wrap(err, "getting user")
	}
	if err = svc.activationTokens.CheckToken(usr, token); err != nil {
		svc.logger.Warn(fmt.Sprintf("Unsuccessful user activation: user %d", usr.ID), err, usr)
		return User{}, ErrInvalidActivation
	}

	usr.IsActive = true
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "activating user")
}

func (svc *service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrInactive
	}

	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	usr, err = svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

// UpdatePersonalData saves the personal data of usr.
// Changing the email address deactivates the account until the new address is confirmed.
func (svc *service) UpdatePersonalData(ctx context.Context, usr User, pd PersonalData) (User, error) {
	emailChanged := usr.Email != pd.Email

	usr.FirstName = pd.FirstName
	usr.LastName = pd.LastName
	usr.PhoneNumber = pd.PhoneNumber
	if emailChanged {
		usr.Email = pd.Email
		usr.IsActive = false
	}

	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	if emailChanged {
		svc.sendActivationLink(usr)
	}
	return usr, nil
}

func (svc *service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := usr.SetPassword(cp.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "updating user")
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrInactive
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           core.RecipientsOf([]User{usr}),
		Subject:      SubjectPasswordReset,
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Username": usr.Username,
			"UID":      EncodeUID(usr),
			"Token":    svc.resetTokens.MakeToken(usr),
		},
	})
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	id, err := DecodeUID(rp.UID)
	if err != nil {
		return core.NewFieldValidationError("uid", invalidValueMsg)
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewFieldValidationError("uid", invalidValueMsg)
		}
		return errors.Wrap(err, "getting user")
	}
	if err = svc.resetTokens.CheckToken(usr, rp.Token); err != nil {
		return core.NewFieldValidationError("token", invalidValueMsg)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return errors.Wrap(err, "updating user")
}

// Cancel deactivates the profile of usr and notifies them.
func (svc *service) Cancel(ctx context.Context, usr User) (User, error) {
	if usr.IsSuperuser {
		return User{}, ErrSuperuserCancel
	}
	usr.IsActive = false
	updated, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("An error happened during the cancellation of the user %d, %s", usr.ID, usr.Username), err, usr)
		return User{}, errors.Wrap(err, "deactivating user")
	}
	usr = updated

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           core.RecipientsOf([]User{usr}),
		Subject:      SubjectCancellation,
		TemplateName: "user_cancellation",
		TemplateData: map[string]interface{}{"Username": usr.Username},
	})
	return usr, nil
}

// RequestCallback asks every superuser to call usr back.
func (svc *service) RequestCallback(ctx context.Context, usr User) error {
	if !usr.HasPhoneNumber() {
		return ErrNoPhoneNumber
	}
	superusers, err := svc.Superusers(ctx)
	if err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           core.RecipientsOf(superusers),
		Subject:      SubjectCallback,
		TemplateName: "callback_request",
		TemplateData: map[string]interface{}{
			"LastName":    usr.LastName,
			"FirstName":   usr.FirstName,
			"Username":    usr.Username,
			"Email":       usr.Email,
			"PhoneNumber": usr.PhoneNumber,
		},
	})
	return nil
}

func (svc *service) Superusers(ctx context.Context) ([]User, error) {
	users, err := svc.repo.QueryUsers(ctx, QueryFilter{IsSuperuser: BoolPtr(true)})
	return users, errors.Wrap(err, "querying superusers")
}

func (svc *service) SuperuserEmails(ctx context.Context) ([]string, error) {
	superusers, err := svc.Superusers(ctx)
	if err != nil {
		return nil, err
	}
	return core.RecipientsOf(superusers).Addresses(), nil
}

func (svc *service) sendActivationLink(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           core.RecipientsOf([]User{usr}),
		Subject:      SubjectRegistration,
		TemplateName: "user_registration",
		TemplateData: map[string]interface{}{
			"Username": usr.Username,
			"UID":      EncodeUID(usr),
			"Token":    svc.activationTokens.MakeToken(usr),
		},
	})
}
