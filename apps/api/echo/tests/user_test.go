package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/kepzesmindenkinek/backend/apps/api/echo"
	"github.com/kepzesmindenkinek/backend/core/user"
	testutil "github.com/kepzesmindenkinek/backend/tests"
)

const (
	pwd    = "Tanfolyam-2024!"
	newPwd = "Szamitogep-Kezdo#7"
)

func Test_userApi_signUp(t *testing.T) {
	env := setup(t)
	testutil.CreateUser(t, env.usrRepo, "Béla", "bela", "bela@example.hu", pwd, true, false)

	path := "/v1/users/signup"
	body := func(uname, email, password, confirm string) []byte {
		return marchallObj(t, user.NewUser{
			Username:        uname,
			FirstName:       "Anna",
			LastName:        "Kovács",
			Email:           email,
			Password:        password,
			PasswordConfirm: confirm,
		})
	}

	tests := []httpTest{
		{
			name:     "taken username",
			method:   http.MethodPost,
			path:     path,
			body:     body("Bela", "anna@example.hu", pwd, pwd),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name:     "taken email",
			method:   http.MethodPost,
			path:     path,
			body:     body("anna", "BELA@example.hu", pwd, pwd),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name:     "numeric password",
			method:   http.MethodPost,
			path:     path,
			body:     body("anna", "anna@example.hu", "1234567890", "1234567890"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     path,
			body:     body("", "anna@example.hu", pwd, pwd),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required"}),
		},
		{
			name:     "mismatching passwords",
			method:   http.MethodPost,
			path:     path,
			body:     body("anna", "anna@example.hu", pwd, newPwd),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, env, tests)
	assert.Empty(t, env.mailSvc.SentMessages())

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, body(" Anna ", "Anna@Example.hu", pwd, pwd))
		env.do(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp SignUpResponse
		unmarchallObj(t, rec.Body.Bytes(), &resp)
		assert.Equal(t, "anna", resp.User.Username)
		assert.Equal(t, "anna@example.hu", resp.User.Email)
		assert.False(t, resp.User.IsActive)

		sent := env.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, user.SubjectRegistration, sent[0].Subject)
		assert.Equal(t, []string{"anna@example.hu"}, sent[0].To.Addresses())
	})
}

func Test_userApi_activate(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, false, false)
	uid := user.EncodeUID(usr)
	token := user.ActivationTokens(env.conf).MakeToken(usr)
	invalid := marchallObj(t, httpErr{Error: user.ErrInvalidActivation.Error()})

	runHTTPTests(t, env, []httpTest{
		{
			name:     "invalid uid",
			method:   http.MethodGet,
			path:     "/v1/users/activate/xyz/" + token,
			wantCode: http.StatusBadRequest,
			wantData: invalid,
		},
		{
			name:     "invalid token",
			method:   http.MethodGet,
			path:     "/v1/users/activate/" + uid + "/abc-123",
			wantCode: http.StatusBadRequest,
			wantData: invalid,
		},
	})

	req, rec := newRequest(http.MethodGet, "/v1/users/activate/"+uid+"/"+token)
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	unmarchallObj(t, rec.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp.Token)

	activated, err := env.usrRepo.GetUser(req.Context(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	// the link cannot be used twice
	req, rec = newRequest(http.MethodGet, "/v1/users/activate/"+uid+"/"+token)
	env.do(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	testutil.CreateUser(t, env.usrRepo, "Béla", "bela", "bela@example.hu", pwd, false, false)

	path := "/v1/users/login"
	body := func(uname, password string) []byte {
		return marchallObj(t, LoginRequest{Username: uname, Password: password})
	}

	runHTTPTests(t, env, []httpTest{
		{
			name:     "missing credentials",
			method:   http.MethodPost,
			path:     path,
			body:     body("", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     path,
			body:     body("anna", newPwd),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     path,
			body:     body("cecil", pwd),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     path,
			body:     body("bela", pwd),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	for _, uname := range []string{"anna", " ANNA@example.hu "} {
		req, rec := newRequest(http.MethodPost, path, body(uname, pwd))
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		unmarchallObj(t, rec.Body.Bytes(), &resp)
		assert.NotEmpty(t, resp.Token)
	}

	loggedIn, err := env.usrRepo.GetUser(newCtx(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.True(t, loggedIn.LastLogin.Valid)
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)
	anna := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	bela := testutil.CreateUser(t, env.usrRepo, "Béla", "bela", "bela@example.hu", pwd, false, false)
	path := "/v1/users/token-refresh"

	expiredIat := time.Now().Add(-env.conf.Server.JWTRefreshExpirationDelta - time.Hour).Unix()

	runHTTPTests(t, env, []httpTest{
		{
			name:     "missing token",
			method:   http.MethodPost,
			path:     path,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "refresh expired",
			method:   http.MethodPost,
			path:     path,
			token:    getToken(t, env.conf, anna, expiredIat),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     path,
			token:    getToken(t, env.conf, bela),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, path, getToken(t, env.conf, anna))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	unmarchallObj(t, rec.Body.Bytes(), &resp)
	assert.NotEmpty(t, resp.Token)
}

func Test_userApi_me(t *testing.T) {
	env := setup(t)
	anna := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	bela := testutil.CreateUser(t, env.usrRepo, "Béla", "bela", "bela@example.hu", pwd, false, false)
	annaToken := getToken(t, env.conf, anna)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "unknown user",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    getToken(t, env.conf, user.User{ID: 999, Username: "ghost"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{
			name:     "inactive user",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    getToken(t, env.conf, bela),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/users/me",
			token:    annaToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, anna),
		},
		{
			name:   "update with invalid data",
			method: http.MethodPut,
			path:   "/v1/users/me",
			body: marchallObj(t, user.PersonalData{
				FirstName:   "Anna",
				LastName:    "Kovács",
				Email:       "bela@example.hu",
				PhoneNumber: "12",
			}),
			token:    annaToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"phone_number": "enter a valid phone number"}),
		},
		{
			name:   "update with taken email",
			method: http.MethodPut,
			path:   "/v1/users/me",
			body: marchallObj(t, user.PersonalData{
				FirstName: "Anna",
				LastName:  "Kovács",
				Email:     "bela@example.hu",
			}),
			token:    annaToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	})

	t.Run("update", func(t *testing.T) {
		env.mailSvc.Reset()
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", annaToken, marchallObj(t, user.PersonalData{
			FirstName:   " Anikó ",
			LastName:    "Kovács",
			Email:       "anna@example.hu",
			PhoneNumber: "+36301234567",
		}))
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		unmarchallObj(t, rec.Body.Bytes(), &usr)
		assert.Equal(t, "Anikó", usr.FirstName)
		assert.Equal(t, "+36301234567", usr.PhoneNumber)
		assert.True(t, usr.IsActive)
		assert.Empty(t, env.mailSvc.SentMessages())
	})

	t.Run("update email", func(t *testing.T) {
		env.mailSvc.Reset()
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me", annaToken, marchallObj(t, user.PersonalData{
			FirstName: "Anna",
			LastName:  "Kovács",
			Email:     "anna.kovacs@example.hu",
		}))
		env.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var usr user.User
		unmarchallObj(t, rec.Body.Bytes(), &usr)
		assert.Equal(t, "anna.kovacs@example.hu", usr.Email)
		assert.False(t, usr.IsActive)

		sent := env.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, user.SubjectRegistration, sent[0].Subject)
		assert.Equal(t, []string{"anna.kovacs@example.hu"}, sent[0].To.Addresses())
	})
}

func Test_userApi_changePassword(t *testing.T) {
	env := setup(t)
	anna := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	token := getToken(t, env.conf, anna)
	path := "/v1/users/me/password"

	runHTTPTests(t, env, []httpTest{
		{
			name:     "wrong old password",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, user.ChangePassword{OldPassword: newPwd, Password: newPwd, PasswordConfirm: newPwd}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"old_password": "your old password was entered incorrectly"}),
		},
		{
			name:     "short password",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, user.ChangePassword{OldPassword: pwd, Password: "kurta", PasswordConfirm: "kurta"}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
		{
			name:     "success",
			method:   http.MethodPost,
			path:     path,
			body:     marchallObj(t, user.ChangePassword{OldPassword: pwd, Password: newPwd, PasswordConfirm: newPwd}),
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, SuccessResponse{Success: "Your password has been changed."}),
		},
	})

	usr, err := env.usrRepo.GetUser(newCtx(), user.GetFilter{ID: anna.ID})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword(newPwd))
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	anna := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	testutil.CreateUser(t, env.usrRepo, "Béla", "bela", "bela@example.hu", pwd, false, false)

	success := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	runHTTPTests(t, env, []httpTest{
		{
			name:     "invalid email",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     marchallObj(t, PasswordResetRequest{Email: "anna"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     marchallObj(t, PasswordResetRequest{Email: "cecil@example.hu"}),
			wantCode: http.StatusOK,
			wantData: success,
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset",
			body:     marchallObj(t, PasswordResetRequest{Email: "bela@example.hu"}),
			wantCode: http.StatusOK,
			wantData: success,
		},
	})
	assert.Empty(t, env.mailSvc.SentMessages())

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, PasswordResetRequest{Email: "Anna@example.hu"}))
	env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, user.SubjectPasswordReset, sent[0].Subject)
	assert.Equal(t, []string{"anna@example.hu"}, sent[0].To.Addresses())

	uid := user.EncodeUID(anna)
	token := user.PasswordResetTokens(env.conf).MakeToken(anna)
	runHTTPTests(t, env, []httpTest{
		{
			name:     "invalid token",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset-confirm",
			body:     marchallObj(t, user.ResetPassword{UID: uid, Token: "abc-123", Password: newPwd, PasswordConfirm: newPwd}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"token": "invalid value"}),
		},
		{
			name:     "confirm",
			method:   http.MethodPost,
			path:     "/v1/users/password-reset-confirm",
			body:     marchallObj(t, user.ResetPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	})

	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: "anna", Password: newPwd}))
	env.do(req, rec)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func Test_userApi_cancel(t *testing.T) {
	env := setup(t)
	anna := testutil.CreateUser(t, env.usrRepo, "Anna", "anna", "anna@example.hu", pwd, true, false)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@example.hu", pwd, true, true)

	runHTTPTests(t, env, []httpTest{
		{
			name:     "superuser",
			method:   http.MethodDelete,
			path:     "/v1/users/me",
			token:    getToken(t, env.conf, admin),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: user.ErrSuperuserCancel.Error()}),
		},
		{
			name:     "user",
			method:   http.MethodDelete,
			path:     "/v1/users/me",
			token:    getToken(t, env.conf, anna),
			wantCode: http.StatusNoContent,
		},
	})

	usr, err := env.usrRepo.GetUser(newCtx(), user.GetFilter{ID: anna.ID})
	require.NoError(t, err)
	assert.False(t, usr.IsActive)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, user.SubjectCancellation, sent[0].Subject)

	// the cancelled profile is locked out
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, env.conf, anna))
	env.do(req, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
