package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
)

const (
	activationSalt    = "kepzesmindenkinek.backend.core.user.activation"
	passwordResetSalt = "kepzesmindenkinek.backend.core.user.password_reset"
)

var (
	nowFunc = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
	errInvalidUID   = errors.New("invalid uid")

	tsEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// TokenGenerator makes and checks one-time tokens bound to the state of a User.
// A token is invalidated as soon as the user's password, last login or active flag changes.
type TokenGenerator struct {
	salt      []byte
	secretKey []byte
	timeout   time.Duration
}

func NewTokenGenerator(salt, secretKey string, timeout time.Duration) TokenGenerator {
	return TokenGenerator{salt: []byte(salt), secretKey: []byte(secretKey), timeout: timeout}
}

// ActivationTokens returns the generator of account activation (and email confirmation) tokens.
func ActivationTokens(conf *core.Config) TokenGenerator {
	return NewTokenGenerator(activationSalt, conf.SecretKey, conf.ActivationTimeoutDelta)
}

// PasswordResetTokens returns the generator of password reset tokens.
func PasswordResetTokens(conf *core.Config) TokenGenerator {
	return NewTokenGenerator(passwordResetSalt, conf.SecretKey, conf.PasswordResetTimeoutDelta)
}

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(usr.ID)))
}

// DecodeUID base64 decodes given UID
func DecodeUID(uid string) (int, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, errInvalidUID
	}
	id, err := strconv.Atoi(string(idBytes))
	if err != nil || id <= 0 {
		return 0, errInvalidUID
	}
	return id, nil
}

// MakeToken generates a token for a given User.
func (g TokenGenerator) MakeToken(usr User) string {
	return g.makeTokenWithTimestamp(usr, numDaysSince2001(nowFunc()))
}

// CheckToken checks that a token for a given User is valid.
func (g TokenGenerator) CheckToken(usr User, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}

	data, err := tsEncoding.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(g.makeTokenWithTimestamp(usr, ts)), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(nowFunc()) - ts) > int(g.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (g TokenGenerator) makeTokenWithTimestamp(usr User, ts int) string {
	tsB32 := tsEncoding.EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, g.sign(hashValue(usr, ts)))
}

func (g TokenGenerator) sign(val []byte) string {
	key := sha256.Sum256(append(append([]byte{}, g.salt...), g.secretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(usr User, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.Itoa(usr.ID))
	val.Write(usr.PasswordHash)
	if usr.LastLogin.Valid {
		val.WriteString(usr.LastLogin.Time.UTC().Truncate(time.Second).String())
	}
	val.WriteString(strconv.FormatBool(usr.IsActive))
	val.WriteString(usr.Email)
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
