package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

const msgCallbackRequested = "Thank you! We will call you back soon."

type homeApi struct {
	conf *core.Config
	svc  user.Service
}

func registerHomeAPI(e *echo.Echo, jwt, active echo.MiddlewareFunc, deps *Deps) {
	api := homeApi{conf: deps.Conf, svc: deps.UserSvc}

	e.GET("/", api.home)
	e.POST("/callback", api.requestCallback, jwt, active)
}

type HomeResponse struct {
	Message       string `json:"message"`
	ContactEmails string `json:"contact_emails"`
}

func (api *homeApi) home(ctx echo.Context) error {
	emails, err := api.svc.SuperuserEmails(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting superuser emails")
	}
	return ctx.JSON(http.StatusOK, HomeResponse{
		Message:       "Welcome to " + api.conf.AppName + " API!",
		ContactEmails: strings.Join(emails, "; "),
	})
}

func (api *homeApi) requestCallback(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.RequestCallback(ctx.Request().Context(), usr); err != nil {
		if errors.Cause(err) == user.ErrNoPhoneNumber {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "requesting callback")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgCallbackRequested})
}
