package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core/user"
)

// activeUserMiddleware loads the authenticated user and rejects deactivated accounts.
// Must run after the JWT middleware.
func activeUserMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}

func superuserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
			if usr.IsSuperuser {
				return next(ctx)
			}
		} else if claims.IsSuperuser {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
