package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core/course"
	"github.com/kepzesmindenkinek/backend/core/user"
)

const (
	courseContextKey = "course"

	msgApplied = "Thank you for your application! We will contact you soon."
)

type courseApi struct {
	svc      course.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, deps *Deps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses")
	cg.GET("/pensioner", api.listPensioner)
	cg.GET("/general", api.listGeneral)
	cg.POST("", api.create, jwt, active, superuserMiddleware)

	dg := cg.Group("/:slug", activeCourseMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.POST("/apply", api.apply, jwt, active)
}

// Handlers

func (api *courseApi) listPensioner(ctx echo.Context) error {
	var pr PageRequest
	pr.Bind(ctx)

	page, err := api.svc.ListPensioner(ctx.Request().Context(), pr.Page)
	if err != nil {
		return errors.Wrap(err, "listing pensioner courses")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *courseApi) listGeneral(ctx echo.Context) error {
	var pr PageRequest
	pr.Bind(ctx)

	page, err := api.svc.ListGeneral(ctx.Request().Context(), pr.Page)
	if err != nil {
		return errors.Wrap(err, "listing general courses")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course.NewListing(c))
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CourseDetail{Listing: course.NewListing(c), NameParts: c.NameParts()})
}

func (api *courseApi) apply(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.Application
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Application")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.svc.Apply(ctx.Request().Context(), c, usr, data); err != nil {
		return errors.Wrap(err, "applying for course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgApplied})
}

// activeCourseMiddleware loads the course named by the `slug` param. Inactive courses are not found.
func activeCourseMiddleware(svc course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, err := svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting course by slug")
			}
			if !c.Active {
				return errHttpNotFound
			}
			ctx.Set(courseContextKey, c)
			return next(ctx)
		}
	}
}

func contextCourse(ctx echo.Context) (course.Course, error) {
	if c, ok := ctx.Get(courseContextKey).(course.Course); ok {
		return c, nil
	}
	return course.Course{}, errors.New("course object not found in echo.Context")
}

type CourseDetail struct {
	course.Listing
	NameParts []string `json:"name_parts"`
}
