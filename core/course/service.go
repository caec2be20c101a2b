package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrSlugExists = errors.New("a course with this slug already exists")
)

// email subjects
const (
	SubjectApplication             = "Valaki jelentkezett egy tanfolyamodra"
	SubjectApplicationConfirmation = "Jelentkezésedet megkaptuk"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter) (Course, error)
		CountCourses(ctx context.Context, filter QueryFilter) (int, error)
		// QueryCourses returns matching courses ordered by ID.
		QueryCourses(ctx context.Context, filter QueryFilter, limit, offset int) ([]Course, error)
	}

	// SuperuserLister gives the recipients of applications.
	SuperuserLister interface {
		Superusers(ctx context.Context) ([]user.User, error)
	}

	Service interface {
		ListPensioner(ctx context.Context, page int) (Page, error)
		ListGeneral(ctx context.Context, page int) (Page, error)
		GetBySlug(ctx context.Context, slug string) (Course, error)
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Apply(ctx context.Context, c Course, usr user.User, app Application) error
	}

	service struct {
		repo       Repository
		users      SuperuserLister
		mailSvc    core.EmailService
		pageSize   int
		windowSize int
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users SuperuserLister, mailSvc core.EmailService, conf *core.Config) Service {
	svc := &service{
		repo:       repo,
		users:      users,
		mailSvc:    mailSvc,
		pageSize:   conf.Pagination.CoursesPerPage,
		windowSize: conf.Pagination.Window,
	}
	if svc.pageSize < 1 {
		svc.pageSize = core.DefaultCoursesPerPage
	}
	if svc.windowSize < 1 {
		svc.windowSize = core.DefaultPageWindow
	}
	return svc
}

// ListPensioner lists the active courses for pensioners.
func (svc *service) ListPensioner(ctx context.Context, page int) (Page, error) {
	return svc.list(ctx, QueryFilter{Active: boolPtr(true), ForPensioners: boolPtr(true)}, page)
}

// ListGeneral lists the active courses for non pensioners.
func (svc *service) ListGeneral(ctx context.Context, page int) (Page, error) {
	return svc.list(ctx, QueryFilter{Active: boolPtr(true), ForNonPensioners: boolPtr(true)}, page)
}

func (svc *service) list(ctx context.Context, filter QueryFilter, page int) (Page, error) {
	total, err := svc.repo.CountCourses(ctx, filter)
	if err != nil {
		return Page{}, errors.Wrap(err, "counting courses")
	}

	window := core.ComputeWindow(total, svc.pageSize, page, svc.windowSize)
	courses, err := svc.repo.QueryCourses(ctx, filter, window.Limit(), window.Offset())
	if err != nil {
		return Page{}, errors.Wrap(err, "querying courses")
	}

	listings := make([]Listing, 0, len(courses))
	for _, c := range courses {
		listings = append(listings, NewListing(c))
	}
	return Page{Courses: listings, Pagination: window}, nil
}

func (svc *service) GetBySlug(ctx context.Context, slug string) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{Slug: core.CleanString(slug, true /* lower */)})
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if nc.Slug == "" {
		nc.Slug = core.Slugify(nc.Name)
	}
	if _, err := svc.repo.GetCourse(ctx, GetFilter{Slug: nc.Slug}); err == nil {
		return Course{}, core.NewValidationError(ErrSlugExists, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Course{}, errors.Wrap(err, "checking slug uniqueness")
	}

	c, err := svc.repo.CreateCourse(ctx, Course{
		Name:             nc.Name,
		Price:            nc.Price,
		Description:      nc.Description,
		Duration:         nc.Duration,
		ExtraInfo:        nc.ExtraInfo,
		ForPensioners:    boolOr(nc.ForPensioners, true),
		ForNonPensioners: boolOr(nc.ForNonPensioners, true),
		Active:           boolOr(nc.Active, true),
		Slug:             nc.Slug,
	})
	return c, errors.Wrap(err, "creating course")
}

// Apply emails the application of usr to every superuser and a confirmation to usr.
func (svc *service) Apply(ctx context.Context, c Course, usr user.User, app Application) error {
	superusers, err := svc.users.Superusers(ctx)
	if err != nil {
		return errors.Wrap(err, "getting superusers")
	}

	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           core.RecipientsOf(superusers),
			Subject:      SubjectApplication,
			TemplateName: "application",
			TemplateData: map[string]interface{}{
				"Course":      c.Name,
				"LastName":    usr.LastName,
				"FirstName":   usr.FirstName,
				"Age":         app.Age,
				"Address":     app.Address,
				"Email":       usr.Email,
				"PhoneNumber": app.PhoneNumber,
				"Experience":  app.Experience,
			},
		},
		&core.EmailMessage{
			To:           core.RecipientsOf([]user.User{usr}),
			Subject:      SubjectApplicationConfirmation,
			TemplateName: "application_confirmation",
			TemplateData: map[string]interface{}{
				"FirstName": usr.FirstName,
				"Course":    c.Name,
			},
		},
	)
	return nil
}
