package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/course"
)

const courseColumns = `id, name, price, description, duration, extra_info,
	for_pensioners, for_non_pensioners, active, slug`

type courseRepository struct {
	db core.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db core.DB) course.Repository {
	return &courseRepository{db: db}
}

func courseWhere(filter course.QueryFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Active != nil {
		conds = append(conds, "active = ?")
		args = append(args, *filter.Active)
	}
	if filter.ForPensioners != nil {
		conds = append(conds, "for_pensioners = ?")
		args = append(args, *filter.ForPensioners)
	}
	if filter.ForNonPensioners != nil {
		conds = append(conds, "for_non_pensioners = ?")
		args = append(args, *filter.ForNonPensioners)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	var found int
	err := repo.db.GetContext(ctx, &found, repo.db.Rebind(`SELECT COUNT(*) FROM courses WHERE slug = ?`), c.Slug)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "checking slug")
	}
	if found > 0 {
		return course.Course{}, course.ErrSlugExists
	}

	q := repo.db.Rebind(`INSERT INTO courses
		(name, price, description, duration, extra_info, for_pensioners, for_non_pensioners, active, slug)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err = repo.db.QueryRowxContext(ctx, q,
		c.Name, c.Price, c.Description, c.Duration, c.ExtraInfo,
		c.ForPensioners, c.ForNonPensioners, c.Active, c.Slug,
	).Scan(&c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, filter course.GetFilter) (course.Course, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != 0:
		where, arg = "id = ?", filter.ID
	case filter.Slug != "":
		where, arg = "slug = ?", filter.Slug
	default:
		return course.Course{}, course.ErrNotFound
	}

	var c course.Course
	q := repo.db.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE ` + where)
	if err := repo.db.GetContext(ctx, &c, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, filter course.QueryFilter) (int, error) {
	where, args := courseWhere(filter)
	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind(`SELECT COUNT(*) FROM courses`+where), args...); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return total, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, limit, offset int) ([]course.Course, error) {
	where, args := courseWhere(filter)
	q := `SELECT ` + courseColumns + ` FROM courses` + where + ` ORDER BY id`
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}
