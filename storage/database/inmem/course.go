package inmemdb

import (
	"context"
	"sort"

	"github.com/kepzesmindenkinek/backend/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

// filter returns matching courses ordered by ID. The caller must hold the lock.
func (repo *courseRepository) filter(filter course.QueryFilter) []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		if filter.ForPensioners != nil && c.ForPensioners != *filter.ForPensioners {
			continue
		}
		if filter.ForNonPensioners != nil && c.ForNonPensioners != *filter.ForNonPensioners {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Slug == c.Slug {
			return course.Course{}, course.ErrSlugExists
		}
	}
	repo.db.pkCount++
	c.ID = repo.db.pkCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, filter course.GetFilter) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.db.table {
		if (filter.ID != 0 && c.ID == filter.ID) || (filter.ID == 0 && filter.Slug != "" && c.Slug == filter.Slug) {
			return *c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CountCourses(_ context.Context, filter course.QueryFilter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.filter(filter)), nil
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, limit, offset int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.filter(filter)
	if offset >= len(courses) {
		return []course.Course{}, nil
	}
	end := len(courses)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return courses[offset:end], nil
}
