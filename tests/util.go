package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kepzesmindenkinek/backend/core"
	"github.com/kepzesmindenkinek/backend/core/course"
	"github.com/kepzesmindenkinek/backend/core/user"
)

// Config returns a configuration suitable for tests: test mode on, small pages.
func Config() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Képzés Mindenkinek",
		SecretKey:                 "test-secret-key",
		SiteDomain:                "localhost:8000",
		SiteProtocol:              "http",
		ActivationTimeoutDelta:    3 * 24 * time.Hour,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        5 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Email: core.EmailConfig{
			Provider: "console",
			Sender:   "noreply@kepzesmindenkinek.hu",
		},
		Pagination: core.PaginationConfig{CoursesPerPage: 4, Window: 3},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, uname, email, pwd string,
	isActive, isSuperuser bool,
	joinedAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(joinedAt) > 0 {
		tstamp = joinedAt[0].UTC()
	}
	usr := user.User{
		Username:    uname,
		FirstName:   firstName,
		LastName:    "Teszt",
		Email:       email,
		IsActive:    isActive,
		IsSuperuser: isSuperuser,
		DateJoined:  tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, name string, price int, forPensioners, forNonPensioners, active bool) course.Course {
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Name:             name,
		Price:            price,
		Description:      "Első pont * Második pont",
		Duration:         "10 alkalom",
		ForPensioners:    forPensioners,
		ForNonPensioners: forNonPensioners,
		Active:           active,
		Slug:             core.Slugify(name),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// CreateCourses creates n active courses named "Course 1".."Course n".
func CreateCourses(t *testing.T, repo course.Repository, n int, forPensioners, forNonPensioners bool) []course.Course {
	courses := make([]course.Course, 0, n)
	for i := 1; i <= n; i++ {
		courses = append(courses, CreateCourse(t, repo, fmt.Sprintf("Course %d", i), 1000*i, forPensioners, forNonPensioners, true))
	}
	return courses
}
