// Package inmemdb is a thread safe in-memory storage used by tests and local demos.
package inmemdb

import (
	"sync"

	"github.com/kepzesmindenkinek/backend/core/course"
	"github.com/kepzesmindenkinek/backend/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*course.Course
	}
)

func Open() *DB {
	return &DB{
		user:   &userTable{table: make(map[int]*user.User)},
		course: &courseTable{table: make(map[int]*course.Course)},
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[int]*user.User)
	db.user.pkCount = 0
	db.user.Unlock()

	db.course.Lock()
	db.course.table = make(map[int]*course.Course)
	db.course.pkCount = 0
	db.course.Unlock()
}
