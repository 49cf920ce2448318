// Package inmemdb is a mutex-guarded in-memory backend used by tests and
// local tooling. Semantics match the PostgreSQL backend, including the
// transactional write paths.
package inmemdb

import (
	"sync"
	"time"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/catalog"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
	"github.com/courcompanion/backend/core/quiz"
	"github.com/courcompanion/backend/core/review"
)

type DB struct {
	mutex sync.RWMutex
	pk    int

	accounts    map[account.Role]map[int]*account.Account
	categories  map[int]*catalog.Category
	freeCourses map[int]*catalog.FreeCourse
	paidCourses map[int]*catalog.PaidCourse
	freeLessons map[int]*catalog.Lesson
	paidLessons map[int]*catalog.Lesson
	questions   map[int]*quiz.Question
	answers     map[int]*quiz.Answer
	enrollments map[int]*enroll.Enrollment
	progress    map[int]*enroll.LessonProgress
	orders      map[int]*order.Order
	reviews     map[int]*review.Review
}

func NewDB() *DB {
	return &DB{
		accounts: map[account.Role]map[int]*account.Account{
			account.RoleAdmin: {},
			account.RoleUser:  {},
			account.RoleCoach: {},
		},
		categories:  make(map[int]*catalog.Category),
		freeCourses: make(map[int]*catalog.FreeCourse),
		paidCourses: make(map[int]*catalog.PaidCourse),
		freeLessons: make(map[int]*catalog.Lesson),
		paidLessons: make(map[int]*catalog.Lesson),
		questions:   make(map[int]*quiz.Question),
		answers:     make(map[int]*quiz.Answer),
		enrollments: make(map[int]*enroll.Enrollment),
		progress:    make(map[int]*enroll.LessonProgress),
		orders:      make(map[int]*order.Order),
		reviews:     make(map[int]*review.Review),
	}
}

// Reset drops all rows; tests call it between cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.pk = 0
	db.accounts = map[account.Role]map[int]*account.Account{
		account.RoleAdmin: {},
		account.RoleUser:  {},
		account.RoleCoach: {},
	}
	db.categories = make(map[int]*catalog.Category)
	db.freeCourses = make(map[int]*catalog.FreeCourse)
	db.paidCourses = make(map[int]*catalog.PaidCourse)
	db.freeLessons = make(map[int]*catalog.Lesson)
	db.paidLessons = make(map[int]*catalog.Lesson)
	db.questions = make(map[int]*quiz.Question)
	db.answers = make(map[int]*quiz.Answer)
	db.enrollments = make(map[int]*enroll.Enrollment)
	db.progress = make(map[int]*enroll.LessonProgress)
	db.orders = make(map[int]*order.Order)
	db.reviews = make(map[int]*review.Review)
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int {
	db.pk++
	return db.pk
}

func now() time.Time { return time.Now().UTC() }
