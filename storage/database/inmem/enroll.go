package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core/enroll"
)

type enrollRepository struct {
	db *DB
}

func NewEnrollRepository(db *DB) enroll.Repository {
	return &enrollRepository{db: db}
}

func (repo *enrollRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr.ID = repo.db.nextID()
	enr.CreatedAt = now()
	enr.UpdatedAt = enr.CreatedAt
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollRepository) QueryEnrollmentsByUser(ctx context.Context, userID int) ([]enroll.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var enrs []enroll.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].ID < enrs[j].ID })
	return enrs, nil
}

func (repo *enrollRepository) QueryEnrollmentsByPaidCourse(ctx context.Context, courseID int) ([]enroll.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var enrs []enroll.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.PaidCourseID != nil && *enr.PaidCourseID == courseID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].ID < enrs[j].ID })
	return enrs, nil
}

func (repo *enrollRepository) GetEnrollment(ctx context.Context, userID int, freeCourseID, paidCourseID *int) (enroll.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.UserID != userID {
			continue
		}
		if freeCourseID != nil && enr.FreeCourseID != nil && *enr.FreeCourseID == *freeCourseID {
			return *enr, nil
		}
		if paidCourseID != nil && enr.PaidCourseID != nil && *enr.PaidCourseID == *paidCourseID {
			return *enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollRepository) UpdateEnrollmentStatus(ctx context.Context, id int, status enroll.Status) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.enrollments[id]
	if !ok {
		return enroll.ErrNotFound
	}
	enr.Status = status
	enr.UpdatedAt = now()
	return nil
}

func (repo *enrollRepository) CreateProgress(ctx context.Context, p enroll.LessonProgress) (enroll.LessonProgress, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// completing the same lesson twice is a no-op
	for _, existing := range repo.db.progress {
		if existing.UserID != p.UserID {
			continue
		}
		if p.FreeLessonID != nil && existing.FreeLessonID != nil && *existing.FreeLessonID == *p.FreeLessonID {
			return *existing, nil
		}
		if p.PaidLessonID != nil && existing.PaidLessonID != nil && *existing.PaidLessonID == *p.PaidLessonID {
			return *existing, nil
		}
	}

	p.ID = repo.db.nextID()
	p.CreatedAt = now()
	repo.db.progress[p.ID] = &p
	return p, nil
}

func (repo *enrollRepository) QueryProgressByUser(ctx context.Context, userID int) ([]enroll.LessonProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var progress []enroll.LessonProgress
	for _, p := range repo.db.progress {
		if p.UserID == userID {
			progress = append(progress, *p)
		}
	}
	sort.Slice(progress, func(i, j int) bool { return progress[i].ID < progress[j].ID })
	return progress, nil
}

func (repo *enrollRepository) UpdateUserCourseCounters(ctx context.Context, userID, started, ongoing, finished int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, acct := range repo.db.accounts {
		if usr, ok := acct[userID]; ok {
			usr.StartedCourses = started
			usr.OngoingCourses = ongoing
			usr.FinishedCourses = finished
			usr.UpdatedAt = now()
			return nil
		}
	}
	return nil
}
