package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/enroll"
)

func Test_enrollApi_enrollFree(t *testing.T) {
	db.Reset()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	cat := createCategory(t, adminToken, "Go")
	course := createFreeCourse(t, adminToken, cat.ID, "Intro to Go")

	// unknown course
	missing := 999
	req, rec := newAuthRequest(http.MethodPost, "/api/v1/enrollments", studentToken,
		marchallObj(t, enroll.NewEnrollment{FreeCourseID: &missing}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want 404", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/enrollments", studentToken,
		marchallObj(t, enroll.NewEnrollment{FreeCourseID: &course.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var enr enroll.Enrollment
	if err := json.Unmarshal(rec.Body.Bytes(), &enr); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if enr.Status != enroll.StatusStarted || enr.UserID != student.ID {
		t.Errorf("failed! enrollment = %+v", enr)
	}

	// enrolling twice in the same course is rejected
	req, rec = newAuthRequest(http.MethodPost, "/api/v1/enrollments", studentToken,
		marchallObj(t, enroll.NewEnrollment{FreeCourseID: &course.ID}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "already enrolled in this course"}),
	}, rec)

	// the started counter lands on the account
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/users/me", studentToken)
	app.ServeHTTP(rec, req)
	var me account.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if me.StartedCourses != 1 {
		t.Errorf("failed! StartedCourses = %d; want 1", me.StartedCourses)
	}
}

func Test_enrollApi_completeLesson(t *testing.T) {
	db.Reset()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	cat := createCategory(t, adminToken, "Go")
	course := createFreeCourse(t, adminToken, cat.ID, "Intro to Go")
	l1 := createFreeLesson(t, adminToken, course.ID, "Hello")
	l2 := createFreeLesson(t, adminToken, course.ID, "World")

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/enrollments", studentToken,
		marchallObj(t, enroll.NewEnrollment{FreeCourseID: &course.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	status := func() enroll.Status {
		req, rec := newAuthRequest(http.MethodGet, "/api/v1/enrollments/me", studentToken)
		app.ServeHTTP(rec, req)
		var enrs []enroll.Enrollment
		if err := json.Unmarshal(rec.Body.Bytes(), &enrs); err != nil || len(enrs) != 1 {
			t.Fatalf("status(): body %s", rec.Body.String())
		}
		return enrs[0].Status
	}

	// completing without an enrollment fails
	rivalToken := getToken(t, createAccount(t, account.RoleUser, "King", "North", "king@test.cd", "LolC@t123"))
	req, rec = newAuthRequest(http.MethodPost, "/api/v1/progress", rivalToken,
		marchallObj(t, enroll.NewProgress{FreeLessonID: &l1.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("failed! code = %v; want 404", rec.Code)
	}

	// first lesson: started → ongoing
	req, rec = newAuthRequest(http.MethodPost, "/api/v1/progress", studentToken,
		marchallObj(t, enroll.NewProgress{FreeLessonID: &l1.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if got := status(); got != enroll.StatusOngoing {
		t.Errorf("failed! status = %q; want %q", got, enroll.StatusOngoing)
	}

	// last lesson: ongoing → finished
	req, rec = newAuthRequest(http.MethodPost, "/api/v1/progress", studentToken,
		marchallObj(t, enroll.NewProgress{FreeLessonID: &l2.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if got := status(); got != enroll.StatusFinished {
		t.Errorf("failed! status = %q; want %q", got, enroll.StatusFinished)
	}

	// counters follow the transitions
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/users/me", studentToken)
	app.ServeHTTP(rec, req)
	var me account.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if me.StartedCourses != 0 || me.OngoingCourses != 0 || me.FinishedCourses != 1 {
		t.Errorf("failed! counters = %d/%d/%d; want 0/0/1", me.StartedCourses, me.OngoingCourses, me.FinishedCourses)
	}

	// progress history
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/progress/me", studentToken)
	app.ServeHTTP(rec, req)
	var progress []enroll.LessonProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(progress) != 2 {
		t.Errorf("failed! len(progress) = %d; want 2", len(progress))
	}
}
