package echoapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/courcompanion/backend/core/account"
	"github.com/courcompanion/backend/core/catalog"
	"github.com/courcompanion/backend/core/enroll"
	"github.com/courcompanion/backend/core/order"
	emailsvc "github.com/courcompanion/backend/services/email"
	paymentsvc "github.com/courcompanion/backend/services/payment"
)

// placeOrder walks the client flow: intent, then a pending order against it.
func placeOrder(t *testing.T, userToken string, courseID int) order.Order {
	t.Helper()

	req, rec := newAuthRequest(http.MethodPost, "/api/v1/orders/intent", userToken,
		marchallObj(t, order.NewIntent{PaidCourseID: courseID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("placeOrder(): intent code = %v; body %s", rec.Code, rec.Body.String())
	}
	var intent order.Intent
	if err := json.Unmarshal(rec.Body.Bytes(), &intent); err != nil {
		t.Fatalf("placeOrder(): %v", err)
	}

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/orders", userToken,
		marchallObj(t, order.NewOrder{PaidCourseID: courseID, PaymentIntentID: intent.ID}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("placeOrder(): order code = %v; body %s", rec.Code, rec.Body.String())
	}
	var ord order.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &ord); err != nil {
		t.Fatalf("placeOrder(): %v", err)
	}
	return ord
}

func webhook(t *testing.T, eventType, intentID string) *http.Response {
	t.Helper()
	body := []byte(fmt.Sprintf(`{"type":%q,"intent_id":%q}`, eventType, intentID))
	req, rec := newRequest(http.MethodPost, "/api/v1/orders/webhook", body)
	app.ServeHTTP(rec, req)
	return rec.Result()
}

func Test_orderApi_paymentFlow(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	cat := createCategory(t, getToken(t, admin), "Go")
	course := createPaidCourse(t, getToken(t, coach), catalog.NewPaidCourse{
		Name:        "Advanced Go",
		Description: "a paid course",
		Thumbnail:   "https://cdn.test/adv.png",
		Price:       49.99,
		CategoryID:  cat.ID,
		CoachID:     coach.ID,
	})

	studentToken := getToken(t, student)
	ord := placeOrder(t, studentToken, course.ID)
	if ord.Status != order.StatusPending || ord.Total != course.Price {
		t.Fatalf("failed! order = %+v", ord)
	}

	// settle via webhook
	if resp := webhook(t, paymentsvc.EventPaymentSucceeded, ord.PaymentIntentID); resp.StatusCode != http.StatusOK {
		t.Fatalf("failed! webhook code = %v", resp.StatusCode)
	}

	// the order flipped
	req, rec := newAuthRequest(http.MethodGet, "/api/v1/orders/me", studentToken)
	app.ServeHTTP(rec, req)
	var orders []order.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(orders) != 1 || orders[0].Status != order.StatusSuccess {
		t.Fatalf("failed! orders = %+v", orders)
	}

	// the enrollment was created by reconciliation
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/enrollments/me", studentToken)
	app.ServeHTTP(rec, req)
	var enrs []enroll.Enrollment
	if err := json.Unmarshal(rec.Body.Bytes(), &enrs); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(enrs) != 1 || enrs[0].PaidCourseID == nil || *enrs[0].PaidCourseID != course.ID {
		t.Fatalf("failed! enrollments = %+v", enrs)
	}

	// the student count was bumped
	req, rec = newRequest(http.MethodGet, "/api/v1/paid-courses/"+itoa(course.ID))
	app.ServeHTTP(rec, req)
	var refreshed catalog.PaidCourse
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if refreshed.StudentQuantity != 1 {
		t.Errorf("failed! StudentQuantity = %d; want 1", refreshed.StudentQuantity)
	}

	// a confirmation email went out
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	if got := emailsvc.SentMessages[0].Subject; got != "Your enrollment is confirmed" {
		t.Errorf("failed! Subject = %q", got)
	}

	// replaying the event is a no-op: the order is no longer pending
	if resp := webhook(t, paymentsvc.EventPaymentSucceeded, ord.PaymentIntentID); resp.StatusCode != http.StatusNotFound {
		t.Errorf("failed! replay code = %v; want 404", resp.StatusCode)
	}
}

func Test_orderApi_paymentFailed(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	cat := createCategory(t, getToken(t, admin), "Go")
	course := createPaidCourse(t, getToken(t, coach), catalog.NewPaidCourse{
		Name:        "Advanced Go",
		Description: "a paid course",
		Thumbnail:   "https://cdn.test/adv.png",
		Price:       49.99,
		CategoryID:  cat.ID,
		CoachID:     coach.ID,
	})

	studentToken := getToken(t, student)
	ord := placeOrder(t, studentToken, course.ID)

	if resp := webhook(t, paymentsvc.EventPaymentFailed, ord.PaymentIntentID); resp.StatusCode != http.StatusOK {
		t.Fatalf("failed! webhook code = %v", resp.StatusCode)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/orders/me", studentToken)
	app.ServeHTTP(rec, req)
	var orders []order.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(orders) != 1 || orders[0].Status != order.StatusFailed {
		t.Fatalf("failed! orders = %+v", orders)
	}

	// no enrollment, no email
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/enrollments/me", studentToken)
	app.ServeHTTP(rec, req)
	var enrs []enroll.Enrollment
	if err := json.Unmarshal(rec.Body.Bytes(), &enrs); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(enrs) != 0 {
		t.Errorf("failed! enrollments = %+v", enrs)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
	}
}

func Test_orderApi_webhookMailFailureStillSettles(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	cat := createCategory(t, getToken(t, admin), "Go")
	course := createPaidCourse(t, getToken(t, coach), catalog.NewPaidCourse{
		Name:        "Advanced Go",
		Description: "a paid course",
		Thumbnail:   "https://cdn.test/adv.png",
		Price:       49.99,
		CategoryID:  cat.ID,
		CoachID:     coach.ID,
	})

	studentToken := getToken(t, student)
	ord := placeOrder(t, studentToken, course.ID)

	// the order settles even when the confirmation email bounces
	mailSvc.FailNext = true
	if resp := webhook(t, paymentsvc.EventPaymentSucceeded, ord.PaymentIntentID); resp.StatusCode != http.StatusOK {
		t.Fatalf("failed! webhook code = %v", resp.StatusCode)
	}

	req, rec := newAuthRequest(http.MethodGet, "/api/v1/orders/me", studentToken)
	app.ServeHTTP(rec, req)
	var orders []order.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(orders) != 1 || orders[0].Status != order.StatusSuccess {
		t.Fatalf("failed! orders = %+v", orders)
	}
}

func Test_orderApi_closedCourse(t *testing.T) {
	db.Reset()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	adminToken := getToken(t, admin)
	cat := createCategory(t, adminToken, "Go")
	course := createPaidCourse(t, getToken(t, coach), catalog.NewPaidCourse{
		Name:        "Advanced Go",
		Description: "a paid course",
		Thumbnail:   "https://cdn.test/adv.png",
		Price:       49.99,
		CategoryID:  cat.ID,
		CoachID:     coach.ID,
	})

	status := catalog.StatusClose
	req, rec := newAuthRequest(http.MethodPut, "/api/v1/paid-courses/"+itoa(course.ID), adminToken,
		marchallObj(t, catalog.UpdatePaidCourse{Status: &status}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodPost, "/api/v1/orders/intent", getToken(t, student),
		marchallObj(t, order.NewIntent{PaidCourseID: course.ID}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "course is closed for registration"}),
	}, rec)
}

func Test_orderApi_revenue(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	cat := createCategory(t, getToken(t, admin), "Go")
	course := createPaidCourse(t, getToken(t, coach), catalog.NewPaidCourse{
		Name:        "Advanced Go",
		Description: "a paid course",
		Thumbnail:   "https://cdn.test/adv.png",
		Price:       50,
		CategoryID:  cat.ID,
		CoachID:     coach.ID,
	})

	studentToken := getToken(t, student)
	ord := placeOrder(t, studentToken, course.ID)
	webhook(t, paymentsvc.EventPaymentSucceeded, ord.PaymentIntentID)

	// only settled orders count
	req, rec := newAuthRequest(http.MethodGet, "/api/v1/revenue", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var months []order.MonthlyRevenue
	if err := json.Unmarshal(rec.Body.Bytes(), &months); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(months) != 1 || months[0].Revenue != 50 || months[0].Orders != 1 {
		t.Errorf("failed! months = %+v", months)
	}

	// a coach sees their own revenue; students see neither
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/revenue/coach", getToken(t, coach))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v", rec.Code)
	}
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/revenue", studentToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
}
