package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/courcompanion/backend/core/account"
	emailsvc "github.com/courcompanion/backend/services/email"
)

func Test_accountApi_register(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	student := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")

	valid := func(email string) []byte {
		return marchallObj(t, account.NewAccount{
			FirstName:       "New",
			LastName:        "Comer",
			Email:           email,
			Password:        "LolC@t123",
			PasswordConfirm: "LolC@t123",
		})
	}

	tests := []httpTest{
		{name: "user self-register", path: "/api/v1/users/register", body: valid("new@test.cd"), wantCode: http.StatusCreated},
		{name: "coach self-register", path: "/api/v1/coaches/register", body: valid("new@test.cd"), wantCode: http.StatusCreated},
		{
			name: "duplicate email per role", path: "/api/v1/users/register", body: valid("hero@test.cd"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "an account with this email already exists"}),
		},
		// the same address is free under another role
		{name: "same email other role", path: "/api/v1/coaches/register", body: valid("hero@test.cd"), wantCode: http.StatusCreated},
		{
			name: "admin register needs auth", path: "/api/v1/admins/register", body: valid("new2@test.cd"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin register needs admin", path: "/api/v1/admins/register", body: valid("new2@test.cd"),
			token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "admin registers admin", path: "/api/v1/admins/register", body: valid("new2@test.cd"),
			token: getToken(t, admin), wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_accountApi_query(t *testing.T) {
	db.Reset()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	usr1 := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	usr2 := createAccount(t, account.RoleUser, "King", "North", "king@test.cd", "LolC@t123")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "coach@test.cd", "LolC@t123")

	tests := []httpTest{
		{name: "auth required", path: "/api/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/api/v1/users", token: getToken(t, usr1),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "users only", path: "/api/v1/users", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, usr1, usr2),
		},
		{
			name: "coaches only", path: "/api/v1/coaches", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, coach),
		},
		{
			name: "ordering param", path: "/api/v1/users?ordering=-first_name", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, usr2, usr1),
		},
		// unknown columns fall back to the default ordering
		{
			name: "unknown ordering column", path: "/api/v1/users?ordering=secret", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, usr1, usr2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_accountApi_retrieveAndUpdate(t *testing.T) {
	db.Reset()

	admin := createAccount(t, account.RoleAdmin, "Root", "Admin", "admin@test.cd", "Adm1nP@ss")
	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	other := createAccount(t, account.RoleUser, "King", "North", "king@test.cd", "LolC@t123")

	usrToken := getToken(t, usr)

	// GET /me
	req, rec := newAuthRequest(http.MethodGet, "/api/v1/users/me", usrToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}, rec)

	// a user may not read another user's record
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/users/"+itoa(other.ID), usrToken)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)

	// an admin may
	req, rec = newAuthRequest(http.MethodGet, "/api/v1/users/"+itoa(other.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, other)}, rec)

	// self-update
	req, rec = newAuthRequest(http.MethodPut, "/api/v1/users/"+itoa(usr.ID), usrToken,
		marchallObj(t, account.UpdateAccount{FirstName: "Renamed"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var updated account.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if updated.FirstName != "Renamed" || updated.LastName != usr.LastName || updated.Email != usr.Email {
		t.Errorf("failed! updated = %+v", updated)
	}

	// delete is admin-only
	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/users/"+itoa(usr.ID), usrToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("failed! code = %v; want 403", rec.Code)
	}
	req, rec = newAuthRequest(http.MethodDelete, "/api/v1/users/"+itoa(usr.ID), getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("failed! code = %v; want 204", rec.Code)
	}
}

func Test_accountApi_changePassword(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	usrToken := getToken(t, usr)
	path := "/api/v1/users/" + itoa(usr.ID) + "/password"

	// wrong current password
	req, rec := newAuthRequest(http.MethodPost, path, usrToken, marchallObj(t, account.ChangePassword{
		Password: "wr0ng", NewPassword: "N3wP@ssword", PasswordConfirm: "N3wP@ssword",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; want 400", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodPost, path, usrToken, marchallObj(t, account.ChangePassword{
		Password: "LolC@t123", NewPassword: "N3wP@ssword", PasswordConfirm: "N3wP@ssword",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	login(t, "user", usr.Email, "N3wP@ssword")
}
