package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/courcompanion/backend/apps/api/echo"
	"github.com/courcompanion/backend/core/account"
	emailsvc "github.com/courcompanion/backend/services/email"
)

func Test_authApi_login(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")

	otpSent := marchallObj(t, LoginResponse{Message: "OTP sent to your email"})

	tests := []httpTest{
		{
			name: "unknown email", wantCode: http.StatusNotFound,
			body:     marchallObj(t, LoginRequest{Role: "user", Email: "ghost@test.cd", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account not found"}),
		},
		{
			name: "unknown role", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Role: "superuser", Email: "hero@test.cd", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid role"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, LoginRequest{Role: "user", Email: "hero@test.cd", Password: "nope nope"}),
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			// same email, different store: no coach record exists
			name: "role isolation", wantCode: http.StatusNotFound,
			body:     marchallObj(t, LoginRequest{Role: "coach", Email: "hero@test.cd", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account not found"}),
		},
		{
			name: "OTP sent", wantCode: http.StatusOK,
			body:     marchallObj(t, LoginRequest{Role: "user", Email: "hero@test.cd", Password: "LolC@t123"}),
			wantData: otpSent, extra: true, /* email expected */
		},
		{
			name: "email case-insensitive", wantCode: http.StatusOK,
			body:     marchallObj(t, LoginRequest{Role: "user", Email: "HERO@Test.CD", Password: "LolC@t123"}),
			wantData: otpSent, extra: true,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/v1/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			wantEmail, _ := tt.extra.(bool)
			if wantEmail {
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
				}
				msg := emailsvc.SentMessages[0]
				if msg.To[0].Address != "hero@test.cd" {
					t.Errorf("failed! To = %v; want hero@test.cd", msg.To[0])
				}
				if msg.Subject != "Your OTP Code" {
					t.Errorf("failed! Subject = %q", msg.Subject)
				}
				lastOTP(t) // a code must be present in the body
			} else if len(emailsvc.SentMessages) > 0 {
				t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
			}
		})
	}
}

func Test_authApi_login_deliveryFailure(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")

	mailSvc.FailNext = true
	body := marchallObj(t, LoginRequest{Role: "user", Email: "hero@test.cd", Password: "LolC@t123"})
	req, rec := newRequest(http.MethodPost, "/api/v1/auth/login", body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadGateway)
	}
	if len(emailsvc.SentMessages) > 0 {
		t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
	}

	// the transport recovered: the retried login must succeed
	req, rec = newRequest(http.MethodPost, "/api/v1/auth/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
}

func login(t *testing.T, role, email, pwd string) string {
	t.Helper()
	body := marchallObj(t, LoginRequest{Role: role, Email: email, Password: pwd})
	req, rec := newRequest(http.MethodPost, "/api/v1/auth/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login(): code = %v; body %s", rec.Code, rec.Body.String())
	}
	return lastOTP(t)
}

func Test_authApi_verifyOTP(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	code := login(t, "user", usr.Email, "LolC@t123")

	badCode := marchallObj(t, httpErr{Error: "invalid OTP code"})
	path := "/api/v1/auth/verify-otp"

	// a wrong code is rejected and does not consume the stored one
	req, rec := newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: "000000x"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: badCode}, rec)

	// the coach store never saw this code
	req, rec = newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "coach", Email: usr.Email, OTP: code}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: badCode}, rec)

	// the right code still works after the failed attempts
	req, rec = newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: code}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if resp.Token == "" {
		t.Error("failed! empty token")
	}
	if resp.Account.ID != usr.ID || resp.Account.Email != usr.Email {
		t.Errorf("failed! account = %+v; want %+v", resp.Account, usr)
	}

	// single use: replaying the consumed code fails
	req, rec = newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: code}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: badCode}, rec)
}

func Test_authApi_verifyOTP_reissueInvalidatesPrior(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")

	first := login(t, "user", usr.Email, "LolC@t123")
	second := login(t, "user", usr.Email, "LolC@t123")
	if first == second {
		t.Skip("codes collided; nothing to assert")
	}

	path := "/api/v1/auth/verify-otp"
	req, rec := newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: first}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! stale code accepted; code = %v", rec.Code)
	}

	req, rec = newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: second}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func Test_authApi_verifyOTP_expiry(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")
	code := login(t, "user", usr.Email, "LolC@t123")

	otpStore.Now = func() time.Time { return time.Now().Add(conf.OTP.TTL + time.Minute) }
	defer func() { otpStore.Now = time.Now }()

	req, rec := newRequest(http.MethodPost, "/api/v1/auth/verify-otp",
		marchallObj(t, VerifyOTPRequest{Role: "user", Email: usr.Email, OTP: code}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "invalid OTP code"}),
	}, rec)
}

func Test_authApi_passwordReset(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "hero@test.cd", "LolC@t123")

	// unknown identities are reported, not silently accepted
	req, rec := newRequest(http.MethodPost, "/api/v1/auth/forgot-password",
		marchallObj(t, ForgotPasswordRequest{Role: "coach", Email: usr.Email}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "account not found"}),
	}, rec)

	req, rec = newRequest(http.MethodPost, "/api/v1/auth/forgot-password",
		marchallObj(t, ForgotPasswordRequest{Role: "user", Email: usr.Email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	code := lastOTP(t)

	req, rec = newRequest(http.MethodPost, "/api/v1/auth/reset-password",
		marchallObj(t, ResetPasswordRequest{Role: "user", Email: usr.Email, OTP: "badbad", NewPassword: "N3wP@ssword"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; want 400", rec.Code)
	}

	req, rec = newRequest(http.MethodPost, "/api/v1/auth/reset-password",
		marchallObj(t, ResetPasswordRequest{Role: "user", Email: usr.Email, OTP: code, NewPassword: "N3wP@ssword"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, LoginResponse{Message: "password has been reset"}),
	}, rec)

	// old password no longer works; the new one does
	body := marchallObj(t, LoginRequest{Role: "user", Email: usr.Email, Password: "LolC@t123"})
	req, rec = newRequest(http.MethodPost, "/api/v1/auth/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! old password still accepted; code = %v", rec.Code)
	}
	login(t, "user", usr.Email, "N3wP@ssword")
}

func Test_authApi_logout(t *testing.T) {
	req, rec := newRequest(http.MethodPost, "/api/v1/auth/logout")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, LoginResponse{Message: "logout successful"}),
	}, rec)
}

func Test_authApi_sameEmailAcrossRoles(t *testing.T) {
	db.Reset()
	emailsvc.ClearSentMessages()

	usr := createAccount(t, account.RoleUser, "Hero", "West", "shared@test.cd", "UserP@ss1")
	coach := createAccount(t, account.RoleCoach, "Couch", "East", "shared@test.cd", "CoachP@ss1")

	userCode := login(t, "user", "shared@test.cd", "UserP@ss1")
	coachCode := login(t, "coach", "shared@test.cd", "CoachP@ss1")

	path := "/api/v1/auth/verify-otp"

	// each identity keeps its own live code
	req, rec := newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "user", Email: "shared@test.cd", OTP: userCode}))
	app.ServeHTTP(rec, req)
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if resp.Account.ID != usr.ID || resp.Account.Role != account.RoleUser {
		t.Errorf("failed! account = %+v", resp.Account)
	}

	req, rec = newRequest(http.MethodPost, path, marchallObj(t, VerifyOTPRequest{Role: "coach", Email: "shared@test.cd", OTP: coachCode}))
	app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	if resp.Account.ID != coach.ID || resp.Account.Role != account.RoleCoach {
		t.Errorf("failed! account = %+v", resp.Account)
	}
}
