package account

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/courcompanion/backend/core"
)

// Role discriminates the three identity stores. Emails are unique per role
// table, not globally: the same address may exist once under each role.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

var AllRoles = []Role{RoleAdmin, RoleUser, RoleCoach}

// ParseRole validates a role discriminator supplied by a caller.
// Unknown values fail closed with ErrInvalidRole; there is no default store.
func ParseRole(s string) (Role, error) {
	switch Role(core.CleanString(s, true /* lower */)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	case RoleCoach:
		return RoleCoach, nil
	}
	return "", ErrInvalidRole
}

func (r Role) String() string { return string(r) }

type Account struct {
	ID           int       `json:"id"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	DOB          string    `json:"dob,omitempty"` // YYYY-MM-DD
	Gender       string    `json:"gender,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC

	// coach only
	Description string `json:"description,omitempty"`

	// user only
	StartedCourses  int `json:"started_courses,omitempty"`
	OngoingCourses  int `json:"ongoing_courses,omitempty"`
	FinishedCourses int `json:"finished_courses,omitempty"`
}

func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// CheckPassword compares pwd against the stored hash in constant time.
func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewAccount contains information needed to create a new Account.
// The role comes from the enclosing route or command, never from the payload.
type NewAccount struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	DOB             string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender          string `json:"gender"`
	Description     string `json:"description"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

// UpdateAccount defines what information may be provided to modify an existing Account.
type UpdateAccount struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	DOB         string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

func (ua *UpdateAccount) Validate(orig Account, validate *validator.Validate) error {
	if name := core.CleanString(ua.FirstName); name != "" {
		ua.FirstName = name
	} else {
		ua.FirstName = orig.FirstName
	}
	if name := core.CleanString(ua.LastName); name != "" {
		ua.LastName = name
	} else {
		ua.LastName = orig.LastName
	}
	if email := core.CleanString(ua.Email, true /* lower */); email != "" {
		ua.Email = email
	} else {
		ua.Email = orig.Email
	}
	return validate.Struct(ua)
}

// ChangePassword requires knowledge of the current password; the reset flow
// in core/auth is the only other path to a password update.
type ChangePassword struct {
	Password        string `json:"password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=NewPassword"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error { return validate.Struct(cp) }

// AvatarUpload is a base64-encoded image payload.
type AvatarUpload struct {
	FileName    string `json:"file_name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	File        string `json:"file" validate:"required,base64"`
}

func (au *AvatarUpload) Validate(validate *validator.Validate) error {
	au.FileName = core.CleanString(au.FileName)
	return validate.Struct(au)
}
