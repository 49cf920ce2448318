package echoapi

import (
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

var (
	// appJWTConfig is the default JWT auth middleware config; the signing key
	// is injected from the Config at server construction.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "accountToken",
		Claims:        new(Claims),
	}
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
// The role claim routes subsequent identity lookups to the right store.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c Claims) AccountID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

func GetAccountClaims(acct account.Account, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(acct.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: acct.Email,
		Role:  acct.Role.String(),
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextAccount resolves the authenticated account from its claims,
// caching it on the request context.
func getContextAccount(ctx echo.Context, svc account.ServiceInterface) (account.Account, error) {
	if acct, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acct, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return account.Account{}, err
	}
	role, err := account.ParseRole(claims.Role)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "parsing role claim")
	}
	acct, err := svc.GetByID(ctx.Request().Context(), role, claims.AccountID())
	if err != nil {
		return account.Account{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextAccountKey, acct)
	return acct, nil
}
