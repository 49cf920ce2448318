package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

// accountRow mirrors one row of an identity table. The three role tables
// share the same schema; the repository is parameterized by table name.
type accountRow struct {
	ID              int       `db:"id"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	Email           string    `db:"email"`
	PasswordHash    []byte    `db:"password_hash"`
	DOB             string    `db:"dob"`
	Gender          string    `db:"gender"`
	Avatar          string    `db:"avatar"`
	Description     string    `db:"description"`
	StartedCourses  int       `db:"started_courses"`
	OngoingCourses  int       `db:"ongoing_courses"`
	FinishedCourses int       `db:"finished_courses"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (row accountRow) toCore(role account.Role) account.Account {
	return account.Account{
		ID:              row.ID,
		Role:            role,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		PasswordHash:    row.PasswordHash,
		DOB:             row.DOB,
		Gender:          row.Gender,
		Avatar:          row.Avatar,
		Description:     row.Description,
		StartedCourses:  row.StartedCourses,
		OngoingCourses:  row.OngoingCourses,
		FinishedCourses: row.FinishedCourses,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

type accountRepository struct {
	db    *sqlx.DB
	table string
	role  account.Role
}

var accountTables = map[account.Role]string{
	account.RoleAdmin: "admins",
	account.RoleUser:  "users",
	account.RoleCoach: "coaches",
}

func NewAccountRepository(db *sqlx.DB, role account.Role) account.Repository {
	return &accountRepository{db: db, table: accountTables[role], role: role}
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (first_name, last_name, email, password_hash, dob, gender, avatar, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`, repo.table)

	var row accountRow
	err := repo.db.GetContext(ctx, &row, query,
		acct.FirstName, acct.LastName, acct.Email, acct.PasswordHash,
		acct.DOB, acct.Gender, acct.Avatar, acct.Description,
	)
	if err != nil {
		return account.Account{}, wrapAccountErr(err)
	}
	return row.toCore(repo.role), nil
}

// accountOrderColumns whitelists the columns an API "ordering" parameter may
// sort by; anything else is dropped.
var accountOrderColumns = map[string]bool{
	"id": true, "first_name": true, "last_name": true,
	"email": true, "created_at": true, "updated_at": true,
}

func (repo *accountRepository) QueryAllAccounts(ctx context.Context, ordering []core.DBOrdering) ([]account.Account, error) {
	orderBy := "id"
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if accountOrderColumns[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	if len(terms) > 0 {
		orderBy = strings.Join(terms, ", ")
	}

	var rows []accountRow
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, repo.table, orderBy)
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	accts := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		accts = append(accts, row.toCore(repo.role))
	}
	return accts, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	var row accountRow
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, repo.table)
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return account.Account{}, wrapAccountErr(err)
	}
	return row.toCore(repo.role), nil
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	var row accountRow
	query := fmt.Sprintf(`SELECT * FROM %s WHERE email = $1`, repo.table)
	if err := repo.db.GetContext(ctx, &row, query, email); err != nil {
		return account.Account{}, wrapAccountErr(err)
	}
	return row.toCore(repo.role), nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET first_name = $2, last_name = $3, email = $4, dob = $5, gender = $6,
		    avatar = $7, description = $8, updated_at = now()
		WHERE id = $1
		RETURNING *`, repo.table)

	var row accountRow
	err := repo.db.GetContext(ctx, &row, query,
		acct.ID, acct.FirstName, acct.LastName, acct.Email,
		acct.DOB, acct.Gender, acct.Avatar, acct.Description,
	)
	if err != nil {
		return account.Account{}, wrapAccountErr(err)
	}
	return row.toCore(repo.role), nil
}

func (repo *accountRepository) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $2, updated_at = now() WHERE email = $1`, repo.table)
	res, err := repo.db.ExecContext(ctx, query, email, hash)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, repo.table)
	if _, err := repo.db.ExecContext(ctx, query, id); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return nil
}

func wrapAccountErr(err error) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return account.ErrEmailExists
	}
	return err
}
