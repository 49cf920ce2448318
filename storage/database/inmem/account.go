package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/account"
)

type accountRepository struct {
	db   *DB
	role account.Role
}

func NewAccountRepository(db *DB, role account.Role) account.Repository {
	return &accountRepository{db: db, role: role}
}

func (repo *accountRepository) table() map[int]*account.Account {
	return repo.db.accounts[repo.role]
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.table() {
		if existing.Email == acct.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}
	acct.ID = repo.db.nextID()
	acct.Role = repo.role
	acct.CreatedAt = now()
	acct.UpdatedAt = acct.CreatedAt
	repo.table()[acct.ID] = &acct
	return acct, nil
}

func (repo *accountRepository) QueryAllAccounts(ctx context.Context, ordering []core.DBOrdering) ([]account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	accts := make([]account.Account, 0, len(repo.table()))
	for _, acct := range repo.table() {
		accts = append(accts, *acct)
	}
	sort.Slice(accts, func(i, j int) bool { return accts[i].ID < accts[j].ID })
	for i := len(ordering) - 1; i >= 0; i-- {
		sortAccounts(accts, ordering[i])
	}
	return accts, nil
}

// sortAccounts applies one ordering term with a stable sort; unknown fields
// are ignored, matching the sqlx repository's column whitelist.
func sortAccounts(accts []account.Account, ord core.DBOrdering) {
	var less func(a, b account.Account) bool
	switch ord.Field {
	case "id":
		less = func(a, b account.Account) bool { return a.ID < b.ID }
	case "first_name":
		less = func(a, b account.Account) bool { return a.FirstName < b.FirstName }
	case "last_name":
		less = func(a, b account.Account) bool { return a.LastName < b.LastName }
	case "email":
		less = func(a, b account.Account) bool { return a.Email < b.Email }
	case "created_at":
		less = func(a, b account.Account) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated_at":
		less = func(a, b account.Account) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return
	}
	sort.SliceStable(accts, func(i, j int) bool {
		if ord.Ascending {
			return less(accts[i], accts[j])
		}
		return less(accts[j], accts[i])
	})
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acct, ok := repo.table()[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.table() {
		if acct.Email == email {
			return *acct, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.table()[acct.ID]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	for id, existing := range repo.table() {
		if id != acct.ID && existing.Email == acct.Email {
			return account.Account{}, account.ErrEmailExists
		}
	}
	orig.FirstName = acct.FirstName
	orig.LastName = acct.LastName
	orig.Email = acct.Email
	orig.DOB = acct.DOB
	orig.Gender = acct.Gender
	orig.Avatar = acct.Avatar
	orig.Description = acct.Description
	orig.UpdatedAt = now()
	return *orig, nil
}

func (repo *accountRepository) UpdatePassword(ctx context.Context, email string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, acct := range repo.table() {
		if acct.Email == email {
			acct.PasswordHash = hash
			acct.UpdatedAt = now()
			return nil
		}
	}
	return account.ErrNotFound
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.table(), id)
	return nil
}
