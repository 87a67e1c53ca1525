// Package memory implements the storage ports on an in-process go-memdb
// database. It backs the server when no database is configured and mirrors
// the relational constraints of the Postgres schema inside write
// transactions.
package memory

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

const (
	tableCompanies = "companies"
	tableStatuses  = "job_application_statuses"
	tableApps      = "job_applications"
	tableUsers     = "users"
	tableTokens    = "refresh_tokens"
)

// uuidIndex indexes the uuid returned for each stored object.
type uuidIndex func(obj any) uuid.UUID

func (f uuidIndex) FromObject(obj any) (bool, []byte, error) {
	id := f(obj)
	if id == uuid.Nil {
		return false, nil, nil
	}
	return true, id[:], nil
}

func (f uuidIndex) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}
	id, ok := args[0].(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("argument must be a uuid.UUID: %#v", args[0])
	}
	return id[:], nil
}

func idIndex(of uuidIndex) *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: "id", Unique: true, Indexer: of}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{Tables: map[string]*memdb.TableSchema{
		tableCompanies: {
			Name: tableCompanies,
			Indexes: map[string]*memdb.IndexSchema{
				"id":   idIndex(func(o any) uuid.UUID { return o.(*domain.Company).ID }),
				"name": {Name: "name", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
			},
		},
		tableStatuses: {
			Name: tableStatuses,
			Indexes: map[string]*memdb.IndexSchema{
				"id":   idIndex(func(o any) uuid.UUID { return o.(*domain.JobApplicationStatus).ID }),
				"name": {Name: "name", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
			},
		},
		tableApps: {
			Name: tableApps,
			Indexes: map[string]*memdb.IndexSchema{
				"id": idIndex(func(o any) uuid.UUID { return o.(*domain.JobApplication).ID }),
				"company_id": {Name: "company_id", AllowMissing: true, Indexer: uuidIndex(func(o any) uuid.UUID {
					return o.(*domain.JobApplication).CompanyID
				})},
				"status_id": {Name: "status_id", AllowMissing: true, Indexer: uuidIndex(func(o any) uuid.UUID {
					return o.(*domain.JobApplication).StatusID
				})},
			},
		},
		tableUsers: {
			Name: tableUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id":        idIndex(func(o any) uuid.UUID { return o.(*domain.User).ID }),
				"email":     {Name: "email", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true}},
				"user_name": {Name: "user_name", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "UserName", Lowercase: true}},
			},
		},
		tableTokens: {
			Name: tableTokens,
			Indexes: map[string]*memdb.IndexSchema{
				"id":    idIndex(func(o any) uuid.UUID { return o.(*domain.RefreshToken).ID }),
				"token": {Name: "token", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Token"}},
			},
		},
	}}
}

// Store is an in-memory database. Writes are serialized by go-memdb, so
// the cross-table checks made inside one write transaction are atomic.
type Store struct {
	db *memdb.MemDB
}

// NewStore returns an empty store.
func NewStore() *Store {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		// The schema is static; failing here is a programming error.
		panic(fmt.Sprintf("memory: invalid schema: %v", err))
	}
	return &Store{db: db}
}

// Companies returns the company repository view.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{s: s} }

// JobApplications returns the job application repository view.
func (s *Store) JobApplications() *JobApplicationRepo { return &JobApplicationRepo{s: s} }

// Statuses returns the status repository view.
func (s *Store) Statuses() *StatusRepo { return &StatusRepo{s: s} }

// Users returns the user repository view.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RefreshTokens returns the refresh token repository view.
func (s *Store) RefreshTokens() *RefreshTokenRepo { return &RefreshTokenRepo{s: s} }

// write runs fn in a write transaction and commits when it returns nil.
func (s *Store) write(op string, fn func(txn *memdb.Txn) error) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return wrap(op, err)
	}
	txn.Commit()
	return nil
}

func (s *Store) read() *memdb.Txn { return s.db.Txn(false) }

func wrap(op string, err error) error { return fmt.Errorf("op=%s: %w", op, err) }

func notFound(op string) error { return wrap(op, domain.ErrNotFound) }

// first returns the single row matching index/args, or nil.
func first[T any](txn *memdb.Txn, table, index string, args ...any) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*T), nil
}

func all[T any](txn *memdb.Txn, table, index string, args ...any) ([]T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, *raw.(*T))
	}
	return out, nil
}

func exists(txn *memdb.Txn, table string, id uuid.UUID) (bool, error) {
	raw, err := txn.First(table, "id", id)
	return raw != nil, err
}

// CompanyRepo implements domain.CompanyRepository.
type CompanyRepo struct{ s *Store }

func companyNameInUse(txn *memdb.Txn, name string, exceptID uuid.UUID) (bool, error) {
	c, err := first[domain.Company](txn, tableCompanies, "name", name)
	if err != nil || c == nil {
		return false, err
	}
	return c.ID != exceptID, nil
}

func (r *CompanyRepo) Add(_ domain.Context, c *domain.Company) error {
	return r.s.write("company.add", func(txn *memdb.Txn) error {
		dupID, err := exists(txn, tableCompanies, c.ID)
		if err != nil {
			return err
		}
		dupName, err := companyNameInUse(txn, c.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if dupID || dupName {
			return domain.NewDomainError("A company with this name already exists.")
		}
		stored := *c
		return txn.Insert(tableCompanies, &stored)
	})
}

func (r *CompanyRepo) Update(_ domain.Context, c *domain.Company) error {
	return r.s.write("company.update", func(txn *memdb.Txn) error {
		ok, err := exists(txn, tableCompanies, c.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		taken, err := companyNameInUse(txn, c.Name, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewDomainError("A company with this name already exists.")
		}
		stored := *c
		return txn.Insert(tableCompanies, &stored)
	})
}

func (r *CompanyRepo) Delete(_ domain.Context, id uuid.UUID) error {
	return r.s.write("company.delete", func(txn *memdb.Txn) error {
		c, err := first[domain.Company](txn, tableCompanies, "id", id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		ref, err := txn.First(tableApps, "company_id", id)
		if err != nil {
			return err
		}
		if ref != nil {
			return domain.NewDomainError("Company has job applications and cannot be deleted.")
		}
		return txn.Delete(tableCompanies, c)
	})
}

func (r *CompanyRepo) Get(_ domain.Context, id uuid.UUID) (*domain.Company, error) {
	c, err := first[domain.Company](r.s.read(), tableCompanies, "id", id)
	if err != nil {
		return nil, wrap("company.get", err)
	}
	if c == nil {
		return nil, notFound("company.get")
	}
	out := *c
	return &out, nil
}

// List walks the name index, which orders like the Postgres adapter.
func (r *CompanyRepo) List(_ domain.Context) ([]domain.Company, error) {
	out, err := all[domain.Company](r.s.read(), tableCompanies, "name")
	if err != nil {
		return nil, wrap("company.list", err)
	}
	return out, nil
}

func (r *CompanyRepo) Exists(_ domain.Context, id uuid.UUID) (bool, error) {
	ok, err := exists(r.s.read(), tableCompanies, id)
	if err != nil {
		return false, wrap("company.exists", err)
	}
	return ok, nil
}

func (r *CompanyRepo) NameTaken(_ domain.Context, name string, exceptID uuid.UUID) (bool, error) {
	taken, err := companyNameInUse(r.s.read(), name, exceptID)
	if err != nil {
		return false, wrap("company.name_taken", err)
	}
	return taken, nil
}

// JobApplicationRepo implements domain.JobApplicationRepository.
type JobApplicationRepo struct{ s *Store }

func checkRefs(txn *memdb.Txn, ja *domain.JobApplication) error {
	ok, err := exists(txn, tableCompanies, ja.CompanyID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError(domain.EntityCompany, ja.CompanyID)
	}
	ok, err = exists(txn, tableStatuses, ja.StatusID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotFoundError(domain.EntityStatus, ja.StatusID)
	}
	return nil
}

func (r *JobApplicationRepo) Add(_ domain.Context, ja *domain.JobApplication) error {
	return r.s.write("job_application.add", func(txn *memdb.Txn) error {
		if err := checkRefs(txn, ja); err != nil {
			return err
		}
		stored := *ja
		return txn.Insert(tableApps, &stored)
	})
}

func (r *JobApplicationRepo) Update(_ domain.Context, ja *domain.JobApplication) error {
	return r.s.write("job_application.update", func(txn *memdb.Txn) error {
		ok, err := exists(txn, tableApps, ja.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		if err := checkRefs(txn, ja); err != nil {
			return err
		}
		stored := *ja
		return txn.Insert(tableApps, &stored)
	})
}

func (r *JobApplicationRepo) Delete(_ domain.Context, id uuid.UUID) error {
	return r.s.write("job_application.delete", func(txn *memdb.Txn) error {
		ja, err := first[domain.JobApplication](txn, tableApps, "id", id)
		if err != nil {
			return err
		}
		if ja == nil {
			return domain.ErrNotFound
		}
		return txn.Delete(tableApps, ja)
	})
}

func (r *JobApplicationRepo) Get(_ domain.Context, id uuid.UUID) (*domain.JobApplication, error) {
	ja, err := first[domain.JobApplication](r.s.read(), tableApps, "id", id)
	if err != nil {
		return nil, wrap("job_application.get", err)
	}
	if ja == nil {
		return nil, notFound("job_application.get")
	}
	out := *ja
	return &out, nil
}

func details(txn *memdb.Txn, ja domain.JobApplication) (domain.JobApplicationDetails, error) {
	d := domain.JobApplicationDetails{JobApplication: ja}
	c, err := first[domain.Company](txn, tableCompanies, "id", ja.CompanyID)
	if err != nil {
		return d, err
	}
	st, err := first[domain.JobApplicationStatus](txn, tableStatuses, "id", ja.StatusID)
	if err != nil {
		return d, err
	}
	if c != nil {
		d.CompanyName = c.Name
	}
	if st != nil {
		d.StatusName = st.Name
	}
	return d, nil
}

func (r *JobApplicationRepo) GetDetails(_ domain.Context, id uuid.UUID) (domain.JobApplicationDetails, error) {
	txn := r.s.read()
	ja, err := first[domain.JobApplication](txn, tableApps, "id", id)
	if err != nil {
		return domain.JobApplicationDetails{}, wrap("job_application.get_details", err)
	}
	if ja == nil {
		return domain.JobApplicationDetails{}, notFound("job_application.get_details")
	}
	d, err := details(txn, *ja)
	if err != nil {
		return domain.JobApplicationDetails{}, wrap("job_application.get_details", err)
	}
	return d, nil
}

// ListDetails orders by creation time like the Postgres adapter.
func (r *JobApplicationRepo) ListDetails(_ domain.Context) ([]domain.JobApplicationDetails, error) {
	txn := r.s.read()
	apps, err := all[domain.JobApplication](txn, tableApps, "id")
	if err != nil {
		return nil, wrap("job_application.list_details", err)
	}
	out := make([]domain.JobApplicationDetails, 0, len(apps))
	for _, ja := range apps {
		d, err := details(txn, ja)
		if err != nil {
			return nil, wrap("job_application.list_details", err)
		}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b domain.JobApplicationDetails) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// StatusRepo implements domain.StatusRepository.
type StatusRepo struct{ s *Store }

func (r *StatusRepo) Add(_ domain.Context, st *domain.JobApplicationStatus) error {
	return r.s.write("status.add", func(txn *memdb.Txn) error {
		dup, err := txn.First(tableStatuses, "name", st.Name)
		if err != nil {
			return err
		}
		if dup != nil {
			return domain.NewDomainError("Status name already exists.")
		}
		stored := *st
		return txn.Insert(tableStatuses, &stored)
	})
}

// List orders by display order, then name.
func (r *StatusRepo) List(_ domain.Context) ([]domain.JobApplicationStatus, error) {
	out, err := all[domain.JobApplicationStatus](r.s.read(), tableStatuses, "name")
	if err != nil {
		return nil, wrap("status.list", err)
	}
	slices.SortStableFunc(out, func(a, b domain.JobApplicationStatus) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})
	return out, nil
}

func (r *StatusRepo) Exists(_ domain.Context, id uuid.UUID) (bool, error) {
	ok, err := exists(r.s.read(), tableStatuses, id)
	if err != nil {
		return false, wrap("status.exists", err)
	}
	return ok, nil
}

func (r *StatusRepo) NameTaken(_ domain.Context, name string) (bool, error) {
	raw, err := r.s.read().First(tableStatuses, "name", name)
	if err != nil {
		return false, wrap("status.name_taken", err)
	}
	return raw != nil, nil
}

// UserRepo implements domain.UserRepository. The email and user name
// indexes are lower-cased, so lookups ignore case.
type UserRepo struct{ s *Store }

func (r *UserRepo) Add(_ domain.Context, u *domain.User) error {
	return r.s.write("user.add", func(txn *memdb.Txn) error {
		if raw, err := txn.First(tableUsers, "email", u.Email); err != nil || raw != nil {
			if err != nil {
				return err
			}
			return domain.NewDomainError("Email already in use.")
		}
		if raw, err := txn.First(tableUsers, "user_name", u.UserName); err != nil || raw != nil {
			if err != nil {
				return err
			}
			return domain.NewDomainError("Username is already taken.")
		}
		stored := *u
		stored.Roles = slices.Clone(u.Roles)
		return txn.Insert(tableUsers, &stored)
	})
}

func (r *UserRepo) GetByEmail(_ domain.Context, email string) (*domain.User, error) {
	u, err := first[domain.User](r.s.read(), tableUsers, "email", email)
	if err != nil {
		return nil, wrap("user.get_by_email", err)
	}
	if u == nil {
		return nil, notFound("user.get_by_email")
	}
	return domain.RestoreUser(u.ID, u.Email, u.UserName, u.PasswordHash, u.FirstName, u.LastName,
		slices.Clone(u.Roles), u.EmailConfirmed, u.CreatedAt, u.UpdatedAt), nil
}

func (r *UserRepo) EmailTaken(_ domain.Context, email string) (bool, error) {
	raw, err := r.s.read().First(tableUsers, "email", email)
	if err != nil {
		return false, wrap("user.email_taken", err)
	}
	return raw != nil, nil
}

func (r *UserRepo) UserNameTaken(_ domain.Context, userName string) (bool, error) {
	raw, err := r.s.read().First(tableUsers, "user_name", userName)
	if err != nil {
		return false, wrap("user.user_name_taken", err)
	}
	return raw != nil, nil
}

// RefreshTokenRepo implements domain.RefreshTokenRepository.
type RefreshTokenRepo struct{ s *Store }

func (r *RefreshTokenRepo) Add(_ domain.Context, t *domain.RefreshToken) error {
	return r.s.write("refresh_token.add", func(txn *memdb.Txn) error {
		ok, err := exists(txn, tableUsers, t.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotFoundError(domain.EntityUser, t.UserID)
		}
		dup, err := txn.First(tableTokens, "token", t.Token)
		if err != nil {
			return err
		}
		if dup != nil {
			return domain.NewDomainError("Refresh token already exists.")
		}
		stored := *t
		return txn.Insert(tableTokens, &stored)
	})
}

func (r *RefreshTokenRepo) DeleteExpired(_ domain.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.s.write("refresh_token.delete_expired", func(txn *memdb.Txn) error {
		it, err := txn.Get(tableTokens, "id")
		if err != nil {
			return err
		}
		// Collect first; deleting while iterating invalidates the iterator.
		var expired []*domain.RefreshToken
		for raw := it.Next(); raw != nil; raw = it.Next() {
			if t := raw.(*domain.RefreshToken); t.Expired(cutoff) {
				expired = append(expired, t)
			}
		}
		for _, t := range expired {
			if err := txn.Delete(tableTokens, t); err != nil {
				return err
			}
		}
		n = int64(len(expired))
		return nil
	})
	return n, err
}
