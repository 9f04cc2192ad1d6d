// Package fakeuserrepo is an in-memory user store for tests and local runs
// without MySQL.
package fakeuserrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/property-rental/internal/model"
	"github.com/iliyamo/property-rental/internal/repository"
)

// FakeUserRepo mirrors repository.UserRepo semantics over a map.
type FakeUserRepo struct {
	lock     sync.RWMutex
	users    map[uint64]model.User
	emailIDs map[string]uint64
	nextID   uint64

	// Err, when set, is returned by every call.
	Err error
	// CreateErr, when set, is returned by Create only.
	CreateErr error
	// Creates counts successful inserts.
	Creates int
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[uint64]model.User),
		emailIDs: make(map[string]uint64),
	}
}

// Seed stores u as-is (ID assigned when zero) and returns the stored row.
func (r *FakeUserRepo) Seed(u model.User) model.User {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.insert(u)
}

func (r *FakeUserRepo) insert(u model.User) model.User {
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	u.Email = repository.NormalizeEmail(u.Email)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.users[u.ID] = u
	r.emailIDs[u.Email] = u.ID
	return u
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return model.User{}, r.Err
	}
	id, ok := r.emailIDs[repository.NormalizeEmail(email)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return r.users[id], nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return model.User{}, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// Create stores a new active user. New rows are active like the MySQL
// column default.
func (r *FakeUserRepo) Create(_ context.Context, u model.User) (uint64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if r.CreateErr != nil {
		return 0, r.CreateErr
	}
	if _, ok := r.emailIDs[repository.NormalizeEmail(u.Email)]; ok {
		return 0, repository.ErrEmailExists
	}
	u.ID = 0
	u.IsActive = true
	stored := r.insert(u)
	r.Creates++
	return stored.ID, nil
}

func (r *FakeUserRepo) Update(_ context.Context, id uint64, upd model.ProfileUpdate) (model.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return model.User{}, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *FakeUserRepo) Delete(_ context.Context, id uint64) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	delete(r.emailIDs, u.Email)
	return nil
}

func (r *FakeUserRepo) List(_ context.Context) ([]model.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FakeUserRepo) CountByRole(_ context.Context) (map[model.Role]int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make(map[model.Role]int, 3)
	for _, role := range model.Roles() {
		out[role] = 0
	}
	for _, u := range r.users {
		out[u.Role]++
	}
	return out, nil
}

// Len returns the number of stored users.
func (r *FakeUserRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.users)
}
