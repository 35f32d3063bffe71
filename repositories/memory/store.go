// Package memory is an in-process implementation of the repositories,
// used by tests that exercise services and handlers end to end.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/creatorhub/models"
	"github.com/upb/creatorhub/repositories"
)

// Store holds every table in maps guarded by a single mutex
type Store struct {
	mu sync.Mutex
	data
}

type data struct {
	users         map[uuid.UUID]models.User
	roles         map[string]models.Role
	userRoles     []models.UserRole
	creators      map[uuid.UUID]models.Creator
	subscriptions map[uuid.UUID]models.Subscription
	mappings      map[uuid.UUID]models.GhostAuthorMapping
}

// NewStore creates an empty store seeded with the well-known roles
func NewStore() *Store {
	s := &Store{data: data{
		users:         make(map[uuid.UUID]models.User),
		roles:         make(map[string]models.Role),
		creators:      make(map[uuid.UUID]models.Creator),
		subscriptions: make(map[uuid.UUID]models.Subscription),
		mappings:      make(map[uuid.UUID]models.GhostAuthorMapping),
	}}
	for _, name := range []string{models.RoleCreator, models.RoleCreatorAdmin, models.RoleSubscriber} {
		s.roles[name] = models.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	}
	return s
}

// Repositories returns repository views over the store
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:         &userRepo{s},
		Roles:         &roleRepo{s},
		UserRoles:     &userRoleRepo{s},
		Creators:      &creatorRepo{s},
		Subscriptions: &subscriptionRepo{s},
		GhostAuthors:  &mappingRepo{s},
	}
}

// TransactionManager returns a manager whose rollback restores the store
// to its state at Begin
func (s *Store) TransactionManager() repositories.TransactionManager {
	return &txManager{s}
}

// UserRoleCount returns the number of stored role assignments
func (s *Store) UserRoleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.userRoles)
}

// SubscriptionCount returns the number of stored subscription rows
func (s *Store) SubscriptionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscriptions)
}

func (d data) clone() data {
	c := data{
		users:         make(map[uuid.UUID]models.User, len(d.users)),
		roles:         make(map[string]models.Role, len(d.roles)),
		userRoles:     append([]models.UserRole(nil), d.userRoles...),
		creators:      make(map[uuid.UUID]models.Creator, len(d.creators)),
		subscriptions: make(map[uuid.UUID]models.Subscription, len(d.subscriptions)),
		mappings:      make(map[uuid.UUID]models.GhostAuthorMapping, len(d.mappings)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.roles {
		c.roles[k] = v
	}
	for k, v := range d.creators {
		c.creators[k] = v
	}
	for k, v := range d.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range d.mappings {
		c.mappings[k] = v
	}
	return c
}

type txManager struct{ s *Store }

type transaction struct {
	s        *Store
	ctx      context.Context
	snapshot data
	done     bool
}

func (m *txManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return &transaction{s: m.s, ctx: ctx, snapshot: m.s.data.clone()}, nil
}

func (m *txManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx.Context(), tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (t *transaction) Commit() error {
	t.done = true
	return nil
}

func (t *transaction) Rollback() error {
	if t.done {
		return nil
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.data = t.snapshot
	t.done = true
	return nil
}

func (t *transaction) Context() context.Context {
	return t.ctx
}

var errMissingRole = errors.New("role does not exist")

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || (user.GhostMemberID != nil && u.GhostMemberID != nil && *u.GhostMemberID == *user.GhostMemberID) {
			return repositories.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) GetByGhostMemberID(_ context.Context, ghostMemberID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.GhostMemberID != nil && *u.GhostMemberID == ghostMemberID })
}

func (r *userRepo) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.GhostMemberID = user.GhostMemberID
	existing.UpdatedAt = user.UpdatedAt
	r.s.users[user.ID] = existing
	return nil
}

func (r *userRepo) SetCreator(_ context.Context, id uuid.UUID, isCreator bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.IsCreator = isCreator
	r.s.users[id] = existing
	return nil
}

type roleRepo struct{ s *Store }

func (r *roleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &role, nil
}

func (r *roleRepo) List(_ context.Context) ([]*models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roles := make([]*models.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		role := role
		roles = append(roles, &role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

type userRoleRepo struct{ s *Store }

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *userRoleRepo) Assign(_ context.Context, assignment *models.UserRole) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roleNameByID(assignment.RoleID); !ok {
		return false, errMissingRole
	}
	for _, ur := range r.s.userRoles {
		if ur.UserID == assignment.UserID && ur.RoleID == assignment.RoleID && sameScope(ur.CreatorID, assignment.CreatorID) {
			return false, nil
		}
	}
	r.s.userRoles = append(r.s.userRoles, *assignment)
	return true, nil
}

func (r *userRoleRepo) Exists(_ context.Context, userID, roleID uuid.UUID, creatorID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ur := range r.s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID && sameScope(ur.CreatorID, creatorID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRoleRepo) ListAssignments(_ context.Context, userID uuid.UUID) ([]models.RoleAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignments := []models.RoleAssignment{}
	for _, ur := range r.s.userRoles {
		if ur.UserID != userID {
			continue
		}
		name, _ := r.s.roleNameByID(ur.RoleID)
		assignments = append(assignments, models.RoleAssignment{RoleName: name, CreatorID: ur.CreatorID})
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].RoleName < assignments[j].RoleName })
	return assignments, nil
}

func (r *userRoleRepo) ListMembers(_ context.Context, creatorID uuid.UUID) ([]*models.CreatorMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byUser := map[uuid.UUID]*models.CreatorMember{}
	for _, ur := range r.s.userRoles {
		if ur.CreatorID == nil || *ur.CreatorID != creatorID {
			continue
		}
		member, ok := byUser[ur.UserID]
		if !ok {
			u := r.s.users[ur.UserID]
			member = &models.CreatorMember{UserID: u.ID, Email: u.Email, Name: u.Name}
			byUser[ur.UserID] = member
		}
		name, _ := r.s.roleNameByID(ur.RoleID)
		member.Roles = append(member.Roles, name)
	}
	members := make([]*models.CreatorMember, 0, len(byUser))
	for _, m := range byUser {
		sort.Strings(m.Roles)
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Email < members[j].Email })
	return members, nil
}

func (d data) roleNameByID(id uuid.UUID) (string, bool) {
	for name, role := range d.roles {
		if role.ID == id {
			return name, true
		}
	}
	return "", false
}

type creatorRepo struct{ s *Store }

func (r *creatorRepo) Create(_ context.Context, creator *models.Creator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.creators {
		if c.Slug == creator.Slug || c.UserID == creator.UserID {
			return repositories.ErrDuplicate
		}
	}
	r.s.creators[creator.ID] = *creator
	return nil
}

func (r *creatorRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Creator, error) {
	return r.find(func(c models.Creator) bool { return c.ID == id })
}

func (r *creatorRepo) GetBySlug(_ context.Context, slug string) (*models.Creator, error) {
	return r.find(func(c models.Creator) bool { return c.Slug == slug })
}

func (r *creatorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Creator, error) {
	return r.find(func(c models.Creator) bool { return c.UserID == userID })
}

func (r *creatorRepo) find(match func(models.Creator) bool) (*models.Creator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.creators {
		if match(c) {
			found := r.s.withCount(c)
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (d data) withCount(c models.Creator) models.Creator {
	c.SubscriberCount = 0
	for _, sub := range d.subscriptions {
		if sub.CreatorID == c.ID && sub.IsActive() {
			c.SubscriberCount++
		}
	}
	return c
}

func (r *creatorRepo) List(_ context.Context, filter models.CreatorFilter) ([]*models.Creator, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids map[uuid.UUID]bool
	if filter.IDs != nil {
		ids = make(map[uuid.UUID]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}
	search := strings.ToLower(filter.Search)

	matched := []*models.Creator{}
	for _, c := range r.s.creators {
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if ids != nil && !ids[c.ID] {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.Slug), search) {
			continue
		}
		found := r.s.withCount(c)
		matched = append(matched, &found)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *creatorRepo) Update(_ context.Context, creator *models.Creator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.creators[creator.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.Name = creator.Name
	existing.Bio = creator.Bio
	existing.Avatar = creator.Avatar
	existing.Settings = creator.Settings
	existing.UpdatedAt = creator.UpdatedAt
	r.s.creators[creator.ID] = existing
	return nil
}

type subscriptionRepo struct{ s *Store }

func (r *subscriptionRepo) Upsert(_ context.Context, sub *models.Subscription) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.subscriptions {
		if existing.UserID == sub.UserID && existing.CreatorID == sub.CreatorID {
			existing.Status = sub.Status
			existing.ContentType = sub.ContentType
			existing.GhostMemberID = sub.GhostMemberID
			existing.UpdatedAt = sub.UpdatedAt
			r.s.subscriptions[id] = existing
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			return false, nil
		}
	}
	r.s.subscriptions[sub.ID] = *sub
	return true, nil
}

func (r *subscriptionRepo) GetByUserAndCreator(_ context.Context, userID, creatorID uuid.UUID) (*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID && sub.CreatorID == creatorID {
			found := sub
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *subscriptionRepo) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	subs := []*models.Subscription{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID != userID || !sub.IsActive() {
			continue
		}
		found := sub
		if c, ok := r.s.creators[sub.CreatorID]; ok {
			found.Creator = &models.CreatorSummary{ID: c.ID, Name: c.Name, Slug: c.Slug, Avatar: c.Avatar, Type: c.Type}
		}
		subs = append(subs, &found)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs, nil
}

func (r *subscriptionRepo) Deactivate(_ context.Context, userID, creatorID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, sub := range r.s.subscriptions {
		if sub.UserID == userID && sub.CreatorID == creatorID {
			sub.Deactivate()
			r.s.subscriptions[id] = sub
			return nil
		}
	}
	return repositories.ErrNotFound
}

type mappingRepo struct{ s *Store }

func (r *mappingRepo) Create(_ context.Context, mapping *models.GhostAuthorMapping) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.mappings[mapping.CreatorID]; ok {
		return repositories.ErrDuplicate
	}
	r.s.mappings[mapping.CreatorID] = *mapping
	return nil
}

func (r *mappingRepo) GetByCreatorID(_ context.Context, creatorID uuid.UUID) (*models.GhostAuthorMapping, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.mappings[creatorID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}
