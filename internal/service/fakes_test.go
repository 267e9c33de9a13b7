package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/irkinnovations/portfolio/internal/domain"
)

type memProjects struct {
	mu   sync.Mutex
	byID map[string]domain.Project
}

func newMemProjects() *memProjects {
	return &memProjects{byID: map[string]domain.Project{}}
}

func (m *memProjects) List(ctx context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memProjects) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *memProjects) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memProjects) Update(ctx context.Context, p domain.Project) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memProjects) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memProjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// memAssets treats "https://cdn.test/images/<key>" as a bucket URL.
type memAssets struct {
	objects map[string]bool
	deleted []string
	err     error
}

const assetBase = "https://cdn.test/images/"

func newMemAssets(keys ...string) *memAssets {
	a := &memAssets{objects: map[string]bool{}}
	for _, k := range keys {
		a.objects[k] = true
	}
	return a
}

func (a *memAssets) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, assetBase)
	return key, ok && key != ""
}

func (a *memAssets) Exists(ctx context.Context, key string) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.objects[key], nil
}

func (a *memAssets) Delete(ctx context.Context, keys ...string) error {
	if a.err != nil {
		return a.err
	}
	for _, k := range keys {
		delete(a.objects, k)
	}
	a.deleted = append(a.deleted, keys...)
	return nil
}

type memAdmins struct {
	byEmail map[string]domain.Admin
}

func newMemAdmins(admins ...domain.Admin) *memAdmins {
	m := &memAdmins{byEmail: map[string]domain.Admin{}}
	for _, a := range admins {
		m.byEmail[a.Email] = a
	}
	return m
}

func (m *memAdmins) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAdmins) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *memAdmins) Upsert(ctx context.Context, admin domain.Admin) (*domain.Admin, error) {
	if existing, ok := m.byEmail[admin.Email]; ok {
		existing.PasswordHash = admin.PasswordHash
		existing.UpdatedAt = admin.UpdatedAt
		m.byEmail[admin.Email] = existing
		return &existing, nil
	}
	m.byEmail[admin.Email] = admin
	return &admin, nil
}

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, email Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}
