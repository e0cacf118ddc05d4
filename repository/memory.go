package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/models"
)

// MemoryStore keeps aggregates in process. It is used when no database is
// configured and in tests. Aggregates go through the same JSON encoding the
// jsonb columns use, so callers never share memory with the store.
type MemoryStore struct {
	mu sync.Mutex

	interviews     map[string][]byte
	interviewMeta  map[string]storedMeta
	interviewByURL map[string]string
	interviewOrder []string

	practices     map[string][]byte
	practiceMeta  map[string]storedMeta
	practiceOrder []string

	companies map[string]models.Company
	users     map[string]models.User
}

type storedMeta struct {
	version int64
	owner   string
	status  models.Status
	created time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		interviews:     make(map[string][]byte),
		interviewMeta:  make(map[string]storedMeta),
		interviewByURL: make(map[string]string),
		practices:      make(map[string][]byte),
		practiceMeta:   make(map[string]storedMeta),
		companies:      make(map[string]models.Company),
		users:          make(map[string]models.User),
	}
}

func (m *MemoryStore) decodeInterview(id string) (*models.Interview, error) {
	var iv models.Interview
	if err := json.Unmarshal(m.interviews[id], &iv); err != nil {
		return nil, err
	}
	iv.Version = m.interviewMeta[id].version
	return &iv, nil
}

func (m *MemoryStore) decodePractice(id string) (*models.Practice, error) {
	var p models.Practice
	if err := json.Unmarshal(m.practices[id], &p); err != nil {
		return nil, err
	}
	p.Version = m.practiceMeta[id].version
	return &p, nil
}

// Interview operations

func (m *MemoryStore) CreateInterview(ctx context.Context, iv *models.Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.interviewByURL[iv.UniqueURL]; taken {
		return WriteConflict("interview url already in use")
	}
	now := time.Now()
	iv.Version = 1
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = now
	}
	iv.UpdatedAt = now
	data, err := json.Marshal(iv)
	if err != nil {
		return err
	}
	m.interviews[iv.ID] = data
	m.interviewMeta[iv.ID] = storedMeta{version: 1, owner: iv.CompanyID, status: iv.Status, created: iv.CreatedAt}
	m.interviewByURL[iv.UniqueURL] = iv.ID
	m.interviewOrder = append(m.interviewOrder, iv.ID)
	slog.Info("Interview created", "interview_id", iv.ID, "company_id", iv.CompanyID)
	return nil
}

func (m *MemoryStore) FindInterviewByURL(ctx context.Context, uniqueURL string) (*models.Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.interviewByURL[uniqueURL]
	if !ok {
		return nil, nil
	}
	return m.decodeInterview(id)
}

func (m *MemoryStore) FindInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.interviews[id]; !ok {
		return nil, nil
	}
	return m.decodeInterview(id)
}

func (m *MemoryStore) SaveInterview(ctx context.Context, iv *models.Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.interviewMeta[iv.ID]
	if !ok {
		return apperr.NotFound("interview")
	}
	if meta.version != iv.Version {
		slog.Warn("Interview save rejected, stale version", "interview_id", iv.ID, "version", iv.Version)
		return WriteConflict("interview was modified concurrently")
	}
	iv.UpdatedAt = time.Now()
	data, err := json.Marshal(iv)
	if err != nil {
		return err
	}
	meta.version++
	meta.status = iv.Status
	m.interviews[iv.ID] = data
	m.interviewMeta[iv.ID] = meta
	iv.Version = meta.version
	return nil
}

func (m *MemoryStore) ListInterviews(ctx context.Context, companyID string, page Page) ([]models.Interview, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := newestFirst(m.interviewOrder, func(id string) bool {
		return m.interviewMeta[id].owner == companyID
	})
	out := make([]models.Interview, 0)
	for _, id := range window(ids, page) {
		iv, err := m.decodeInterview(id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *iv)
	}
	return out, int64(len(ids)), nil
}

// Practice operations

func (m *MemoryStore) CreatePractice(ctx context.Context, p *models.Practice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.practices[p.ID]; exists {
		return apperr.Conflict("practice already exists")
	}
	p.Version = 1
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.practices[p.ID] = data
	m.practiceMeta[p.ID] = storedMeta{version: 1, owner: p.UserID, status: p.Status, created: p.CreatedAt}
	m.practiceOrder = append(m.practiceOrder, p.ID)
	slog.Info("Practice created", "practice_id", p.ID, "user_id", p.UserID)
	return nil
}

func (m *MemoryStore) FindPractice(ctx context.Context, id, userID string) (*models.Practice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.practiceMeta[id]
	if !ok || meta.owner != userID {
		return nil, nil
	}
	return m.decodePractice(id)
}

func (m *MemoryStore) LatestActivePractice(ctx context.Context, userID string) (*models.Practice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := newestFirst(m.practiceOrder, func(id string) bool {
		meta := m.practiceMeta[id]
		return meta.owner == userID && meta.status == models.StatusActive
	})
	if len(ids) == 0 {
		return nil, nil
	}
	latest := ids[0]
	for _, id := range ids[1:] {
		if m.practiceMeta[id].created.After(m.practiceMeta[latest].created) {
			latest = id
		}
	}
	return m.decodePractice(latest)
}

func (m *MemoryStore) SavePractice(ctx context.Context, p *models.Practice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.practiceMeta[p.ID]
	if !ok {
		return apperr.NotFound("practice")
	}
	if meta.version != p.Version {
		slog.Warn("Practice save rejected, stale version", "practice_id", p.ID, "version", p.Version)
		return WriteConflict("practice was modified concurrently")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	meta.version++
	meta.status = p.Status
	m.practices[p.ID] = data
	m.practiceMeta[p.ID] = meta
	p.Version = meta.version
	return nil
}

func (m *MemoryStore) ListPractices(ctx context.Context, userID string, page Page) ([]models.Practice, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := newestFirst(m.practiceOrder, func(id string) bool {
		return m.practiceMeta[id].owner == userID
	})
	out := make([]models.Practice, 0)
	for _, id := range window(ids, page) {
		p, err := m.decodePractice(id)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, int64(len(ids)), nil
}

// Account operations

func (m *MemoryStore) CreateCompany(ctx context.Context, company *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.companies {
		if c.Email == company.Email || c.TaxNumber == company.TaxNumber {
			return apperr.Conflict("company already exists")
		}
	}
	now := time.Now()
	company.CreatedAt, company.UpdatedAt = now, now
	m.companies[company.ID] = *company
	return nil
}

func (m *MemoryStore) GetCompanyByEmail(ctx context.Context, email string) (*models.Company, error) {
	return m.findCompany(func(c models.Company) bool { return c.Email == email })
}

func (m *MemoryStore) GetCompanyByTaxNumber(ctx context.Context, taxNumber string) (*models.Company, error) {
	return m.findCompany(func(c models.Company) bool { return c.TaxNumber == taxNumber })
}

func (m *MemoryStore) GetCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	return m.findCompany(func(c models.Company) bool { return c.ID == id })
}

func (m *MemoryStore) findCompany(match func(models.Company) bool) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if match(c) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperr.Conflict("user already exists")
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ID == id })
}

func (m *MemoryStore) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// newestFirst filters ids (kept in insertion order) and reverses them.
func newestFirst(order []string, keep func(string) bool) []string {
	out := make([]string, 0)
	for i := len(order) - 1; i >= 0; i-- {
		if keep(order[i]) {
			out = append(out, order[i])
		}
	}
	return out
}

func window(ids []string, page Page) []string {
	if page.Skip >= len(ids) {
		return nil
	}
	ids = ids[page.Skip:]
	if page.Limit > 0 && page.Limit < len(ids) {
		ids = ids[:page.Limit]
	}
	return ids
}
