package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"refexcms/internal/auth"
	"refexcms/internal/linktree"
	"refexcms/internal/middleware"
	"refexcms/internal/models"
)

var errStoreDown = errors.New("connection refused")

// fakeTree is an in-memory TreeStore that also records revisions.
type fakeTree struct {
	mu        sync.Mutex
	tree      []models.Category
	loadErr   error
	saveErr   error
	loads     int
	savedBy   []string
	revisions []models.DocumentRevision

	// afterRead, when set, runs once Load has copied the tree and released
	// the lock, before it returns.
	afterRead func()
}

func (f *fakeTree) Load() ([]models.Category, error) {
	f.mu.Lock()
	f.loads++
	err := f.loadErr
	tree := []models.Category{}
	if f.tree != nil {
		tree = linktree.Clone(f.tree)
	}
	hook := f.afterRead
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// gateNextLoad makes the next Load block after reading the tree until the
// returned release func is called. started is closed once it blocks.
func (f *fakeTree) gateNextLoad() (started <-chan struct{}, release func()) {
	blocked, gate := make(chan struct{}), make(chan struct{})
	var once sync.Once
	f.mu.Lock()
	f.afterRead = func() {
		once.Do(func() {
			close(blocked)
			<-gate
		})
	}
	f.mu.Unlock()
	return blocked, func() { close(gate) }
}

func (f *fakeTree) Save(tree []models.Category, updatedBy string) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.tree = linktree.Normalize(linktree.Clone(tree))
	f.savedBy = append(f.savedBy, updatedBy)
	return linktree.Clone(f.tree), nil
}

// fakeRevisions serves a fixed list of revisions.
type fakeRevisions struct {
	revs []models.DocumentRevision
	err  error
}

func (f *fakeRevisions) ListByKey(key string, limit int) ([]models.DocumentRevision, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.DocumentRevision
	for _, r := range f.revs {
		if r.Key != key || len(out) == limit {
			continue
		}
		r.Body = nil
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRevisions) FindByID(key string, id int64) (*models.DocumentRevision, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.revs {
		if r.Key == key && r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

// memCache implements both DocumentCache and PageCache.
type memCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	fills         int
	invalidations int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *memCache) Fill(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = body
	}
	c.fills++
}

func (c *memCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.invalidations++
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// fakeGen is an in-memory Generations counter.
type fakeGen struct {
	mu      sync.Mutex
	n       int64
	down    bool
	bumpErr error
}

func (g *fakeGen) Current(context.Context) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n, !g.down
}

func (g *fakeGen) Bump(context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.bumpErr != nil {
		return 0, g.bumpErr
	}
	g.n++
	return g.n, nil
}

func (g *fakeGen) current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// fakeUsers authenticates against a fixed set of bcrypt-hashed users.
type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.User)}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[email], nil
}

func (f *fakeUsers) CheckPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func userWithPassword(email, password string, role models.Role, perms ...string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &models.User{Email: email, PasswordHash: string(hash), Role: role, Permissions: perms}
}

// fakeBackend keeps stored objects in memory.
type fakeBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
	deleted []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return "/uploads/" + key, nil
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

// fakeRecorder records uploads in memory.
type fakeRecorder struct {
	uploads []models.Upload
	err     error
}

func (f *fakeRecorder) Create(u *models.Upload) (*models.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, *u)
	out := *u
	out.CreatedAt = time.Now()
	return &out, nil
}

// withClaims authenticates the request as an investor-relations editor.
func withClaims(r *http.Request, email string) *http.Request {
	c := &auth.Claims{Role: models.RoleEditor, Permissions: []string{models.PermissionInvestorRelations}}
	c.Subject = email
	return r.WithContext(middleware.WithClaims(r.Context(), c))
}

// withURLParam sets a chi URL parameter on the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
