package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"

	"scholarforge/internal/ai"
	"scholarforge/internal/compress"
	"scholarforge/internal/model"
	"scholarforge/internal/storage"
)

type memUsers struct {
	next  uint
	users map[uint]*model.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uint]*model.User{}} }

func (m *memUsers) Create(u *model.User) error {
	m.next++
	u.ID = m.next
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(u *model.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(id uint) error {
	delete(m.users, id)
	return nil
}

func (m *memUsers) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByUsername(name string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == name })
}

func (m *memUsers) GetByEmail(email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *memUsers) GetByID(id uint) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}

type memDrafts struct {
	next   uint
	drafts map[uint]model.Draft
}

func newMemDrafts() *memDrafts { return &memDrafts{drafts: map[uint]model.Draft{}} }

func (m *memDrafts) Create(d *model.Draft) error {
	m.next++
	d.ID = m.next
	m.drafts[d.ID] = *d
	return nil
}

func (m *memDrafts) Save(d *model.Draft) error {
	m.drafts[d.ID] = *d
	return nil
}

func (m *memDrafts) ListByUserID(userID uint, kind model.DraftKind) ([]model.Draft, error) {
	var out []model.Draft
	for _, d := range m.drafts {
		if d.UserID == userID && (kind == "" || d.Kind == kind) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memDrafts) GetByIDAndUserID(id, userID uint) (*model.Draft, error) {
	d, ok := m.drafts[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return &d, nil
}

func (m *memDrafts) DeleteByIDAndUserID(id, userID uint) error {
	if d, ok := m.drafts[id]; ok && d.UserID == userID {
		delete(m.drafts, id)
	}
	return nil
}

func (m *memDrafts) DeleteByUserID(userID uint) error {
	for id, d := range m.drafts {
		if d.UserID == userID {
			delete(m.drafts, id)
		}
	}
	return nil
}

type panelKey struct {
	user  uint
	panel string
}

type memPanels struct {
	states map[panelKey]string
	gets   int
}

func newMemPanels() *memPanels { return &memPanels{states: map[panelKey]string{}} }

func (m *memPanels) Get(userID uint, panel string) (*model.PanelState, error) {
	m.gets++
	p, ok := m.states[panelKey{userID, panel}]
	if !ok {
		return nil, nil
	}
	return &model.PanelState{UserID: userID, Panel: panel, Payload: p}, nil
}

func (m *memPanels) Upsert(s *model.PanelState) error {
	m.states[panelKey{s.UserID, s.Panel}] = s.Payload
	return nil
}

func (m *memPanels) Delete(userID uint, panel string) error {
	delete(m.states, panelKey{userID, panel})
	return nil
}

func (m *memPanels) DeleteByUserID(userID uint) error {
	for k := range m.states {
		if k.user == userID {
			delete(m.states, k)
		}
	}
	return nil
}

type memPanelCache struct {
	memPanels
}

func newMemPanelCache() *memPanelCache { return &memPanelCache{*newMemPanels()} }

func (c *memPanelCache) Get(_ context.Context, userID uint, panel string) (string, bool, error) {
	p, ok := c.states[panelKey{userID, panel}]
	return p, ok, nil
}

func (c *memPanelCache) Set(_ context.Context, userID uint, panel, payload string) error {
	c.states[panelKey{userID, panel}] = payload
	return nil
}

func (c *memPanelCache) Delete(_ context.Context, userID uint, panel string) error {
	delete(c.states, panelKey{userID, panel})
	return nil
}

type memTables struct {
	next   uint
	tables map[uint]model.FieldTable
}

func newMemTables() *memTables { return &memTables{tables: map[uint]model.FieldTable{}} }

func (m *memTables) Create(t *model.FieldTable) error {
	m.next++
	t.ID = m.next
	m.tables[t.ID] = *t
	return nil
}

func (m *memTables) Save(t *model.FieldTable) error {
	m.tables[t.ID] = *t
	return nil
}

func (m *memTables) ListByUserID(userID uint) ([]model.FieldTable, error) {
	var out []model.FieldTable
	for _, t := range m.tables {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTables) GetByIDAndUserID(id, userID uint) (*model.FieldTable, error) {
	t, ok := m.tables[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (m *memTables) DeleteByIDAndUserID(id, userID uint) error {
	if t, ok := m.tables[id]; ok && t.UserID == userID {
		delete(m.tables, id)
	}
	return nil
}

func (m *memTables) DeleteByUserID(userID uint) error {
	for id, t := range m.tables {
		if t.UserID == userID {
			delete(m.tables, id)
		}
	}
	return nil
}

type memObservations struct {
	list []model.FieldObservation
}

func (m *memObservations) Create(o *model.FieldObservation) error {
	o.ID = uint(len(m.list) + 1)
	m.list = append(m.list, *o)
	return nil
}

func (m *memObservations) ListByUserID(userID uint, trip string) ([]model.FieldObservation, error) {
	var out []model.FieldObservation
	for _, o := range m.list {
		if o.UserID == userID && (trip == "" || o.Trip == trip) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memObservations) GetByIDAndUserID(id, userID uint) (*model.FieldObservation, error) {
	for _, o := range m.list {
		if o.ID == id && o.UserID == userID {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memObservations) DeleteByUserID(userID uint) error {
	kept := m.list[:0]
	for _, o := range m.list {
		if o.UserID != userID {
			kept = append(kept, o)
		}
	}
	m.list = kept
	return nil
}

type memFiles struct {
	mu    sync.Mutex
	next  uint
	files map[uint]model.CompressedFile
}

func newMemFiles() *memFiles { return &memFiles{files: map[uint]model.CompressedFile{}} }

func (m *memFiles) Create(f *model.CompressedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	f.ID = m.next
	m.files[f.ID] = *f
	return nil
}

func (m *memFiles) Save(f *model.CompressedFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = *f
	return nil
}

func (m *memFiles) GetByID(id uint) (*model.CompressedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (m *memFiles) GetByIDAndUserID(id, userID uint) (*model.CompressedFile, error) {
	f, err := m.GetByID(id)
	if err != nil || f == nil || f.UserID != userID {
		return nil, err
	}
	return f, nil
}

func (m *memFiles) ListByUserID(userID uint, _ int) ([]model.CompressedFile, error) {
	return m.ListAllByUserID(userID)
}

func (m *memFiles) ListAllByUserID(userID uint) ([]model.CompressedFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CompressedFile
	for _, f := range m.files {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFiles) DeleteByIDAndUserID(id, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok && f.UserID == userID {
		delete(m.files, id)
	}
	return nil
}

func (m *memFiles) DeleteByUserID(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.files {
		if f.UserID == userID {
			delete(m.files, id)
		}
	}
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStorage) Put(_ context.Context, key, contentType string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type fakeCompressor struct {
	result *compress.Result
	err    error
	calls  int
}

func (f *fakeCompressor) Compress(_ context.Context, src []byte, target int64) (*compress.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePublisher struct {
	jobs []model.CompressJob
	err  error
}

func (p *fakePublisher) PublishCompressJob(_ context.Context, job model.CompressJob) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

// fakeGenerator records requests and returns a fixed answer.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []ai.Request
	text     string
	cites    []ai.Citation
	image    *ai.Image
	err      error
	block    bool
}

func (g *fakeGenerator) Generate(ctx context.Context, req ai.Request) (*ai.Response, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &ai.Response{Text: g.text, Citations: g.cites, Model: "fake"}, nil
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, prompt string) (*ai.Image, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.image == nil {
		return nil, errors.New("no image")
	}
	return g.image, nil
}

func (g *fakeGenerator) last(t *testing.T) ai.Request {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		t.Fatal("no generator request recorded")
	}
	return g.requests[len(g.requests)-1]
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 5), 90, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
