package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"scholarforge/internal/ai"
	"scholarforge/internal/model"
	"scholarforge/internal/pkg/jwtutil"
	"scholarforge/internal/storage"
	"scholarforge/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine returns a router whose routes all sit behind the JWT middleware.
func newEngine() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	return r, r.Group("", middleware.AuthJWT(testSecret))
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := jwtutil.GenerateToken(testSecret, time.Hour, userID, "tester")
	require.NoError(t, err)
	return tok
}

// obj is shorthand for JSON request bodies.
type obj = map[string]interface{}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, r, req, token)
}

func serve(t *testing.T, r http.Handler, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

type memUsers struct {
	next  uint
	users map[uint]model.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uint]model.User{}} }

func (m *memUsers) Create(u *model.User) error {
	m.next++
	u.ID = m.next
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) Update(u *model.User) error { m.users[u.ID] = *u; return nil }

func (m *memUsers) Delete(id uint) error { delete(m.users, id); return nil }

func (m *memUsers) find(match func(model.User) bool) (*model.User, error) {
	for _, u := range m.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) GetByUsername(name string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Username == name })
}

func (m *memUsers) GetByEmail(email string) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.Email == email })
}

func (m *memUsers) GetByID(id uint) (*model.User, error) {
	return m.find(func(u model.User) bool { return u.ID == id })
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

func (m *memDrafts) Save(d *model.Draft) error { m.drafts[d.ID] = *d; return nil }

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

type memPanels struct {
	states map[string]string
}

func newMemPanels() *memPanels { return &memPanels{states: map[string]string{}} }

func panelKey(userID uint, panel string) string {
	return fmt.Sprintf("%d:%s", userID, panel)
}

func (m *memPanels) Get(userID uint, panel string) (*model.PanelState, error) {
	p, ok := m.states[panelKey(userID, panel)]
	if !ok {
		return nil, nil
	}
	return &model.PanelState{UserID: userID, Panel: panel, Payload: p}, nil
}

func (m *memPanels) Upsert(s *model.PanelState) error {
	m.states[panelKey(s.UserID, s.Panel)] = s.Payload
	return nil
}

func (m *memPanels) Delete(userID uint, panel string) error {
	delete(m.states, panelKey(userID, panel))
	return nil
}

func (m *memPanels) DeleteByUserID(uint) error {
	m.states = map[string]string{}
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

func (m *memTables) Save(t *model.FieldTable) error { m.tables[t.ID] = *t; return nil }

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

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

var _ storage.Storage = (*memStorage)(nil)

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (m *memStorage) Put(_ context.Context, key, _ string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
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

type stubGenerator struct {
	text  string
	cites []ai.Citation
	image *ai.Image
	err   error
	last  ai.Request
}

func (g *stubGenerator) Generate(_ context.Context, req ai.Request) (*ai.Response, error) {
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return &ai.Response{Text: g.text, Citations: g.cites, Model: "stub"}, nil
}

func (g *stubGenerator) GenerateImage(_ context.Context, _ string) (*ai.Image, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.image, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 5), uint8(y * 3), 120, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
