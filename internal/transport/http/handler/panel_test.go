package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"scholarforge/internal/app"
	"scholarforge/internal/transport/http/response"
)

func TestPanel_LoadSaveReset(t *testing.T) {
	h := NewPanelHandler(app.NewPanelService(newMemPanels(), nil, zaptest.NewLogger(t)))
	r, secured := newEngine()
	secured.GET("/panels/:panel", h.Get)
	secured.PUT("/panels/:panel", h.Save)
	secured.DELETE("/panels/:panel", h.Reset)
	token := tokenFor(t, 3)

	w, env := do(t, r, http.MethodGet, "/panels/research", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Panel string                 `json:"panel"`
		State map[string]interface{} `json:"state"`
	}
	decode(t, env.Data, &got)
	assert.Equal(t, "research", got.Panel)
	assert.Equal(t, "", got.State["topic"])

	w, _ = do(t, r, http.MethodPut, "/panels/research", token, obj{"topic": "coral bleaching"})
	require.Equal(t, http.StatusOK, w.Code)

	_, env = do(t, r, http.MethodGet, "/panels/research", token, nil)
	decode(t, env.Data, &got)
	assert.Equal(t, "coral bleaching", got.State["topic"])
	assert.Equal(t, []interface{}{}, got.State["theses"])

	w, _ = do(t, r, http.MethodDelete, "/panels/research", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, env = do(t, r, http.MethodGet, "/panels/research", token, nil)
	got.State = nil
	decode(t, env.Data, &got)
	assert.Equal(t, "", got.State["topic"])
}

func TestPanel_Errors(t *testing.T) {
	h := NewPanelHandler(app.NewPanelService(newMemPanels(), nil, zaptest.NewLogger(t)))
	r, secured := newEngine()
	secured.GET("/panels/:panel", h.Get)
	secured.PUT("/panels/:panel", h.Save)
	token := tokenFor(t, 3)

	w, env := do(t, r, http.MethodGet, "/panels/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeUnknownPanel, env.Code)

	req := httptest.NewRequest(http.MethodPut, "/panels/data", bytes.NewBufferString(`[1,2,3]`))
	w, env = serve(t, r, req, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeBadRequest, env.Code)

	big := bytes.Repeat([]byte("a"), 3<<20)
	req = httptest.NewRequest(http.MethodPut, "/panels/data", bytes.NewReader(append([]byte(`{"csv":"`), big...)))
	w, env = serve(t, r, req, token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, response.CodePayloadTooLarge, env.Code)
}
