package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medreza/honcho-coupon-card/pkg/card"
	"github.com/medreza/honcho-coupon-card/pkg/database"
	"github.com/medreza/honcho-coupon-card/pkg/models"
	"github.com/medreza/honcho-coupon-card/pkg/repository"
	"github.com/medreza/honcho-coupon-card/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *scheduler.Virtual) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sched := scheduler.NewVirtual(time.Date(2025, time.November, 20, 8, 15, 0, 0, time.UTC))
	c := card.New(repository.NewStateRepository(database.NewMemory(), ""), sched, nil, card.Options{
		Offer:    models.DefaultOffer(),
		Variant:  models.DefaultVariant(),
		Location: time.UTC,
	})
	c.Load()

	router := gin.New()
	NewCardHandler(c).Register(router.Group("/api/card"))
	return router, sched
}

func do(t *testing.T, router *gin.Engine, req *http.Request) (int, models.View) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var v models.View
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	}
	return w.Code, v
}

func post(path string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, nil)
}

func TestCardHandler_GetCard(t *testing.T) {
	router, _ := setupRouter(t)

	code, v := do(t, router, httptest.NewRequest(http.MethodGet, "/api/card", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Valitsemasi Tex Mex -tuote", v.Title)
	assert.True(t, v.Action.Visible)
	assert.Equal(t, "Näytä myyjälle", v.Action.Label)
}

func TestCardHandler_Redeem(t *testing.T) {
	router, sched := setupRouter(t)

	_, v := do(t, router, post("/api/card/action"))
	assert.Equal(t, models.PanelOpening, v.Confirm.State)
	sched.RunFrames()

	_, v = do(t, router, post("/api/card/confirm"))
	assert.True(t, v.Confirm.Loading)

	sched.Advance(time.Second)
	_, v = do(t, router, httptest.NewRequest(http.MethodGet, "/api/card", nil))
	assert.True(t, v.Badge.Visible)
	assert.Equal(t, "20.11.2025", v.Badge.Date)
	assert.Equal(t, "08:15", v.Badge.Time)

	_, v = do(t, router, post("/api/card/back"))
	assert.False(t, v.Badge.Visible)
	assert.True(t, v.Action.Visible)
}

func TestCardHandler_Save(t *testing.T) {
	router, _ := setupRouter(t)

	_, v := do(t, router, post("/api/card/save"))
	assert.True(t, v.Saved)
	_, v = do(t, router, post("/api/card/save"))
	assert.False(t, v.Saved)
}

func TestCardHandler_EditDraftAndHitbox(t *testing.T) {
	router, sched := setupRouter(t)

	_, v := do(t, router, post("/api/card/edit/hitbox"))
	assert.True(t, v.Edit.Visible)
	sched.RunFrames()

	req := httptest.NewRequest(http.MethodPut, "/api/card/edit/draft",
		strings.NewReader(`{"title":"JSON Title","discount":"35"}`))
	req.Header.Set("Content-Type", "application/json")
	code, v := do(t, router, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "JSON Title", v.Edit.Draft.Title)
	assert.Equal(t, "35", v.Edit.Draft.Discount)

	_, v = do(t, router, post("/api/card/edit/hitbox"))
	assert.Equal(t, "JSON Title", v.Title)
	assert.Equal(t, "-35 %", v.Discount)
}

func TestCardHandler_DraftValidation(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/card/edit/draft",
		strings.NewReader(`{"discount":"`+strings.Repeat("9", 40)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	code, _ := do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, code)

	req = httptest.NewRequest(http.MethodPut, "/api/card/edit/draft", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	code, _ = do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCardHandler_CommitForm(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/card/edit/commit",
		strings.NewReader("title=New+Title&legal=&discount=150&valid="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	code, v := do(t, router, req)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "New Title", v.Title)
	assert.Equal(t, models.DefaultOffer().Legal, v.Legal)
	assert.Equal(t, "-100 %", v.Discount)
	assert.Equal(t, "30.11.2025", v.ValidUntil)
}

func TestCardHandler_CommitMultipartImage(t *testing.T) {
	router, sched := setupRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Kuvan kanssa"))
	part, err := mw.CreateFormFile("image", "hero.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, image.NewGray(image.Rect(0, 0, 1, 1))))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/card/edit/commit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, _ := do(t, router, req)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		sched.RunPosted()
		_, v := do(t, router, httptest.NewRequest(http.MethodGet, "/api/card", nil))
		return strings.HasPrefix(v.ImageSrc, "data:image/png;base64,") && v.Title == "Kuvan kanssa"
	}, time.Second, 5*time.Millisecond)
}

func TestCardHandler_EditResetAndCancel(t *testing.T) {
	router, sched := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/card/edit/commit",
		strings.NewReader("title=Muokattu"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, v := do(t, router, req)
	require.Equal(t, "Muokattu", v.Title)
	sched.Advance(time.Second)

	_, v = do(t, router, post("/api/card/edit/open"))
	assert.Equal(t, "Muokattu", v.Edit.Draft.Title)
	sched.RunFrames()

	_, v = do(t, router, post("/api/card/edit/cancel"))
	assert.Equal(t, models.PanelClosing, v.Edit.State)

	_, v = do(t, router, post("/api/card/edit/reset"))
	assert.Equal(t, models.DefaultOffer().Title, v.Title)
}

func TestCardHandler_Overlay(t *testing.T) {
	router, sched := setupRouter(t)

	do(t, router, post("/api/card/action"))
	sched.RunFrames()
	_, v := do(t, router, post("/api/card/overlay"))
	assert.Equal(t, models.PanelClosing, v.Confirm.State)

	do(t, router, post("/api/card/action"))
	sched.RunFrames()
	_, v = do(t, router, post("/api/card/confirm/cancel"))
	assert.Equal(t, models.PanelClosing, v.Confirm.State)
}
