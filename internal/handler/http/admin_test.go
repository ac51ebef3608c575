package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitalcosmeticos/catalog/internal/delivery"
	"github.com/vitalcosmeticos/catalog/internal/domain"
	"github.com/vitalcosmeticos/catalog/internal/export"
	"github.com/vitalcosmeticos/catalog/internal/realtime"
	apperrors "github.com/vitalcosmeticos/catalog/pkg/errors"
	"github.com/vitalcosmeticos/catalog/pkg/httpclient"
)

func sampleFolder() *domain.DigitalFolder {
	return &domain.DigitalFolder{
		ID:          folderID,
		Name:        "Pasta Ana",
		Products:    []domain.FolderProduct{domain.Snapshot(sampleProduct())},
		ClientName:  strPtr("Ana"),
		ClientPhone: strPtr("(21) 99876-5432"),
	}
}

// --- Folders ---

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("GetByIDs", mock.Anything, []string{productID}).
		Return([]domain.Product{*sampleProduct()}, nil)
	env.folders.On("Create", mock.Anything, mock.AnythingOfType("*domain.DigitalFolder")).Return(nil)

	body := map[string]any{
		"name":        "Pasta Ana",
		"product_ids": []string{productID, productID},
		"client_name": "Ana",
	}
	rec := env.do(t, http.MethodPost, "/api/v1/admin/folders", body, env.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got domain.DigitalFolder
	decodeEnvelope(t, rec, &got)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Shampoo Hidratante", got.Products[0].Name)
}

func TestCreateFolder_RequiresProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/folders",
		map[string]any{"name": "Vazia", "product_ids": []string{}}, env.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.folders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExportFolder(t *testing.T) {
	env := newTestEnv(t)
	folder := sampleFolder()
	env.folders.On("GetByID", mock.Anything, folderID).Return(folder, nil)
	env.exporter.On("Export", mock.Anything, folder, export.FormatPDF).Return(&export.Artifact{
		Filename:    export.Filename(folder.Name, export.FormatPDF),
		ContentType: export.FormatPDF.ContentType(),
		Body:        []byte("%PDF-1.3 test"),
	}, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/folders/"+folderID+"/export?format=PDF", nil, env.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Pasta_Ana_catalogo.pdf")
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
}

func TestExportFolder_UnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/folders/"+folderID+"/export?format=docx", nil, env.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.folders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestExportFolder_Failure(t *testing.T) {
	env := newTestEnv(t)
	folder := sampleFolder()
	env.folders.On("GetByID", mock.Anything, folderID).Return(folder, nil)
	env.exporter.On("Export", mock.Anything, folder, export.FormatPNG).
		Return(nil, apperrors.Internal(assert.AnError))

	rec := env.do(t, http.MethodGet, "/api/v1/admin/folders/"+folderID+"/export?format=png", nil, env.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestShareFolder(t *testing.T) {
	env := newTestEnv(t)
	env.folders.On("GetByID", mock.Anything, folderID).Return(sampleFolder(), nil)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/folders/"+folderID+"/share", nil, env.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var links []delivery.Link
	decodeEnvelope(t, rec, &links)
	require.Len(t, links, 1)
	assert.Equal(t, delivery.ChannelWhatsApp, links[0].Channel)
	assert.Contains(t, links[0].URL, "phone=5521998765432")
}

// --- Notifications ---

func TestMarkRead_DisabledFeed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/notifications/read", nil, env.token(t, domain.RoleAdmin))

	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decodeEnvelope(t, rec, nil)
	require.NotNil(t, errResp)
	assert.Equal(t, "CONFLICT", errResp.Code)
}

func TestGetSnapshot_Disabled(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/notifications", nil, env.token(t, domain.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap realtime.Snapshot
	decodeEnvelope(t, rec, &snap)
	assert.False(t, snap.Enabled)
	assert.Zero(t, snap.Unread)
}

func TestNotificationStream_SendsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	pending := []domain.Contact{
		{ID: contactID, Name: "Maria", Status: domain.ContactPending, CreatedAt: time.Now()},
	}
	env.contacts.On("CountByStatus", mock.Anything, domain.ContactPending).Return(3, nil)
	env.contacts.On("LatestByStatus", mock.Anything, domain.ContactPending, 5).Return(pending, nil)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/admin/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token(t, domain.RoleAdmin))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name
		}
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			data = payload
			break
		}
	}
	require.Equal(t, "snapshot", event)

	var snap realtime.Snapshot
	require.NoError(t, json.Unmarshal([]byte(data), &snap))
	assert.True(t, snap.Enabled)
	assert.Equal(t, 3, snap.Unread)
	require.Len(t, snap.Latest, 1)
	assert.Equal(t, contactID, snap.Latest[0].ID)

	cancel()
	assert.Eventually(t, func() bool { return env.feed.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// --- Image proxy ---

func TestImageProxy(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")

	t.Run("serves image", func(t *testing.T) {
		env := newTestEnv(t)
		env.images.On("Fetch", mock.Anything, "https://images.example.com/uploads/a.png?v=2", int64(1<<20)).
			Return(pngHeader, "", nil)

		rec := env.do(t, http.MethodGet, "/api/v1/proxy-image/uploads/a.png?v=2", nil, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
		assert.Equal(t, pngHeader, rec.Body.Bytes())
	})

	t.Run("upstream not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.images.On("Fetch", mock.Anything, "https://images.example.com/missing.png", int64(1<<20)).
			Return(nil, "", &httpclient.StatusError{URL: "https://images.example.com/missing.png", Status: http.StatusNotFound})

		rec := env.do(t, http.MethodGet, "/api/v1/proxy-image/missing.png", nil, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("upstream down", func(t *testing.T) {
		env := newTestEnv(t)
		env.images.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, "", &httpclient.StatusError{Status: http.StatusBadGateway})

		rec := env.do(t, http.MethodGet, "/api/v1/proxy-image/a.png", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		env := newTestEnv(t)
		env.images.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
			Return([]byte("<html></html>"), "text/html", nil)

		rec := env.do(t, http.MethodGet, "/api/v1/proxy-image/page.html", nil, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("path traversal", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/v1/proxy-image/a/..%2F..%2Fetc", nil, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.images.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	})
}

// --- Auth ---

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)

	env := newTestEnv(t)
	env.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(&domain.User{
		ID:           userID,
		Email:        "ana@example.com",
		Name:         "Ana",
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
	}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "ana@example.com", "password": "segredo123"}, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got authResponse
	decodeEnvelope(t, rec, &got)
	require.NotNil(t, got.Token)
	assert.NotEmpty(t, got.Token.AccessToken)

	claims, err := env.jwt.ValidateAccessToken(got.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)

	env := newTestEnv(t)
	env.users.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&domain.User{ID: userID, PasswordHash: string(hash)}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "ana@example.com", "password": "errada"}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", nil, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
