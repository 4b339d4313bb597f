package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"citoyens/internal/handlers"
	"citoyens/internal/middleware"
	"citoyens/internal/models"
	"citoyens/internal/repositories"
	"citoyens/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminUsername = "admin"
	adminPassword = "s3cret-password"
)

type testApp struct {
	app      *fiber.App
	citizens *services.CitizenService
	logs     *services.LogService
}

// setupApp sets up a Fiber app backed by an in-memory SQLite database.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	citizenService := services.NewCitizenService(repositories.NewGORMCitizenRepository(db), services.WithClock(clock))
	logService := services.NewLogService(repositories.NewGORMLogRepository(db))

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authService := services.NewAuthService(adminUsername, string(hash), "test_jwt_secret", time.Hour)

	log, _ := test.NewNullLogger()
	app := fiber.New()
	api := app.Group("/api")
	handlers.NewCitizenHandler(citizenService, log, nil, 50).RegisterRoutes(api)
	handlers.NewAuthHandler(authService, log).RegisterRoutes(api)
	handlers.NewLogHandler(logService, log).RegisterRoutes(api, middleware.AuthRequired(authService, log))

	return &testApp{app: app, citizens: citizenService, logs: logService}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, headers ...string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			jsonBody, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(jsonBody)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func citizenBody(nci string) map[string]string {
	return map[string]string{
		"nom":    "Diouf",
		"prenom": "Mor",
		"pere":   "Alioune Diouf",
		"mere":   "Fatou Sarr",
		"nci":    nci,
	}
}

func TestCreateAndGetCitizen(t *testing.T) {
	a := setupApp(t)

	status, body := a.do(t, http.MethodPost, "/api/citoyens", citizenBody("1234567890123"))
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "Diouf", data["nom"])
	assert.NotContains(t, data, "createdAt")
	assert.NotContains(t, data, "updatedAt")

	status, body = a.do(t, http.MethodGet, "/api/citoyens/1234567890123", nil)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "1234567890123", data["nci"])
	assert.Equal(t, "Mor", data["prenom"])
	assert.NotContains(t, data, "createdAt")
}

func TestCreateCitizenErrors(t *testing.T) {
	a := setupApp(t)

	status, _ := a.do(t, http.MethodPost, "/api/citoyens", citizenBody("1234567890123"))
	require.Equal(t, http.StatusCreated, status)

	// Duplicate NCI
	status, body := a.do(t, http.MethodPost, "/api/citoyens", citizenBody("1234567890123"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid data", body["error"])

	// Invalid fields
	invalid := citizenBody("12345")
	invalid["nom"] = "D"
	status, body = a.do(t, http.MethodPost, "/api/citoyens", invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, body["errors"], 2)

	// Malformed body
	status, body = a.do(t, http.MethodPost, "/api/citoyens", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestGetCitizenByNCIErrors(t *testing.T) {
	a := setupApp(t)

	status, body := a.do(t, http.MethodGet, "/api/citoyens/12345", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid NCI format", body["error"])

	status, body = a.do(t, http.MethodGet, "/api/citoyens/0000000000000", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Citizen not found", body["error"])
}

func TestListCitizens(t *testing.T) {
	a := setupApp(t)

	for i := 0; i < 5; i++ {
		status, _ := a.do(t, http.MethodPost, "/api/citoyens", citizenBody(fmt.Sprintf("300000000000%d", i)))
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := a.do(t, http.MethodGet, "/api/citoyens?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "3000000000004", data[0].(map[string]interface{})["nci"])
	assert.Equal(t, "3000000000003", data[1].(map[string]interface{})["nci"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["limit"])
	assert.Equal(t, float64(0), pagination["offset"])
	assert.Equal(t, float64(2), pagination["count"])

	status, body = a.do(t, http.MethodGet, "/api/citoyens?offset=4", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(50), body["pagination"].(map[string]interface{})["limit"])

	status, _ = a.do(t, http.MethodGet, "/api/citoyens?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpdateCitizen(t *testing.T) {
	a := setupApp(t)

	_, body := a.do(t, http.MethodPost, "/api/citoyens", citizenBody("1234567890123"))
	id := body["data"].(map[string]interface{})["id"].(string)
	_, _ = a.do(t, http.MethodPost, "/api/citoyens", citizenBody("9876543210987"))

	status, body := a.do(t, http.MethodPut, "/api/citoyens/"+id, map[string]string{"prenom": "Cheikh"})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Cheikh", data["prenom"])
	assert.Equal(t, "Diouf", data["nom"])

	// Unknown field
	status, body = a.do(t, http.MethodPut, "/api/citoyens/"+id, map[string]string{"createdAt": "2020-01-01"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["message"], "createdAt")

	// NCI of another citizen
	status, _ = a.do(t, http.MethodPut, "/api/citoyens/"+id, map[string]string{"nci": "9876543210987"})
	assert.Equal(t, http.StatusBadRequest, status)

	// Invalid merged record
	status, _ = a.do(t, http.MethodPut, "/api/citoyens/"+id, map[string]string{"nom": "X"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPut, "/api/citoyens/unknown-id", map[string]string{"prenom": "Cheikh"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Citizen not found", body["error"])
}

func TestDeleteCitizen(t *testing.T) {
	a := setupApp(t)

	_, body := a.do(t, http.MethodPost, "/api/citoyens", citizenBody("1234567890123"))
	id := body["data"].(map[string]interface{})["id"].(string)

	status, body := a.do(t, http.MethodDelete, "/api/citoyens/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = a.do(t, http.MethodGet, "/api/citoyens/1234567890123", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, http.MethodDelete, "/api/citoyens/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLoginAndLogs(t *testing.T) {
	a := setupApp(t)
	ctx := t.Context()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, a.logs.Record(ctx, models.LogEntry{Timestamp: base, StatusCode: 201, ResponseTimeMs: 4, Success: true, Level: "success", Service: "citoyens", Action: "create_citoyen"}))
	require.NoError(t, a.logs.Record(ctx, models.LogEntry{Timestamp: base.Add(time.Minute), StatusCode: 404, ResponseTimeMs: 2, Level: "warning", Service: "citoyens", Action: "get_citoyen"}))

	// No token
	status, body := a.do(t, http.MethodGet, "/api/logs", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])

	// Wrong password
	status, _ = a.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": adminUsername, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Missing password
	status, _ = a.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": adminUsername})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = a.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": adminUsername, "password": adminPassword})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	status, body = a.do(t, http.MethodGet, "/api/logs", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, float64(404), data[0].(map[string]interface{})["statusCode"])

	status, body = a.do(t, http.MethodGet, "/api/logs?level=success", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = a.do(t, http.MethodGet, "/api/logs?level=fatal", nil, fiber.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, http.MethodGet, "/api/logs?start=yesterday", nil, fiber.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, status)

	// 01:00:30+01:00 is 00:00:30Z, between the two entries
	status, body = a.do(t, http.MethodGet, "/api/logs?start=2025-02-01T01:00:30%2B01:00", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(404), data[0].(map[string]interface{})["statusCode"])

	status, body = a.do(t, http.MethodGet, "/api/logs?end=2025-02-01T01:00:30%2B01:00", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	data = body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(201), data[0].(map[string]interface{})["statusCode"])

	status, body = a.do(t, http.MethodGet, "/api/logs?start=2025-02-01T00:00:00Z&end=2025-02-01T00:05:00Z", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, body = a.do(t, http.MethodGet, "/api/logs/stats", nil, fiber.HeaderAuthorization, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)
	stats := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(1), stats["warnings"])
	assert.Equal(t, float64(3), stats["averageResponseTime"])
}
