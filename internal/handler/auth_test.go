package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"license-validation-api/internal/model"
	"license-validation-api/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthApp(t *testing.T, adminPassword string) *fiber.App {
	t.Helper()
	util.InitToken("test-secret", time.Hour)

	hash := ""
	if adminPassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		require.NoError(t, err)
		hash = string(h)
	}
	InitAuth(hash)

	app := fiber.New()
	app.Post("/api/v1/auth/token", HandleIssueToken)
	return app
}

func postToken(t *testing.T, app *fiber.App, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": password})
	req, _ := http.NewRequest("POST", "/api/v1/auth/token", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleIssueToken(t *testing.T) {
	app := setupAuthApp(t, "correct-horse")

	resp := postToken(t, app, "correct-horse")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	data := envelope.Data.(map[string]interface{})
	token, ok := data["token"].(string)
	require.True(t, ok)

	subject, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestHandleIssueTokenWrongPassword(t *testing.T) {
	app := setupAuthApp(t, "correct-horse")

	resp := postToken(t, app, "battery-staple")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandleIssueTokenNotConfigured(t *testing.T) {
	app := setupAuthApp(t, "")

	resp := postToken(t, app, "anything")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
