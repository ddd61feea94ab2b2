package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsight/pestscan/internal/repository"
)

func newAccountFixture(t *testing.T) (*AccountHandler, *fakeUsers) {
	t.Helper()
	users := newFakeUsers()
	phone := "+254700000001"
	_, err := users.Create(context.Background(), repository.RegisterParams{
		Email: "amina@farm.example", Password: "pw123456", Name: "Amina", Phone: &phone,
	}, 4)
	require.NoError(t, err)
	return NewAccountHandler(testCfg(), users), users
}

func TestUpdateProfile_Partial(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/profile",
		map[string]any{"farm_name": "Green Acres", "crops": []string{" maize ", "beans", ""}}, 1)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "Green Acres", user["farm_name"])
	assert.Equal(t, []any{"maize", "beans"}, user["crops"].([]any))
	// Untouched fields survive.
	assert.Equal(t, "Amina", users.byID[1].Name)
	assert.Equal(t, "+254700000001", *users.byID[1].Phone)
}

func TestUpdateProfile_EmptyNameRejected(t *testing.T) {
	h, _ := newAccountFixture(t)
	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/profile",
		map[string]any{"name": "   "}, 1)
	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfile_DuplicatePhone(t *testing.T) {
	h, users := newAccountFixture(t)
	other := "+254700000002"
	_, err := users.Create(context.Background(), repository.RegisterParams{
		Email: "juma@farm.example", Password: "pw123456", Name: "Juma", Phone: &other,
	}, 4)
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/profile",
		map[string]any{"phone": "+254700000002"}, 1)
	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdatePreferences(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/preferences",
		map[string]any{"language": "hi", "units": "Imperial", "theme": "forest"}, 1)
	require.NoError(t, h.UpdatePreferences(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "hi", users.byID[1].Language)
	assert.Equal(t, "imperial", users.byID[1].Units)
	assert.Equal(t, "forest", users.byID[1].Theme)
}

func TestUpdatePreferences_Invalid(t *testing.T) {
	h, _ := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/preferences",
		map[string]any{"language": "fr", "units": "metric"}, 1)
	require.NoError(t, h.UpdatePreferences(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = jsonCtx(t, http.MethodPut, "/v1/account/preferences",
		map[string]any{"language": "en", "units": "furlongs"}, 1)
	require.NoError(t, h.UpdatePreferences(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePreferences_DefaultTheme(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/preferences",
		map[string]any{"language": "sw", "units": "metric"}, 1)
	require.NoError(t, h.UpdatePreferences(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emerald", users.byID[1].Theme)
}

func TestUpdateNotifications(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/notifications",
		map[string]any{"email": false, "push": true}, 1)
	require.NoError(t, h.UpdateNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, users.byID[1].NotificationEmail)
	assert.True(t, users.byID[1].NotificationPush)
}

func TestChangePassword(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/password",
		map[string]any{"current_password": "pw123456", "new_password": "pw654321"}, 1)
	require.NoError(t, h.ChangePassword(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pw654321", users.pw[1])
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodPut, "/v1/account/password",
		map[string]any{"current_password": "nope", "new_password": "pw654321"}, 1)
	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "wrong current password", decodeBody(t, rec)["error"])
	assert.Equal(t, "pw123456", users.pw[1])
}

func TestDeleteAccount(t *testing.T) {
	h, users := newAccountFixture(t)

	c, rec := jsonCtx(t, http.MethodDelete, "/v1/account", nil, 1)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, users.byID)

	// A second delete finds nothing.
	c, rec = jsonCtx(t, http.MethodDelete, "/v1/account", nil, 1)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
