package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsight/pestscan/internal/i18n"
	"github.com/farmsight/pestscan/internal/repository"
)

func feedbackResolver() *i18n.Resolver {
	return i18n.NewResolver(map[i18n.Locale]i18n.Bundle{
		i18n.LocaleEN: {"feedback": map[string]any{"thanks": "Thank you for your feedback!"}},
		i18n.LocaleSW: {"feedback": map[string]any{"thanks": "Asante kwa maoni yako!"}},
	})
}

func newFeedbackFixture() (*FeedbackHandler, *fakeFeedbacks) {
	fbs := newFakeFeedbacks()
	fbs.scanOwner[10] = 1 // scan 10 belongs to user 1
	fbs.scanOwner[20] = 2 // scan 20 belongs to user 2
	pests := &fakePests{entries: map[string][]repository.CatalogEntry{
		"en": {{ID: 1, DisplayName: "Fall Armyworm"}},
		"sw": {{ID: 1, DisplayName: "Viwavi jeshi"}},
	}}
	return NewFeedbackHandler(fbs, pests, feedbackResolver()), fbs
}

func TestSubmitFeedback_OwnScan(t *testing.T) {
	h, fbs := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 10, "is_correct": false, "actual_pest_name": "Cutworm"}, 1)
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Thank you for your feedback!", decodeBody(t, rec)["message"])

	require.Len(t, fbs.rows, 1)
	assert.Equal(t, uint64(1), fbs.rows[0].UserID)
	assert.Equal(t, uint64(10), fbs.rows[0].ScanID)
	require.NotNil(t, fbs.rows[0].ActualPestName)
	assert.Equal(t, "Cutworm", *fbs.rows[0].ActualPestName)
}

func TestSubmitFeedback_LocalizedMessage(t *testing.T) {
	h, _ := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 10, "is_correct": true}, 1)
	c.Set("lang", "sw")
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asante kwa maoni yako!", decodeBody(t, rec)["message"])
}

func TestSubmitFeedback_ForeignScanRejected(t *testing.T) {
	h, fbs := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 20, "is_correct": true}, 1)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	// No row was created for the rejected attempt.
	assert.Empty(t, fbs.rows)
}

func TestSubmitFeedback_UnknownScan(t *testing.T) {
	h, fbs := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 999, "is_correct": true}, 1)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, fbs.rows)
}

func TestSubmitFeedback_MissingScanID(t *testing.T) {
	h, _ := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"is_correct": true}, 1)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitFeedback_BlankPestNameDropped(t *testing.T) {
	h, fbs := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 10, "is_correct": false, "actual_pest_name": "   "}, 1)
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, fbs.rows, 1)
	assert.Nil(t, fbs.rows[0].ActualPestName)
}

func TestSubmitFeedback_Unauthorized(t *testing.T) {
	h, _ := newFeedbackFixture()
	c, rec := jsonCtx(t, http.MethodPost, "/v1/feedback",
		map[string]any{"scan_id": 10, "is_correct": true}, 0)
	require.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPests_LocalizedCatalog(t *testing.T) {
	h, _ := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodGet, "/v1/pests", nil, 0)
	c.Set("lang", "sw")
	require.NoError(t, h.Pests(c))
	require.Equal(t, http.StatusOK, rec.Code)
	pests := decodeBody(t, rec)["pests"].([]any)
	require.Len(t, pests, 1)
	assert.Equal(t, "Viwavi jeshi", pests[0].(map[string]any)["common_name"])
}

func TestPests_DefaultLanguage(t *testing.T) {
	h, _ := newFeedbackFixture()

	c, rec := jsonCtx(t, http.MethodGet, "/v1/pests", nil, 0)
	require.NoError(t, h.Pests(c))
	require.Equal(t, http.StatusOK, rec.Code)
	pests := decodeBody(t, rec)["pests"].([]any)
	require.Len(t, pests, 1)
	assert.Equal(t, "Fall Armyworm", pests[0].(map[string]any)["common_name"])
}

// Pins the handler shape: the catalog store lives on the Catalog
// field and the Pests endpoint reads through it.
func TestFeedbackHandler_CatalogField(t *testing.T) {
	h := &FeedbackHandler{Catalog: &fakePests{entries: map[string][]repository.CatalogEntry{
		"en": {{ID: 3, DisplayName: "Stem Borer"}},
	}}}

	c, rec := jsonCtx(t, http.MethodGet, "/v1/pests", nil, 0)
	require.NoError(t, h.Pests(c))
	require.Equal(t, http.StatusOK, rec.Code)
	pests := decodeBody(t, rec)["pests"].([]any)
	require.Len(t, pests, 1)
	assert.Equal(t, "Stem Borer", pests[0].(map[string]any)["common_name"])
}

var (
	_ FeedbackStore = (*fakeFeedbacks)(nil)
	_ PestStore     = (*fakePests)(nil)
)
