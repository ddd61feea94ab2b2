package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/farmsight/pestscan/internal/config"
	"github.com/farmsight/pestscan/internal/model"
	"github.com/farmsight/pestscan/internal/repository"
)

// In-memory fakes standing in for the MySQL-backed repositories, so
// handler behavior is tested without a database.

func testCfg() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4, // bcrypt.MinCost; keep test hashing fast
	}
}

// ----- users -----

type fakeUsers struct {
	nextID uint64
	byID   map[uint64]model.User
	pw     map[uint64]string // plaintext; hashing is the real repo's concern
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}, pw: map[uint64]string{}}
}

func (f *fakeUsers) Create(_ context.Context, p repository.RegisterParams, _ int) (uint64, error) {
	for _, u := range f.byID {
		if u.Email == p.Email {
			return 0, repository.ErrEmailExists
		}
		if p.Phone != nil && u.Phone != nil && *u.Phone == *p.Phone {
			return 0, repository.ErrPhoneExists
		}
	}
	f.nextID++
	f.byID[f.nextID] = model.User{
		ID:                f.nextID,
		Email:             p.Email,
		Phone:             p.Phone,
		Name:              p.Name,
		Location:          p.Location,
		Language:          "en",
		Units:             "metric",
		Theme:             "emerald",
		NotificationEmail: true,
		NotificationPush:  true,
		CreatedAt:         time.Now().UTC(),
		IsActive:          true,
	}
	f.pw[f.nextID] = p.Password
	return f.nextID, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, identifier, password string) (model.User, error) {
	for id, u := range f.byID {
		match := u.Email == identifier || (u.Phone != nil && *u.Phone == identifier)
		if !match {
			continue
		}
		if !u.IsActive || f.pw[id] != password {
			return model.User{}, repository.ErrInvalidCredentials
		}
		return u, nil
	}
	return model.User{}, repository.ErrInvalidCredentials
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uint64, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, p repository.ProfileUpdate) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		for oid, other := range f.byID {
			if oid != id && other.Phone != nil && *other.Phone == *p.Phone {
				return model.User{}, repository.ErrPhoneExists
			}
		}
		u.Phone = p.Phone
	}
	if p.Location != nil {
		u.Location = p.Location
	}
	if p.FarmName != nil {
		u.FarmName = p.FarmName
	}
	if p.FarmSize != nil {
		u.FarmSize = p.FarmSize
	}
	if p.Crops != nil {
		u.Crops = model.JoinCrops(p.Crops)
	}
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) UpdatePreferences(_ context.Context, id uint64, language, units, theme string) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.Language, u.Units, u.Theme = language, units, theme
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) UpdateNotifications(_ context.Context, id uint64, emailOn, pushOn bool) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	u.NotificationEmail, u.NotificationPush = emailOn, pushOn
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) ChangePassword(_ context.Context, id uint64, current, next string, _ int) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	if f.pw[id] != current {
		return repository.ErrWrongPassword
	}
	f.pw[id] = next
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.pw, id)
	return nil
}

// ----- refresh tokens -----

type tokenRec struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type fakeTokens struct {
	byHash map[string]*tokenRec
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]*tokenRec{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	f.byHash[tokenHash] = &tokenRec{userID: userID, exp: exp}
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	rec, ok := f.byHash[tokenHash]
	if !ok || rec.revoked || time.Now().UTC().After(rec.exp) {
		return 0, sql.ErrNoRows
	}
	return rec.userID, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	if rec, ok := f.byHash[tokenHash]; ok {
		rec.revoked = true
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, rec := range f.byHash {
		if rec.userID == userID {
			rec.revoked = true
		}
	}
	return nil
}

func (f *fakeTokens) active(userID uint64) int {
	n := 0
	for _, rec := range f.byHash {
		if rec.userID == userID && !rec.revoked {
			n++
		}
	}
	return n
}

// ----- scans -----

type fakeScans struct {
	nextID uint64
	rows   []model.Scan
}

func (f *fakeScans) Create(_ context.Context, s model.Scan) (model.Scan, error) {
	f.nextID++
	s.ID = f.nextID
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Confidence < 0 {
		s.Confidence = 0
	} else if s.Confidence > 100 {
		s.Confidence = 100
	}
	f.rows = append(f.rows, s)
	return s, nil
}

func (f *fakeScans) GetByIDForUser(_ context.Context, userID, id uint64) (model.Scan, error) {
	for _, s := range f.rows {
		if s.ID == id && s.UserID == userID {
			return s, nil
		}
	}
	return model.Scan{}, repository.ErrScanNotFound
}

func (f *fakeScans) ListByUser(_ context.Context, userID uint64) ([]model.Scan, error) {
	var out []model.Scan
	for _, s := range f.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeScans) StatsByUser(_ context.Context, userID uint64) (repository.UserStats, error) {
	var st repository.UserStats
	for _, s := range f.rows {
		if s.UserID != userID {
			continue
		}
		st.TotalScans++
		st.AvgConfidence += s.Confidence
		if s.Status == "Healthy" {
			st.HealthyScans++
		} else {
			st.PestsDetected++
		}
	}
	if st.TotalScans > 0 {
		st.AvgConfidence /= float64(st.TotalScans)
		st.HealthyPct = float64(st.HealthyScans) / float64(st.TotalScans) * 100
	}
	return st, nil
}

func (f *fakeScans) TrendByUser(_ context.Context, userID uint64, since time.Time) ([]repository.TrendBucket, error) {
	counts := map[string]int{}
	for _, s := range f.rows {
		if s.UserID == userID && s.Status == "Pest Damaged" && !s.CreatedAt.Before(since) {
			counts[s.CreatedAt.Format("2006-01")]++
		}
	}
	var out []repository.TrendBucket
	for m, n := range counts {
		out = append(out, repository.TrendBucket{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// ----- feedback -----

type fakeFeedbacks struct {
	scanOwner map[uint64]uint64 // scan ID -> owner
	nextID    uint64
	rows      []model.Feedback
}

func newFakeFeedbacks() *fakeFeedbacks {
	return &fakeFeedbacks{scanOwner: map[uint64]uint64{}}
}

func (f *fakeFeedbacks) Create(_ context.Context, userID uint64, p repository.FeedbackParams) (model.Feedback, error) {
	owner, ok := f.scanOwner[p.ScanID]
	if !ok {
		return model.Feedback{}, repository.ErrScanNotFound
	}
	if owner != userID {
		return model.Feedback{}, repository.ErrNotOwner
	}
	f.nextID++
	fb := model.Feedback{
		ID:                   f.nextID,
		UserID:               userID,
		ScanID:               p.ScanID,
		IsCorrect:            p.IsCorrect,
		ActualPestName:       p.ActualPestName,
		ActualPestScientific: p.ActualPestScientific,
		Notes:                p.Notes,
		Helpful:              p.Helpful,
		CreatedAt:            time.Now().UTC(),
	}
	f.rows = append(f.rows, fb)
	return fb, nil
}

// ----- pest catalog -----

type fakePests struct {
	entries map[string][]repository.CatalogEntry // lang -> localized list
}

func (f *fakePests) List(_ context.Context, lang string) ([]repository.CatalogEntry, error) {
	if e, ok := f.entries[lang]; ok {
		return e, nil
	}
	return f.entries["en"], nil
}

// ----- request plumbing -----

// jsonCtx builds an echo context carrying a JSON body and, when
// userID is non-zero, the identity the JWT middleware would have set.
func jsonCtx(t *testing.T, method, target string, body any, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}
