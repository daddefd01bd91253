package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
)

func seedStore(t *testing.T) (*repository.MemoryStore, uuid.UUID) {
	t.Helper()
	store := repository.NewMemoryStore()

	total := 72.5
	entity := &models.OpportunityEntity{
		ID:     uuid.New(),
		Status: models.EntityActive,
		Canonical: models.Listing{
			SourceID:   "acquire",
			ExternalID: "123",
			Title:      "B2B Analytics SaaS",
			Category:   "SaaS",
			ObservedAt: time.Now(),
		},
		LastScore:   &models.ScoreResult{Total: &total},
		FirstSeenAt: time.Now().Add(-48 * time.Hour),
		LastSeenAt:  time.Now(),
	}
	require.NoError(t, store.Save(entity))

	low := 12.0
	weak := &models.OpportunityEntity{
		ID:     uuid.New(),
		Status: models.EntityStale,
		Canonical: models.Listing{
			SourceID:   "microns",
			ExternalID: "tx-9",
			Title:      "Tiny newsletter",
			Category:   "Newsletter",
			ObservedAt: time.Now(),
		},
		LastScore:   &models.ScoreResult{Total: &low},
		FirstSeenAt: time.Now().Add(-200 * time.Hour),
		LastSeenAt:  time.Now().Add(-100 * time.Hour),
	}
	require.NoError(t, store.Save(weak))

	require.NoError(t, store.Record(&models.ScoredOpportunityEvent{
		EntityID:   entity.ID,
		Kind:       models.EventNew,
		Snapshot:   entity.Canonical,
		OccurredAt: time.Now(),
	}))

	return store, entity.ID
}

func newTestRouter(store *repository.MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOpportunitiesHandler(store.Repositories())
	r.GET("/opportunities", h.GetOpportunities)
	r.GET("/opportunities/:id", h.GetOpportunity)
	r.GET("/opportunities/:id/events", h.GetOpportunityEvents)
	r.GET("/events", h.GetRecentEvents)
	return r
}

func TestGetOpportunities(t *testing.T) {
	store, _ := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestGetOpportunities_MinScoreFilter(t *testing.T) {
	store, _ := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities?min_score=50", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count         int                        `json:"count"`
		Opportunities []models.OpportunityEntity `json:"opportunities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "B2B Analytics SaaS", body.Opportunities[0].Canonical.Title)
}

func TestGetOpportunities_BadMinScore(t *testing.T) {
	store, _ := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities?min_score=lots", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOpportunity(t *testing.T) {
	store, id := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities/"+id.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	var entity models.OpportunityEntity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entity))
	assert.Equal(t, id, entity.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOpportunityEvents(t *testing.T) {
	store, id := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/opportunities/"+id.String()+"/events", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count  int                             `json:"count"`
		Events []models.ScoredOpportunityEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, models.EventNew, body.Events[0].Kind)
}

func TestGetRecentEvents_KindFilter(t *testing.T) {
	store, _ := seedStore(t)
	router := newTestRouter(store)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/events?kind=SCORE_CHANGED", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
}
