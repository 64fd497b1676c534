package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.MaxRetries = 0
	cfg.TimeoutMs = 2000
	return cfg
}

func TestSemesters_DecodesAndAuthenticates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/semesters", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "2024-09-01T00:00:00", "name": "2024-2025 Осенний семестр", "lastAiRefreshTimestamp": "2024-10-01T12:00:00"},
			{"id": "2024-02-05T00:00:00", "name": "2023-2024 Весенний семестр", "lastAiRefreshTimestamp": nil},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok-123"), NoopObserver{})
	semesters, err := client.Semesters(context.Background())
	require.NoError(t, err)
	require.Len(t, semesters, 2)

	assert.Equal(t, "2024-09-01T00:00:00", semesters[0].ID)
	require.NotNil(t, semesters[0].LastRefresh)
	assert.Equal(t, time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC), *semesters[0].LastRefresh)
	assert.Nil(t, semesters[1].LastRefresh)
	assert.Nil(t, semesters[0].Subjects, "subjects must stay unloaded until requested")
}

func TestSemesters_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("expired"), NoopObserver{})
	_, err := client.Semesters(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNoCredential_FailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens(""), NoopObserver{})
	_, err := client.Semesters(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, int32(0), hits.Load(), "no request may leave the client without a credential")
}

func TestRefreshEstimates_ServerMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "2024-09-01T00:00:00", r.URL.Query().Get("date"))

		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "no tasks to estimate"})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok"), NoopObserver{})
	_, err := client.RefreshEstimates(context.Background(), "2024-09-01T00:00:00")
	require.Error(t, err)
	assert.Equal(t, "no tasks to estimate", ServerMessage(err))
}

func TestRoundTrip_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	client := NewClient(cfg, staticTokens("tok"), NoopObserver{})

	_, err := client.Semesters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRoundTrip_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3
	client := NewClient(cfg, staticTokens("tok"), NoopObserver{})

	_, err := client.Tasks(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestStudyPlan_QueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-09-01T00:00:00", q.Get("requestDate"))
		assert.Equal(t, "true", q.Get("ignoreCompleted"))
		assert.Equal(t, "3", q.Get("dailyHours"))
		assert.Equal(t, "2024-10-15", q.Get("customPlanStartDate"))

		json.NewEncoder(w).Encode(map[string]any{
			"semesterStartDate":               "2024-09-01",
			"planStartDate":                   "2024-10-15",
			"totalTasksConsideredForPlanning": 2,
			"warnings":                        []string{"deadline passed for one task"},
			"plannedDays": []map[string]any{
				{
					"dayNumber":                    1,
					"date":                         "2024-10-15",
					"totalMinutesScheduledThisDay": 90,
					"tasks": []map[string]any{
						{
							"taskId":                       5,
							"taskName":                     "Лабораторная работа №2",
							"subjectName":                  "Физика",
							"minutesScheduledToday":        90,
							"minutesRemainingForTask":      30,
							"deadline":                     "2024-10-20T23:59:00",
							"totalEstimatedMinutesForTask": 120,
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok"), NoopObserver{})
	custom := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)
	plan, err := client.StudyPlan(context.Background(), PlanQuery{
		SemesterKey:     "2024-09-01T00:00:00",
		IgnoreCompleted: true,
		DailyHours:      3,
		CustomStart:     &custom,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), plan.SemesterStart)
	require.NotNil(t, plan.PlanStart)
	require.Len(t, plan.Days, 1)
	require.Len(t, plan.Days[0].Tasks, 1)

	alloc := plan.Days[0].Tasks[0]
	assert.Equal(t, int64(5), alloc.TaskID)
	assert.Equal(t, 90, alloc.MinutesToday)
	require.NotNil(t, alloc.TotalEstimatedMinutes)
	assert.Equal(t, 120, *alloc.TotalEstimatedMinutes)
	assert.Equal(t, []string{"deadline passed for one task"}, plan.Warnings)
}

func TestStudyPlan_OmitsOptionalParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("dailyHours"), "non-positive dailyHours must be omitted")
		assert.False(t, q.Has("customPlanStartDate"))
		json.NewEncoder(w).Encode(map[string]any{"semesterStartDate": "2024-09-01"})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok"), NoopObserver{})
	plan, err := client.StudyPlan(context.Background(), PlanQuery{SemesterKey: "2024-09-01T00:00:00"})
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

func TestStudyPlan_GarbageBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>proxy error</html>"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok"), NoopObserver{})
	_, err := client.StudyPlan(context.Background(), PlanQuery{SemesterKey: "2024-09-01T00:00:00"})
	assert.Error(t, err, "the plan fetch semantically requires data")
}

func TestInitiateParsing_ToleratesAnyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/initiate-parsing", r.URL.Path)
		w.Write([]byte("parsing started"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens("tok"), NoopObserver{})
	assert.NoError(t, client.InitiateParsing(context.Background()))
}

func TestLogin_ReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login must not send a bearer header")

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "student@sfedu.ru", req["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "email": "student@sfedu.ru", "role": "STUDENT", "token": "jwt-abc",
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens(""), NoopObserver{})
	token, err := client.Login(context.Background(), "student@sfedu.ru", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
}

func TestLogin_BadCredentialsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Неверный email или пароль"})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), staticTokens(""), NoopObserver{})
	_, err := client.Login(context.Background(), "student@sfedu.ru", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Неверный email или пароль", ServerMessage(err))
}

func TestBackendUnavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1") // nothing listens here
	client := NewClient(cfg, staticTokens("tok"), NoopObserver{})
	_, err := client.Semesters(context.Background())
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}
