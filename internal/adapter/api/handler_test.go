package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"festify-gateway/internal/adapter/store"
	"festify-gateway/internal/domain/entity"
	"festify-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Generate(ctx context.Context, prompt string) (*entity.AgentResponse, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AgentResponse), args.Error(1)
}

const greetingJSON = `{"title":"Happy Diwali","message":"Light and joy","design":"gold","interactive":"tap","cultural":"lights"}`

func newTestApp(t *testing.T, agent *MockAgent, dailyLimit int) (*fiber.App, *store.MemoryUsageStore) {
	t.Helper()
	return newTestAppAt(t, agent, dailyLimit, time.Now)
}

func newTestAppAt(t *testing.T, agent *MockAgent, dailyLimit int, now func() time.Time) (*fiber.App, *store.MemoryUsageStore) {
	t.Helper()
	usage := store.NewMemoryUsageStore()
	limiter := usecase.NewRateLimiter(usage, usecase.LimiterConfig{
		DailyLimit: dailyLimit,
		Cooldown:   12 * time.Hour,
		IdleTTL:    24 * time.Hour,
		Location:   time.UTC,
	}, nil).WithClock(now)

	app := fiber.New()
	SetupRouter(app, Handlers{
		Greeting: NewGreetingHandler(usecase.NewGreetingGenerator(agent, nil), limiter, nil),
		History:  NewHistoryHandler(usecase.NewGreetingHistory(store.NewMemoryGreetingStore()), nil),
		Mint:     NewMintHandler(usecase.NewMetadataService(nil, "", nil), usecase.NewDATMinter(nil, nil, false, nil), nil),
	}, BuildInfo{Version: "1.2.3", Env: "test"})
	return app, usage
}

func generate(t *testing.T, app *fiber.App, client, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-greeting", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", client)
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestHandleGenerate_Success(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Diwali for grandma")
	})).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestApp(t, agent, 2)

	resp, body := generate(t, app, "10.0.0.1", `{"prompt":"Diwali for grandma"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, "Happy Diwali", result["title"])
	assert.Equal(t, "lights", result["cultural"])

	usage := body["usage"].(map[string]any)
	assert.Equal(t, float64(1), usage["dailyCount"])
	assert.Equal(t, float64(2), usage["dailyLimit"])
	assert.Equal(t, float64(1), usage["remaining"])
	agent.AssertExpectations(t)
}

func TestHandleGenerate_MissingPrompt(t *testing.T) {
	agent := new(MockAgent)
	app, usage := newTestApp(t, agent, 2)

	for _, body := range []string{``, `{}`, `{"prompt":""}`, `{"prompt":42}`, `{"prompt":{"text":"x"}}`, `not json`} {
		resp, out := generate(t, app, "10.0.0.2", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Equal(t, "Missing or invalid prompt", out["error"], body)
	}
	assert.Equal(t, 0, usage.Len())
	agent.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandleGenerate_QueryPromptFallback(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestApp(t, agent, 2)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-greeting?prompt=Holi", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.3")
	resp, _ := do(t, app, req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	agent.AssertExpectations(t)
}

func TestHandleGenerate_FalsyBodyPromptFallsBackToQuery(t *testing.T) {
	for _, body := range []string{`{"prompt":0}`, `{"prompt":false}`, `{"prompt":null}`, `{"prompt":""}`} {
		t.Run(body, func(t *testing.T) {
			agent := new(MockAgent)
			agent.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
				return strings.Contains(p, "description: Diwali.")
			})).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
			app, _ := newTestApp(t, agent, 2)

			req := httptest.NewRequest(http.MethodPost, "/api/generate-greeting?prompt=Diwali", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Forwarded-For", "10.0.1.1")
			resp, _ := do(t, app, req)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			agent.AssertExpectations(t)
		})
	}
}

func TestHandleGenerate_TruthyNonStringDoesNotFallBack(t *testing.T) {
	agent := new(MockAgent)
	app, _ := newTestApp(t, agent, 2)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-greeting?prompt=Diwali", strings.NewReader(`{"prompt":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := do(t, app, req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	agent.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandleGenerate_WhitespacePromptIsAccepted(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestApp(t, agent, 2)

	resp, _ := generate(t, app, "10.0.1.2", `{"prompt":"   "}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleGenerate_RetryAfterFollowsLimiterClock(t *testing.T) {
	now := time.Date(2026, time.October, 18, 18, 0, 0, 0, time.UTC)
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestAppAt(t, agent, 1, func() time.Time { return now })

	resp, _ := generate(t, app, "10.0.1.3", `{"prompt":"Diwali"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := generate(t, app, "10.0.1.3", `{"prompt":"Diwali"}`)

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "21600", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "2026-10-19T00:00:00Z", body["nextReset"])
	assert.Equal(t, "Daily greeting limit reached. Your quota resets 6 hours from now.", body["message"])
}

func TestHandleGenerate_CooldownIs429(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestApp(t, agent, 2)

	resp, _ := generate(t, app, "10.0.0.4, 172.16.0.1", `{"prompt":"Eid"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := generate(t, app, "10.0.0.4", `{"prompt":"Eid again"}`)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.Equal(t, string(entity.ReasonCooldown), body["reason"])
	assert.NotEmpty(t, body["message"])
	assert.NotEmpty(t, body["nextAllowed"])
	assert.InDelta(t, float64((12 * time.Hour).Milliseconds()), body["remainingTime"], float64(time.Minute.Milliseconds()))

	retry, err := strconv.Atoi(resp.Header.Get(fiber.HeaderRetryAfter))
	require.NoError(t, err)
	assert.InDelta(t, (12 * time.Hour).Seconds(), float64(retry), 60)

	// A different client is unaffected.
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	resp, _ = generate(t, app, "10.0.0.5", `{"prompt":"Eid"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleGenerate_DailyLimitIs429(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	app, _ := newTestApp(t, agent, 1)

	resp, _ := generate(t, app, "10.0.0.6", `{"prompt":"New Year"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := generate(t, app, "10.0.0.6", `{"prompt":"New Year"}`)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, string(entity.ReasonDailyLimit), body["reason"])
	next, err := time.Parse(time.RFC3339, body["nextReset"].(string))
	require.NoError(t, err)
	assert.True(t, usecase.StartOfNextDay(time.Now(), time.UTC).Equal(next))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestHandleGenerate_FailureDoesNotConsumeQuota(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("upstream exploded")).Once()
	app, usage := newTestApp(t, agent, 2)

	resp, body := generate(t, app, "10.0.0.7", `{"prompt":"Christmas"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "upstream exploded")
	assert.Equal(t, 0, usage.Len())

	// The reservation was released, so the client can retry immediately.
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: greetingJSON}, nil).Once()
	resp, _ = generate(t, app, "10.0.0.7", `{"prompt":"Christmas"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleGenerate_UnparseableModelOutput(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: "no json here"}, nil).Once()
	app, usage := newTestApp(t, agent, 2)

	resp, body := generate(t, app, "10.0.0.8", `{"prompt":"Hanukkah"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, 0, usage.Len())
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name                string
		xff, realIP, remote string
		want                string
	}{
		{name: "first forwarded entry", xff: "1.1.1.1, 2.2.2.2", realIP: "3.3.3.3", remote: "4.4.4.4", want: "1.1.1.1"},
		{name: "forwarded with spaces", xff: "  5.5.5.5 ,6.6.6.6", want: "5.5.5.5"},
		{name: "real ip", realIP: "3.3.3.3", remote: "4.4.4.4", want: "3.3.3.3"},
		{name: "empty forwarded entry", xff: " , 7.7.7.7", realIP: "3.3.3.3", want: "3.3.3.3"},
		{name: "remote", remote: "4.4.4.4", want: "4.4.4.4"},
		{name: "unknown", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientID(tt.xff, tt.realIP, tt.remote))
		})
	}
}
