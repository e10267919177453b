package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"festify-gateway/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAgent is a mock type for the Agent interface
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

const diwaliJSON = `{"title":"Happy Diwali","message":"May the lights bring joy","design":"Golden diyas","interactive":"Tap to light","cultural":"Festival of lights"}`

func TestGreetingGenerator_SendsInstruction(t *testing.T) {
	agent := new(MockAgent)
	want := "Create a festival greeting based on this description: Diwali for grandma. Respond ONLY with a JSON object with keys: title, message, design, interactive, cultural."
	agent.On("Generate", mock.Anything, want).Return(&entity.AgentResponse{Content: diwaliJSON}, nil).Once()

	gen := NewGreetingGenerator(agent, nil)
	got, err := gen.Generate(context.Background(), "Diwali for grandma")

	require.NoError(t, err)
	assert.Equal(t, "Happy Diwali", got.Title)
	assert.Equal(t, "Festival of lights", got.Cultural)
	agent.AssertExpectations(t)
}

func TestGreetingGenerator_Deterministic(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: "Sure!\n" + diwaliJSON}, nil).Twice()

	gen := NewGreetingGenerator(agent, nil)
	first, err := gen.Generate(context.Background(), "Diwali")
	require.NoError(t, err)
	second, err := gen.Generate(context.Background(), "Diwali")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	agent.AssertNumberOfCalls(t, "Generate", 2)
}

func TestGreetingGenerator_AgentErrorIsGenerationFailed(t *testing.T) {
	agent := new(MockAgent)
	upstream := errors.New("503 overloaded")
	agent.On("Generate", mock.Anything, mock.Anything).Return(nil, upstream).Once()

	_, err := NewGreetingGenerator(agent, nil).Generate(context.Background(), "Eid")

	assert.ErrorIs(t, err, entity.ErrGenerationFailed)
	assert.ErrorIs(t, err, upstream)
	// No retry on failure.
	agent.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGreetingGenerator_UnparseableResponse(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{Content: "I cannot help with that."}, nil).Once()

	_, err := NewGreetingGenerator(agent, nil).Generate(context.Background(), "Holi")

	assert.ErrorIs(t, err, entity.ErrNoJSONObject)
	assert.ErrorIs(t, err, entity.ErrGenerationFailed)
}

func TestGreetingGenerator_EmptyPrompt(t *testing.T) {
	agent := new(MockAgent)

	_, err := NewGreetingGenerator(agent, nil).Generate(context.Background(), "")

	assert.ErrorIs(t, err, entity.ErrInvalidRequest)
	agent.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGreetingGenerator_NonStringFieldsKeepJSONText(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, mock.Anything).Return(&entity.AgentResponse{
		Content: `{"title":"T","message":"M","design":{"palette":["gold"]},"interactive":["tap","swipe"]}`,
	}, nil).Once()

	got, err := NewGreetingGenerator(agent, nil).Generate(context.Background(), "New Year")

	require.NoError(t, err)
	assert.Equal(t, `{"palette":["gold"]}`, got.Design)
	assert.Equal(t, `["tap","swipe"]`, got.Interactive)
	assert.Equal(t, "", got.Cultural)
}

type slowAgent struct{}

func (slowAgent) Generate(ctx context.Context, _ string) (*entity.AgentResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBoundedAgent_TimesOut(t *testing.T) {
	bounded := NewBoundedAgent(slowAgent{}, 20*time.Millisecond)

	start := time.Now()
	_, err := bounded.Generate(context.Background(), "x")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBoundedAgent_FillsLatency(t *testing.T) {
	agent := new(MockAgent)
	agent.On("Generate", mock.Anything, "x").Return(&entity.AgentResponse{Content: "{}"}, nil).Once()

	resp, err := NewBoundedAgent(agent, time.Second).Generate(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Content)
	assert.GreaterOrEqual(t, resp.Latency, time.Duration(0))
}
