package token

import (
	"context"
	"testing"
	"time"

	"insurance-voice-agent/internal/config"
	"insurance-voice-agent/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor() Processor {
	return New(config.MediaConfig{
		APIKey:    "api-key",
		APISecret: "super-secret",
		RoomName:  "support-room",
		AgentName: "insurance-voice-agent",
	}, observability.NewLogger())
}

func TestMint_ProducesVerifiableToken(t *testing.T) {
	processor := newTestProcessor()

	signed, err := processor.Mint(context.Background(), "caller-42")
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "caller-42", claims["sub"])
	assert.Equal(t, "caller-42", claims["name"])
	assert.Equal(t, "api-key", claims["iss"])
}

func TestMint_GrantsRoomJoinWithPublication(t *testing.T) {
	processor := newTestProcessor()

	signed, err := processor.Mint(context.Background(), "caller-42")
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	video, ok := claims["video"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, "support-room", video["room"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
	assert.ElementsMatch(t, []interface{}{"camera", "microphone"}, video["canPublishSources"])
}

func TestMint_EmbedsAgentDispatch(t *testing.T) {
	processor := newTestProcessor()

	signed, err := processor.Mint(context.Background(), "caller-42")
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	roomConfig, ok := claims["roomConfig"].(map[string]interface{})
	require.True(t, ok)
	agents, ok := roomConfig["agents"].([]interface{})
	require.True(t, ok)
	require.Len(t, agents, 1)
	agent := agents[0].(map[string]interface{})
	assert.Equal(t, "insurance-voice-agent", agent["agentName"])
}

func TestMint_TokenExpiresInSixHours(t *testing.T) {
	processor := newTestProcessor()

	signed, err := processor.Mint(context.Background(), "caller-42")
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("super-secret"), nil
	})
	require.NoError(t, err)

	expiry, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), expiry.Time, time.Minute)
}

func TestMint_RejectsWrongSecret(t *testing.T) {
	processor := newTestProcessor()

	signed, err := processor.Mint(context.Background(), "caller-42")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}
