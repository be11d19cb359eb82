package agenttools

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"insurance-voice-agent/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_InvokeRunsRegisteredTool(t *testing.T) {
	registry := NewRegistry()
	registry.Register(ToolSearchClaims, func(ctx context.Context, sessionID string, input string) string {
		return "résultat pour " + input
	})

	output, err := registry.Invoke(context.Background(), ToolSearchClaims, "session-1", "dégât des eaux")
	require.NoError(t, err)
	assert.Equal(t, "résultat pour dégât des eaux", output)
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Invoke(context.Background(), "delete_everything", "session-1", "")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	registry.Register(ToolVerifyCode, func(ctx context.Context, sessionID string, input string) string { return "" })
	registry.Register(ToolIdentifyUser, func(ctx context.Context, sessionID string, input string) string { return "" })

	assert.Equal(t, []string{ToolIdentifyUser, ToolVerifyCode}, registry.Names())
}

func newToolRouter(registry *Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(registry, observability.NewLogger())
	router := gin.New()
	router.POST("/api/sessions/:session_id/tools/:tool_name", handler.HandleInvokeTool)
	return router
}

func TestHandleInvokeTool_ReturnsOutput(t *testing.T) {
	registry := NewRegistry()
	var gotSession, gotInput string
	registry.Register(ToolTransfer, func(ctx context.Context, sessionID string, input string) string {
		gotSession = sessionID
		gotInput = input
		return "SYSTEM: ok"
	})

	router := newToolRouter(registry)
	body, _ := json.Marshal(map[string]string{"input": "litige contrat"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/call-7/tools/transfer_to_advisor", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "call-7", gotSession)
	assert.Equal(t, "litige contrat", gotInput)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "SYSTEM: ok", resp["output"])
}

func TestHandleInvokeTool_UnknownToolIs404(t *testing.T) {
	router := newToolRouter(NewRegistry())
	body, _ := json.Marshal(map[string]string{"input": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/call-7/tools/nonexistent", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleInvokeTool_BadBodyIs400(t *testing.T) {
	registry := NewRegistry()
	registry.Register(ToolVerifyCode, func(ctx context.Context, sessionID string, input string) string { return "" })

	router := newToolRouter(registry)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/call-7/tools/verify_2fa_code", bytes.NewReader([]byte("not json")))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
