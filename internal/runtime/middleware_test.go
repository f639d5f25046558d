package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

// gridBuildStub simulates a dashboard build taking the given time. It honors
// context cancellation the way the real builder does via excelize reads.
func gridBuildStub(d time.Duration) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		select {
		case <-time.After(d):
			return mcp.NewToolResultText("grid_rows=4 products=2 periods=2 truncated=false"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func gridCallRequest() mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "build_metrics_grid"
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestToolMiddleware_FastBuildPassesThrough(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 200 * time.Millisecond
	limits.AcquireRequestTimeout = 50 * time.Millisecond

	mw := NewMiddleware(NewController(limits))
	wrapped := mw.ToolMiddleware(gridBuildStub(0))

	res, err := wrapped(context.Background(), gridCallRequest())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.False(t, res.IsError)
	require.Contains(t, resultText(t, res), "grid_rows=4")
}

func TestToolMiddleware_BusyWhenSaturated(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.AcquireRequestTimeout = 10 * time.Millisecond

	ctrl := NewController(limits)
	// Hold the only request slot, as a long-running build would.
	require.NoError(t, ctrl.AcquireRequest(context.Background()))
	defer ctrl.ReleaseRequest()

	mw := NewMiddleware(ctrl)
	wrapped := mw.ToolMiddleware(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.Fatal("handler must not run while the request slot is held")
		return nil, nil
	})

	res, err := wrapped(context.Background(), gridCallRequest())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "BUSY_RESOURCE")
}

func TestToolMiddleware_SlowBuildTimesOut(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 20 * time.Millisecond
	limits.AcquireRequestTimeout = 20 * time.Millisecond

	mw := NewMiddleware(NewController(limits))
	wrapped := mw.ToolMiddleware(gridBuildStub(time.Second))

	res, err := wrapped(context.Background(), gridCallRequest())
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.IsError)
	require.Contains(t, resultText(t, res), "TIMEOUT")
}

func TestToolMiddleware_ReleasesSlotBetweenCalls(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 200 * time.Millisecond
	limits.AcquireRequestTimeout = 20 * time.Millisecond

	mw := NewMiddleware(NewController(limits))
	wrapped := mw.ToolMiddleware(gridBuildStub(0))

	// Back-to-back builds through a single slot must both get through.
	for i := 0; i < 2; i++ {
		res, err := wrapped(context.Background(), gridCallRequest())
		require.NoError(t, err)
		require.False(t, res.IsError, "call %d", i)
	}
}
