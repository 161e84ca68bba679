package logx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextIDs(t *testing.T) {
	ctx := WithTraceID(WithRequestID(context.Background(), "r-1"), "t-1")
	require.Equal(t, "r-1", RequestID(ctx))
	require.Equal(t, "t-1", TraceID(ctx))
	require.NotSame(t, L(), WithFields(ctx))
	require.Same(t, L(), WithFields(context.Background()))
}
