package mcp

import (
	"context"

	"github.com/unity-tools/unity-mcp/pkg/unity"
)

// ContextKey is the type for context keys used by this package
type ContextKey string

// TestUnityClientKey is the context key for injecting a mock Unity
// client in tests
const TestUnityClientKey ContextKey = "test-unity-client"

// resolveUnityClient returns the Unity client for a request: the
// injected test client when one is present in the context, otherwise
// the shared process-wide connection. Returns nil when neither is
// available.
func resolveUnityClient(ctx context.Context, opts UnityMCPOptions) unity.Client {
	if testClient := ctx.Value(TestUnityClientKey); testClient != nil {
		if client, ok := testClient.(unity.Client); ok {
			return client
		}
	}
	if opts.Conn != nil {
		return opts.Conn
	}
	return nil
}
