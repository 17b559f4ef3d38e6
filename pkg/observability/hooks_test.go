package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Flow hooks
	f := NoopFlowHooks{}
	f.OnFetchStart(ctx, "shop-app")
	f.OnFetchComplete(ctx, "shop-app", 250, time.Second, nil)
	f.OnComputeStart(ctx, "shop-app", 250)
	f.OnComputeComplete(ctx, "shop-app", 40, time.Second, nil)
	f.OnRenderStart(ctx, []string{"svg"})
	f.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "flow")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "analytics.example.com", "/v1/journeys")
	h.OnResponse(ctx, "GET", "analytics.example.com", "/v1/journeys", 200, time.Second)
	h.OnError(ctx, "GET", "analytics.example.com", "/v1/journeys", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Flow().(NoopFlowHooks); !ok {
		t.Error("Flow() should return NoopFlowHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customFlow := &testFlowHooks{}
	SetFlowHooks(customFlow)
	if Flow() != customFlow {
		t.Error("SetFlowHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Flow().(NoopFlowHooks); !ok {
		t.Error("Reset() should restore NoopFlowHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testFlowHooks{}
	SetFlowHooks(custom)

	// Setting nil should be ignored
	SetFlowHooks(nil)

	if Flow() != custom {
		t.Error("SetFlowHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testFlowHooks struct{ NoopFlowHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
