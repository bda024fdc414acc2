package api

import (
	"context"
	"testing"
)

func TestDispatchExactMatch(t *testing.T) {
	d := NewDispatcher()

	calls := map[string]int{}
	d.Handle("GET", "/a", func(ctx context.Context, req RawRequest) Response {
		calls["GET /a"]++
		return textResponse(200, "a")
	})
	d.Handle("POST", "/a", func(ctx context.Context, req RawRequest) Response {
		calls["POST /a"]++
		return textResponse(201, "posted")
	})

	resp := d.Dispatch(context.Background(), RawRequest{Method: "POST", Path: "/a"})
	if resp.Status != 201 || string(resp.Body) != "posted" {
		t.Errorf("Expected 201 posted, got %d %q", resp.Status, resp.Body)
	}
	if calls["POST /a"] != 1 || calls["GET /a"] != 0 {
		t.Errorf("Expected exactly one POST handler call, got %v", calls)
	}
}

func TestDispatchUnmatched(t *testing.T) {
	d := NewDispatcher()
	d.Handle("GET", "/", func(ctx context.Context, req RawRequest) Response {
		t.Errorf("Handler should not be invoked")
		return Response{}
	})

	for _, req := range []RawRequest{
		{Method: "PUT", Path: "/"},
		{Method: "GET", Path: "/missing"},
		{Method: "GET", Path: ""},
		{Method: "get", Path: "/"},
		{Method: "GET", Path: "/location/"},
	} {
		resp := d.Dispatch(context.Background(), req)
		if resp.Status != 404 {
			t.Errorf("%s %q: expected 404, got %d", req.Method, req.Path, resp.Status)
		}
		if len(resp.Body) != 0 {
			t.Errorf("%s %q: expected empty body, got %q", req.Method, req.Path, resp.Body)
		}
	}
}

func TestDispatchPropagatesPanic(t *testing.T) {
	d := NewDispatcher()
	d.Handle("GET", "/boom", func(ctx context.Context, req RawRequest) Response {
		panic("boom")
	})

	defer func() {
		if recover() == nil {
			t.Errorf("Expected handler panic to propagate")
		}
	}()
	d.Dispatch(context.Background(), RawRequest{Method: "GET", Path: "/boom"})
}
