package api

import (
	"context"
)

type HandlerFunc func(ctx context.Context, req RawRequest) Response

type route struct {
	method string
	path   string
}

// Dispatcher routes on an exact (method, path) match. Handlers are not
// wrapped: a panic propagates to the transport.
type Dispatcher struct {
	routes map[route]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{routes: make(map[route]HandlerFunc)}
}

func (d *Dispatcher) Handle(method, path string, h HandlerFunc) {
	d.routes[route{method: method, path: path}] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, req RawRequest) Response {
	h, ok := d.routes[route{method: req.Method, path: req.Path}]
	if !ok {
		return notFound()
	}
	return h(ctx, req)
}
