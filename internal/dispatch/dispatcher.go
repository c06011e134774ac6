package dispatch

import "fmt"

type routeKey struct {
	method string
	path   string
}

// Dispatcher looks up and runs handlers from a fixed table.
//
// Thread Safety:
//   - Lookup is read-only after construction, but handlers mutate Env.State,
//     so Dispatch must only be called from the goroutine that owns the state.
type Dispatcher struct {
	env    *Env
	routes []Route
	index  map[routeKey]HandlerFunc
}

// New builds a dispatcher over DefaultRoutes.
func New(env *Env) *Dispatcher {
	d, err := NewWithRoutes(env, DefaultRoutes())
	if err != nil {
		// DefaultRoutes has no duplicates.
		panic(err)
	}
	return d
}

// NewWithRoutes builds a dispatcher over the given table.
//
// Returns:
//   - *Dispatcher: Ready dispatcher
//   - error: ErrDuplicateRoute if a method and path appear twice
func NewWithRoutes(env *Env, routes []Route) (*Dispatcher, error) {
	d := &Dispatcher{
		env:    env,
		routes: make([]Route, len(routes)),
		index:  make(map[routeKey]HandlerFunc, len(routes)),
	}
	copy(d.routes, routes)

	for _, r := range routes {
		key := routeKey{method: r.Method, path: r.Path}
		if _, exists := d.index[key]; exists {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateRoute, r.Method, r.Path)
		}
		d.index[key] = r.Handler
	}
	return d, nil
}

// Dispatch runs the handler for an exact method and path match, or returns
// NotFound. Queries and fragments must already be stripped from path.
func (d *Dispatcher) Dispatch(method, path string) Result {
	h, ok := d.index[routeKey{method: method, path: path}]
	if !ok {
		return NotFound(path)
	}
	return h(d.env)
}

// Routes returns a copy of the route table.
func (d *Dispatcher) Routes() []Route {
	out := make([]Route, len(d.routes))
	copy(out, d.routes)
	return out
}
