package providers

import (
	"net/http"
	"sort"
	"strings"
	"surveycore/internal/structures"
)

// Middleware wraps a handler, e.g. the tenant auth check on report routes.
type Middleware func(http.Handler) http.Handler

type RouterProviderInterface interface {
	Get(url string, handler http.Handler, mw ...Middleware)
	Post(url string, handler http.Handler, mw ...Middleware)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	order    []string
	handlers map[string]map[string]http.Handler
}

func (rp *RouterProvider) Get(url string, handler http.Handler, mw ...Middleware) {
	rp.add(http.MethodGet, url, handler, mw)
}

func (rp *RouterProvider) Post(url string, handler http.Handler, mw ...Middleware) {
	rp.add(http.MethodPost, url, handler, mw)
}

func (rp *RouterProvider) add(method, url string, handler http.Handler, mw []Middleware) {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	byMethod, ok := rp.handlers[url]
	if !ok {
		byMethod = make(map[string]http.Handler, 2)
		rp.handlers[url] = byMethod
		rp.order = append(rp.order, url)
	}
	byMethod[method] = handler
}

// GetRoutes returns one route per URL in registration order; each route
// dispatches on the request method.
func (rp *RouterProvider) GetRoutes() []structures.Route {
	routes := make([]structures.Route, 0, len(rp.order))
	for _, url := range rp.order {
		routes = append(routes, structures.Route{
			Url:     url,
			Handler: methodHandler(rp.handlers[url]),
		})
	}
	return routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{handlers: make(map[string]map[string]http.Handler)}
}

func methodHandler(byMethod map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(byMethod))
	for m := range byMethod {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
