package client

import (
	"strings"
)

// View names the screens the application can show.
type View string

const (
	ViewHome       View = "home"
	ViewItems      View = "items"
	ViewItemDetail View = "itemDetail"
	ViewCreateItem View = "createItem"
	ViewEditItem   View = "editItem"
	ViewAbout      View = "about"
)

// Match is the result of resolving a path: the view to show, extracted path
// parameters, and, when an auth gate bounced the navigation, the path to
// return to after signing in.
type Match struct {
	View     View
	Params   map[string]string
	Redirect string
}

type route struct {
	segments     []string
	view         View
	requiresAuth bool
}

// Router maps paths to views and gates specific views behind the presence of
// a stored token. Unknown paths fall back to the home view.
type Router struct {
	routes []route
	tokens TokenStore
}

// NewRouter returns a Router over the fixed view registry. Creating and
// editing items require a stored credential; everything else is public.
func NewRouter(tokens TokenStore) *Router {
	r := &Router{tokens: tokens}
	r.add("/", ViewHome, false)
	r.add("/items", ViewItems, false)
	r.add("/items/create", ViewCreateItem, true)
	r.add("/items/{id}", ViewItemDetail, false)
	r.add("/items/{id}/edit", ViewEditItem, true)
	r.add("/about", ViewAbout, false)
	return r
}

func (r *Router) add(pattern string, view View, requiresAuth bool) {
	r.routes = append(r.routes, route{
		segments:     splitPath(pattern),
		view:         view,
		requiresAuth: requiresAuth,
	})
}

// Resolve maps a path to its view. A gated view with no stored token
// resolves to the home view with the attempted path carried as redirect.
func (r *Router) Resolve(path string) Match {
	segments := splitPath(path)

	for _, rt := range r.routes {
		params, ok := match(rt.segments, segments)
		if !ok {
			continue
		}
		if rt.requiresAuth && !r.authenticated() {
			return Match{View: ViewHome, Redirect: path}
		}
		return Match{View: rt.view, Params: params}
	}

	return Match{View: ViewHome}
}

func (r *Router) authenticated() bool {
	if r.tokens == nil {
		return false
	}
	_, ok := r.tokens.Token()
	return ok
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// match compares a pattern against concrete segments, capturing {name}
// placeholders. Static segments win over placeholders because routes are
// registered most-specific first.
func match(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			if params == nil {
				params = map[string]string{}
			}
			params[strings.Trim(p, "{}")] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
