package access

import "net/http"

// Requirement is what an actor must satisfy to be served a route.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Manager
	Admin
	Staff
)

// Allows reports whether actor meets r. A nil actor is an anonymous caller.
func (r Requirement) Allows(actor *Actor) bool {
	if r == Public {
		return true
	}
	if actor == nil {
		return false
	}
	switch r {
	case Authenticated:
		return true
	case Manager:
		return actor.Role == RoleManager
	case Admin:
		return actor.Admin
	case Staff:
		return actor.IsStaff()
	}
	return false
}

type Route struct {
	Method string
	Path   string
}

// Rules maps a route pattern and verb to its requirement.
type Rules map[Route]Requirement

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

// Decide answers for one request. Routes missing from the table are denied.
func (rules Rules) Decide(method, path string, actor *Actor) Decision {
	req, ok := rules[Route{Method: method, Path: path}]
	if ok && req.Allows(actor) {
		return Allow
	}
	if actor == nil {
		return Unauthenticated
	}
	return Forbidden
}

func (rules Rules) allow(req Requirement, path string, methods ...string) {
	for _, m := range methods {
		rules[Route{Method: m, Path: path}] = req
	}
}

// DefaultRules is the permission table of the public API.
func DefaultRules() Rules {
	rules := Rules{}

	rules.allow(Authenticated, "/api/categories", http.MethodGet, http.MethodPost)

	rules.allow(Public, "/api/menu-items", http.MethodGet)
	rules.allow(Manager, "/api/menu-items", http.MethodPost)
	rules.allow(Public, "/api/menu-items/:id", http.MethodGet)
	rules.allow(Admin, "/api/menu-items/:id", http.MethodPut, http.MethodPatch, http.MethodDelete)

	rules.allow(Admin, "/api/groups/managers", http.MethodGet, http.MethodPost)
	rules.allow(Admin, "/api/groups/managers/:userId", http.MethodDelete)
	rules.allow(Admin, "/api/groups/delivery-crew", http.MethodGet, http.MethodPost)
	rules.allow(Admin, "/api/groups/delivery-crew/:userId", http.MethodDelete)

	rules.allow(Authenticated, "/api/cart", http.MethodGet, http.MethodPost, http.MethodDelete)

	rules.allow(Authenticated, "/api/orders", http.MethodGet, http.MethodPost)
	rules.allow(Authenticated, "/api/orders/:id", http.MethodGet)
	rules.allow(Staff, "/api/orders/:id", http.MethodPut, http.MethodPatch, http.MethodDelete)

	rules.allow(Public, "/health", http.MethodGet)

	return rules
}
