package authz

// RouteRule binds a route pattern to its access requirement. The guard only
// produces the decision; mounting and navigation belong to the router.
type RouteRule struct {
	Pattern     string
	Requirement Requirement
}

// RouteTable is the declarative route/requirement configuration consumed by
// the middleware.
type RouteTable []RouteRule

// Find returns the requirement for a pattern, and whether one is declared.
func (t RouteTable) Find(pattern string) (Requirement, bool) {
	for _, rule := range t {
		if rule.Pattern == pattern {
			return rule.Requirement, true
		}
	}
	return Requirement{}, false
}

// ConsoleRoutes is the access policy for the console surface. Users, roles,
// sites and settings are manageable from headquarters scope only.
func ConsoleRoutes() RouteTable {
	return RouteTable{
		{Pattern: "/auth/login", Requirement: Requirement{RequireGuest: true}},
		{Pattern: "/", Requirement: Requirement{RequireAuth: true}},
		{Pattern: "/suppliers", Requirement: Requirement{Permission: "supplier.viewAny"}},
		{Pattern: "/sites", Requirement: Requirement{Permission: "site.viewAny", RequiresHQ: true}},
		{Pattern: "/zones", Requirement: Requirement{Permission: "zone.viewAny"}},
		{Pattern: "/materials", Requirement: Requirement{Permission: "material.viewAny"}},
		{Pattern: "/items", Requirement: Requirement{Permission: "item.viewAny"}},
		{Pattern: "/item-movements", Requirement: Requirement{Permission: "item-movement.viewAny"}},
		{Pattern: "/maintenances", Requirement: Requirement{Permission: "maintenance.viewAny"}},
		{Pattern: "/incidents", Requirement: Requirement{Permission: "incident.viewAny"}},
		{Pattern: "/cleanings", Requirement: Requirement{Permission: "cleaning.viewAny"}},
		{Pattern: "/calendar", Requirement: Requirement{RequireAuth: true}},
		{Pattern: "/scan", Requirement: Requirement{RequireAuth: true}},
		{Pattern: "/notifications", Requirement: Requirement{RequireAuth: true}},
		{Pattern: "/users", Requirement: Requirement{Permission: "user.viewAny", RequiresHQ: true}},
		{Pattern: "/roles", Requirement: Requirement{Permission: "role.viewAny", RequiresHQ: true}},
		{Pattern: "/settings", Requirement: Requirement{Permission: "setting.viewAny", RequiresHQ: true}},
	}
}
