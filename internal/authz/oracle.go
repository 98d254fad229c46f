package authz

// Oracle answers permission and role questions about an actor. All methods
// are pure functions of their arguments and are safe for a nil actor: an
// unauthenticated caller holds nothing. Results are recomputed on every
// call so a replaced actor is never judged against a stale permission set.
type Oracle struct {
	// HQSiteID is the site identifier treated as headquarters. A nil
	// CurrentSiteID on the actor is the headquarters sentinel regardless.
	HQSiteID int64
}

// HasRole reports whether the actor holds the named role.
func (o Oracle) HasRole(actor *Actor, name string) bool {
	if actor == nil || name == "" {
		return false
	}
	for _, r := range actor.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the actor holds the named permission,
// either directly or through any of their roles. Permission names are
// opaque keys; no hierarchy is inferred from the resource.action form.
func (o Oracle) HasPermission(actor *Actor, name string) bool {
	if actor == nil || name == "" {
		return false
	}
	for _, p := range actor.Permissions {
		if p == name {
			return true
		}
	}
	for _, r := range actor.Roles {
		for _, p := range r.Permissions {
			if p == name {
				return true
			}
		}
	}
	return false
}

// HasAnyRole reports whether the actor holds at least one of the named
// roles. An empty list is never vacuously true; "no requirement" is a
// distinct case the guard handles before consulting the oracle.
func (o Oracle) HasAnyRole(actor *Actor, names []string) bool {
	for _, n := range names {
		if o.HasRole(actor, n) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the actor holds at least one of the
// named permissions. An empty list is never vacuously true.
func (o Oracle) HasAnyPermission(actor *Actor, names []string) bool {
	for _, n := range names {
		if o.HasPermission(actor, n) {
			return true
		}
	}
	return false
}

// IsOnHeadquarters reports whether the actor's current site context is the
// headquarters scope.
func (o Oracle) IsOnHeadquarters(actor *Actor) bool {
	if actor == nil {
		return false
	}
	if actor.CurrentSiteID == nil {
		return true
	}
	return *actor.CurrentSiteID == o.HQSiteID
}
