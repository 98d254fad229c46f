package authz

// Guard turns an access requirement plus the current actor into an
// allow/deny/pending decision. It owns redirect target selection; it does
// not navigate.
type Guard struct {
	Oracle Oracle
}

// Evaluate applies the requirement rules in order, short-circuiting at the
// first applicable one:
//
//  1. unresolved auth status is Pending
//  2. guest-only content denies authenticated actors (guest wins even when
//     RequireAuth is also set, see Requirement)
//  3. auth-requiring content (explicit, or implied by any named permission
//     or role) denies missing actors toward the login page
//  4. named permissions and roles are checked as two independent OR
//     groups, or all individually when RequireAll is set
//  5. headquarters-only content denies actors outside headquarters scope
func (g Guard) Evaluate(actor *Actor, loading bool, req Requirement, requested string) Decision {
	if loading {
		return Decision{Kind: DecisionPending}
	}

	if req.RequireGuest {
		if actor != nil {
			target := req.RedirectTo
			if target == "" {
				target = HomeTarget
			}
			return Decision{Kind: DecisionDeny, RedirectTo: target}
		}
		return Decision{Kind: DecisionAllow}
	}

	allPermissions := combine(req.Permission, req.Permissions)
	allRoles := combine(req.Role, req.Roles)

	needsAuth := req.RequireAuth || len(allPermissions) > 0 || len(allRoles) > 0 || req.RequiresHQ
	if needsAuth && actor == nil {
		return Decision{Kind: DecisionDeny, RedirectTo: LoginTarget, ReturnTo: requested}
	}

	if len(allPermissions) > 0 || len(allRoles) > 0 {
		var ok bool
		if req.RequireAll {
			ok = true
			for _, p := range allPermissions {
				if !g.Oracle.HasPermission(actor, p) {
					ok = false
					break
				}
			}
			if ok {
				for _, r := range allRoles {
					if !g.Oracle.HasRole(actor, r) {
						ok = false
						break
					}
				}
			}
		} else {
			ok = g.Oracle.HasAnyPermission(actor, allPermissions) || g.Oracle.HasAnyRole(actor, allRoles)
		}
		if !ok {
			return Decision{Kind: DecisionDeny, RedirectTo: g.denyTarget(req)}
		}
	}

	if req.RequiresHQ && !g.Oracle.IsOnHeadquarters(actor) {
		return Decision{Kind: DecisionDeny, RedirectTo: g.denyTarget(req)}
	}

	return Decision{Kind: DecisionAllow}
}

func (g Guard) denyTarget(req Requirement) string {
	if req.RedirectTo != "" {
		return req.RedirectTo
	}
	return UnauthorizedTarget
}

func combine(single string, many []string) []string {
	if single == "" {
		return many
	}
	out := make([]string, 0, len(many)+1)
	out = append(out, single)
	out = append(out, many...)
	return out
}
