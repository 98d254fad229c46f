package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func siteID(id int64) *int64 {
	return &id
}

func TestHasPermissionUnionOfDirectAndRoleGrants(t *testing.T) {
	oracle := Oracle{HQSiteID: 1}
	actor := &Actor{
		ID:          7,
		Permissions: []string{"item.viewAny"},
		Roles: []Role{
			{Name: "site-manager", Permissions: []string{"supplier.viewAny", "zone.viewAny"}},
		},
	}

	require.True(t, oracle.HasPermission(actor, "item.viewAny"), "direct grant")
	require.True(t, oracle.HasPermission(actor, "supplier.viewAny"), "role-carried grant")
	require.False(t, oracle.HasPermission(actor, "supplier.delete"))

	// Permission names are opaque keys, no hierarchy in the dot form.
	require.False(t, oracle.HasPermission(actor, "item.view"))
}

func TestHasPermissionRoleOnlyGrant(t *testing.T) {
	oracle := Oracle{HQSiteID: 1}
	actor := &Actor{
		Roles:       []Role{{Name: "site-manager", Permissions: []string{"supplier.viewAny"}}},
		Permissions: nil,
	}

	require.True(t, oracle.HasPermission(actor, "supplier.viewAny"))
	require.False(t, oracle.HasPermission(actor, "supplier.delete"))
}

func TestHasRole(t *testing.T) {
	oracle := Oracle{}
	actor := &Actor{Roles: []Role{{Name: "site-admin"}}}

	require.True(t, oracle.HasRole(actor, "site-admin"))
	require.False(t, oracle.HasRole(actor, "site-manager"))
	require.False(t, oracle.HasRole(actor, ""))
}

func TestEmptyListsAreNeverVacuouslyTrue(t *testing.T) {
	oracle := Oracle{}
	privileged := &Actor{
		Permissions: []string{"supplier.viewAny", "user.viewAny"},
		Roles:       []Role{{Name: "site-admin", Permissions: []string{"setting.viewAny"}}},
	}

	require.False(t, oracle.HasAnyPermission(privileged, nil))
	require.False(t, oracle.HasAnyPermission(privileged, []string{}))
	require.False(t, oracle.HasAnyRole(privileged, nil))
}

func TestNilActorHoldsNothing(t *testing.T) {
	oracle := Oracle{HQSiteID: 1}

	require.False(t, oracle.HasPermission(nil, "supplier.viewAny"))
	require.False(t, oracle.HasRole(nil, "site-admin"))
	require.False(t, oracle.HasAnyPermission(nil, []string{"supplier.viewAny"}))
	require.False(t, oracle.HasAnyRole(nil, []string{"site-admin"}))
	require.False(t, oracle.IsOnHeadquarters(nil))
}

func TestIsOnHeadquarters(t *testing.T) {
	oracle := Oracle{HQSiteID: 1}

	require.True(t, oracle.IsOnHeadquarters(&Actor{CurrentSiteID: nil}), "nil site is the HQ sentinel")
	require.True(t, oracle.IsOnHeadquarters(&Actor{CurrentSiteID: siteID(1)}))
	require.False(t, oracle.IsOnHeadquarters(&Actor{CurrentSiteID: siteID(4)}))
}

func TestHasAnyPermission(t *testing.T) {
	oracle := Oracle{}
	actor := &Actor{Roles: []Role{{Name: "viewer", Permissions: []string{"material.viewAny"}}}}

	require.True(t, oracle.HasAnyPermission(actor, []string{"material.delete", "material.viewAny"}))
	require.False(t, oracle.HasAnyPermission(actor, []string{"material.delete", "material.update"}))
}

func TestLocaleTag(t *testing.T) {
	require.Equal(t, language.French, (&Actor{Locale: "fr"}).LocaleTag())
	require.Equal(t, language.English, (&Actor{Locale: "not-a-locale!"}).LocaleTag())
	require.Equal(t, language.English, (&Actor{}).LocaleTag())
	require.Equal(t, language.English, (*Actor)(nil).LocaleTag())
}
