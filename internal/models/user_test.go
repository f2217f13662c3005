package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuForRole(t *testing.T) {
	assert.Equal(t, []string{
		ViewOverview, ViewMarketing, ViewPropertyBreakdown,
		ViewGeographic, ViewLeadsFeatures, ViewUpdateLeads,
	}, MenuForRole(RoleAdministrator))

	assert.Equal(t, []string{
		ViewLeadsFeatures, ViewUpdateLeads, ViewPropertyBreakdown,
		ViewGeographic,
	}, MenuForRole(RoleMitarbeiter))

	assert.Equal(t, []string{
		ViewLeadsFeatures, ViewPropertyBreakdown, ViewGeographic,
	}, MenuForRole(RoleTrackingpartner))

	assert.Equal(t, []string{ViewLoginRequired}, MenuForRole("Praktikant"))
	assert.Equal(t, []string{ViewLoginRequired}, MenuForRole(""))
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(RoleAdministrator, ViewOverview))
	assert.True(t, CanAccess(RoleMitarbeiter, ViewUpdateLeads))
	assert.False(t, CanAccess(RoleMitarbeiter, ViewOverview))
	assert.False(t, CanAccess(RoleTrackingpartner, ViewUpdateLeads))
	assert.False(t, CanAccess("", ViewOverview))
}
