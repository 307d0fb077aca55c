package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/wastezero-realtime/models"
)

func TestIsPairAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.RoleNGO, models.RoleVolunteer, true},
		{models.RoleVolunteer, models.RoleNGO, true},
		{models.RoleAdmin, models.RoleVolunteer, true},
		{models.RoleAdmin, models.RoleNGO, true},
		{models.RoleAdmin, models.RoleAdmin, true},
		{models.RoleVolunteer, models.RoleAdmin, true},
		{models.RoleNGO, models.RoleAdmin, true},
		{models.RoleVolunteer, models.RoleVolunteer, false},
		{models.RoleNGO, models.RoleNGO, false},
		{"guest", models.RoleNGO, false},
		{models.RoleAdmin, "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsPairAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsPairAllowedIsSymmetric(t *testing.T) {
	for _, a := range models.Roles {
		for _, b := range models.Roles {
			assert.Equal(t, IsPairAllowed(a, b), IsPairAllowed(b, a), "%s <-> %s", a, b)
		}
	}
}
