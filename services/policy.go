package services

import "github.com/yeremiapane/wastezero-realtime/models"

type rolePair struct {
	from, to string
}

// allowedRolePairs lists who may message whom. NGOs and volunteers talk to
// each other; admins talk to everyone in both directions.
var allowedRolePairs = map[rolePair]bool{
	{models.RoleNGO, models.RoleVolunteer}:   true,
	{models.RoleVolunteer, models.RoleNGO}:   true,
	{models.RoleAdmin, models.RoleAdmin}:     true,
	{models.RoleAdmin, models.RoleNGO}:       true,
	{models.RoleAdmin, models.RoleVolunteer}: true,
	{models.RoleNGO, models.RoleAdmin}:       true,
	{models.RoleVolunteer, models.RoleAdmin}: true,
}

// IsPairAllowed reports whether a user with role from may message a user with role to.
func IsPairAllowed(from, to string) bool {
	return allowedRolePairs[rolePair{from, to}]
}
