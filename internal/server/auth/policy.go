package auth

import (
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

// CanAssignRole decides whether actor may give requested to a target whose
// role is currently targetCurrent. It returns nil to allow, or one of
// common.ErrInsufficientPrivilege / common.ErrCannotDemoteOtherAdmin.
//
// Rules, in order:
//  1. only admins grant manager or admin;
//  2. nobody strips the admin role from another admin.
//
// Unknown roles are denied.
func CanAssignRole(actor, requested models.Role, isActorTheTarget bool, targetCurrent models.Role) error {
	switch requested {
	case models.RoleAdmin, models.RoleManager:
		if actor != models.RoleAdmin {
			return common.ErrInsufficientPrivilege
		}
	case models.RoleRegular:
	default:
		return common.ErrInsufficientPrivilege
	}

	switch targetCurrent {
	case models.RoleAdmin:
		if requested != models.RoleAdmin && !isActorTheTarget {
			return common.ErrCannotDemoteOtherAdmin
		}
	case models.RoleManager, models.RoleRegular:
	default:
		return common.ErrInsufficientPrivilege
	}

	return nil
}

// CanCreateWithRole applies CanAssignRole to a brand-new account.
func CanCreateWithRole(actor, requested models.Role) error {
	return CanAssignRole(actor, requested, false, models.RoleRegular)
}
