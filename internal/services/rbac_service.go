package services

import (
	"context"

	"dataclinica/internal/models"
)

// Permission names follow resource:action.
const (
	PermSupplyRead    = "supplies:read"
	PermSupplyWrite   = "supplies:write"
	PermStockMove     = "supplies:move"
	PermAlertManage   = "alerts:manage"
	PermOrderRead     = "orders:read"
	PermOrderWrite    = "orders:write"
	PermOrderApprove  = "orders:approve"
	PermReportRead    = "reports:read"
	PermAuditRead     = "audit:read"
)

// rolePermissions is the built-in permission matrix. Roles are fixed per
// clinic; a pharmacist runs the stockroom, a nurse consumes and transfers,
// an auditor reads everything but changes nothing.
var rolePermissions = map[string][]string{
	models.RoleAdmin: {
		PermSupplyRead, PermSupplyWrite, PermStockMove, PermAlertManage,
		PermOrderRead, PermOrderWrite, PermOrderApprove, PermReportRead, PermAuditRead,
	},
	models.RolePharmacist: {
		PermSupplyRead, PermSupplyWrite, PermStockMove, PermAlertManage,
		PermOrderRead, PermOrderWrite, PermReportRead,
	},
	models.RoleNurse: {
		PermSupplyRead, PermStockMove,
	},
	models.RoleAuditor: {
		PermSupplyRead, PermOrderRead, PermReportRead, PermAuditRead,
	},
}

type RBACService interface {
	RoleHasPermission(ctx context.Context, role, permissionName string) (bool, error)
	GetRolePermissions(ctx context.Context, role string) ([]string, error)
}

type rbacService struct{}

func NewRBACService() RBACService {
	return &rbacService{}
}

func (s *rbacService) RoleHasPermission(_ context.Context, role, permissionName string) (bool, error) {
	for _, p := range rolePermissions[role] {
		if p == permissionName {
			return true, nil
		}
	}
	return false, nil
}

func (s *rbacService) GetRolePermissions(_ context.Context, role string) ([]string, error) {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out, nil
}
