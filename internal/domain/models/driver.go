package models

import (
	"context"
	"strconv"

	"simplecrud/internal/domain"
)

type Driver struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	VehicleAssigned string `json:"vehicleAssigned"`
}

func (d *Driver) ResourceID() string {
	if d.ID == 0 {
		return ""
	}
	return strconv.FormatInt(d.ID, 10)
}

func (d *Driver) CanCreate(ctx context.Context) bool { return canManageFleet(ctx) }
func (d *Driver) CanUpdate(ctx context.Context) bool { return canManageFleet(ctx) }
func (d *Driver) CanDelete(ctx context.Context) bool { return canManageFleet(ctx) }

func canManageFleet(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner, RoleAdmin)
}

type DriverPayload struct {
	Name            string `json:"name" binding:"required,max=100"`
	Phone           string `json:"phone" binding:"required,max=20"`
	Role            string `json:"role" binding:"omitempty,oneof=driver helper"`
	VehicleAssigned string `json:"vehicleAssigned" binding:"max=32"`
}

type DriverFilter struct {
	Name            *string `form:"name" filter:"name,like"`
	Role            *string `form:"role" binding:"omitempty,oneof=driver helper" filter:"role,eq"`
	VehicleAssigned *string `form:"vehicleAssigned" filter:"vehicle_assigned,eq"`
}
