package models

import (
	"context"
	"strconv"

	"simplecrud/internal/domain"
)

type Vehicle struct {
	ID          uint64 `json:"id"`
	VehicleCode string `json:"vehicleCode"`
	PlateNumber string `json:"plateNumber"`
	Color       string `json:"color,omitempty"`
	Kilometers  *int   `json:"kilometers,omitempty"`  // nullable
	LastService string `json:"lastService,omitempty"` // YYYY-MM-DD, "" when unset
}

// VehicleSummary is the list representation of a vehicle.
type VehicleSummary struct {
	ID          uint64 `json:"id"`
	VehicleCode string `json:"vehicleCode"`
	PlateNumber string `json:"plateNumber"`
}

func (v *Vehicle) ResourceID() string {
	if v.ID == 0 {
		return ""
	}
	return strconv.FormatUint(v.ID, 10)
}

func (v *Vehicle) ListView() any {
	return VehicleSummary{ID: v.ID, VehicleCode: v.VehicleCode, PlateNumber: v.PlateNumber}
}

func (v *Vehicle) CanCreate(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner, RoleAdmin)
}

func (v *Vehicle) CanUpdate(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner, RoleAdmin)
}

// CanDelete is restricted to owners; admins may only edit the fleet.
func (v *Vehicle) CanDelete(ctx context.Context) bool {
	return domain.ActorFrom(ctx).HasRole(RoleOwner)
}

type VehiclePayload struct {
	VehicleCode string `json:"vehicleCode" binding:"required,max=32"`
	PlateNumber string `json:"plateNumber" binding:"required,max=16"`
	Color       string `json:"color" binding:"max=32"`
	Kilometers  *int   `json:"kilometers" binding:"omitempty,min=0"`                // boleh null
	LastService string `json:"lastService" binding:"omitempty,datetime=2006-01-02"` // boleh kosong => NULL di DB
}

// VehicleFilter is bound from the list query string.
type VehicleFilter struct {
	VehicleCode *string `form:"vehicleCode" filter:"vehicle_code,like"`
	PlateNumber *string `form:"plateNumber" filter:"plate_number,like"`
	Color       *string `form:"color" filter:"color,eq"`
	MinKm       *int    `form:"minKilometers" binding:"omitempty,min=0" filter:"kilometers,gte"`
	MaxKm       *int    `form:"maxKilometers" binding:"omitempty,min=0" filter:"kilometers,lte"`
}
