package forms

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"simplecrud/internal/domain"
	"simplecrud/internal/domain/models"
	"simplecrud/internal/utils"
)

func VehicleForm() StructForm[*models.Vehicle, models.VehiclePayload] {
	return StructForm[*models.Vehicle, models.VehiclePayload]{
		Name: "vehicle",
		Fill: func(v *models.Vehicle) models.VehiclePayload {
			return models.VehiclePayload{
				VehicleCode: v.VehicleCode,
				PlateNumber: v.PlateNumber,
				Color:       v.Color,
				Kilometers:  v.Kilometers,
				LastService: v.LastService,
			}
		},
		Apply: func(p models.VehiclePayload, v *models.Vehicle) error {
			v.VehicleCode = utils.NormalizeSpace(p.VehicleCode)
			v.PlateNumber = utils.UpperCode(p.PlateNumber)
			v.Color = strings.TrimSpace(p.Color)
			v.Kilometers = p.Kilometers
			v.LastService = strings.TrimSpace(p.LastService)
			return nil
		},
		Check: func(_ context.Context, p models.VehiclePayload, _ *models.Vehicle) domain.FieldErrors {
			errs := domain.FieldErrors{}
			if strings.TrimSpace(p.VehicleCode) == "" {
				errs.Add("vehicleCode", "wajib diisi")
			}
			if strings.TrimSpace(p.PlateNumber) == "" {
				errs.Add("plateNumber", "wajib diisi")
			}
			return errs
		},
	}
}

func DriverForm() StructForm[*models.Driver, models.DriverPayload] {
	return StructForm[*models.Driver, models.DriverPayload]{
		Name: "driver",
		Fill: func(d *models.Driver) models.DriverPayload {
			return models.DriverPayload{
				Name:            d.Name,
				Phone:           d.Phone,
				Role:            d.Role,
				VehicleAssigned: d.VehicleAssigned,
			}
		},
		Apply: func(p models.DriverPayload, d *models.Driver) error {
			d.Name = utils.NormalizeSpace(p.Name)
			d.Phone = strings.TrimSpace(p.Phone)
			d.Role = p.Role
			if d.Role == "" {
				d.Role = "driver"
			}
			d.VehicleAssigned = strings.TrimSpace(p.VehicleAssigned)
			return nil
		},
	}
}

// UserForm hashes submitted passwords with cost; a password is required when
// the user is new and optional on edits.
func UserForm(cost int) StructForm[*models.User, models.UserPayload] {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return StructForm[*models.User, models.UserPayload]{
		Name: "user",
		Fill: func(u *models.User) models.UserPayload {
			return models.UserPayload{
				Name:     u.Name,
				Username: u.Username,
				Email:    u.Email,
				Phone:    u.Phone,
				Role:     u.Role,
				Status:   u.Status,
			}
		},
		Check: func(ctx context.Context, p models.UserPayload, u *models.User) domain.FieldErrors {
			errs := domain.FieldErrors{}
			if u.ID == 0 && p.Password == "" {
				errs.Add("password", "wajib diisi")
			}
			// only owners may grant roles
			if p.Role != "" && p.Role != u.Role && !domain.ActorFrom(ctx).HasRole(models.RoleOwner) {
				errs.Add("role", "tidak boleh mengubah nilai ini")
			}
			return errs
		},
		Apply: func(p models.UserPayload, u *models.User) error {
			u.Name = utils.NormalizeSpace(p.Name)
			u.Username = strings.TrimSpace(p.Username)
			u.Email = strings.ToLower(strings.TrimSpace(p.Email))
			u.Phone = strings.TrimSpace(p.Phone)
			if p.Role != "" {
				u.Role = p.Role
			}
			if u.Role == "" {
				u.Role = models.RoleUser
			}
			if p.Status != "" {
				u.Status = p.Status
			}
			if u.Status == "" {
				u.Status = "active"
			}
			if p.Password != "" {
				hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), cost)
				if err != nil {
					return err
				}
				u.PasswordHash = string(hash)
			}
			return nil
		},
	}
}
