package repositories

import (
	"database/sql"
	"strings"

	"simplecrud/internal/domain/models"
)

// DriverTable maps models.Driver onto the drivers table.
func DriverTable() *Table[*models.Driver] {
	return &Table[*models.Driver]{
		Name: "drivers",
		Columns: []Column{
			{Field: "id", Name: "id"},
			{Field: "name", Name: "name"},
			{Field: "phone", Name: "phone"},
			{Field: "role", Name: "role"},
			{Field: "vehicleAssigned", Name: "vehicle_assigned"},
		},
		Sortable:              []string{"id", "name", "role"},
		StandardSortField:     "name",
		StandardSortDirection: "asc",
		ParseID:               parseIntID,
		Scan: func(scan func(dest ...any) error) (*models.Driver, error) {
			var (
				d        models.Driver
				assigned sql.NullString
			)
			if err := scan(&d.ID, &d.Name, &d.Phone, &d.Role, &assigned); err != nil {
				return nil, err
			}
			d.VehicleAssigned = assigned.String
			return &d, nil
		},
		Values: func(d *models.Driver) []any {
			role := strings.TrimSpace(d.Role)
			if role == "" {
				role = "driver"
			}
			return []any{
				strings.TrimSpace(d.Name),
				strings.TrimSpace(d.Phone),
				role,
				NullIfEmpty(d.VehicleAssigned),
			}
		},
		SetID: func(d *models.Driver, id int64) { d.ID = id },
	}
}
