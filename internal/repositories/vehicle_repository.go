package repositories

import (
	"database/sql"
	"strconv"
	"strings"

	"simplecrud/internal/domain/models"
)

func parseUintID(id string) (any, error) {
	return strconv.ParseUint(strings.TrimSpace(id), 10, 64)
}

func parseIntID(id string) (any, error) {
	return strconv.ParseInt(strings.TrimSpace(id), 10, 64)
}

// NullIfEmpty helps store optional strings as NULL.
func NullIfEmpty(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// VehicleTable maps models.Vehicle onto the vehicles table.
func VehicleTable() *Table[*models.Vehicle] {
	return &Table[*models.Vehicle]{
		Name: "vehicles",
		Columns: []Column{
			{Field: "id", Name: "id"},
			{Field: "vehicleCode", Name: "vehicle_code"},
			{Field: "plateNumber", Name: "plate_number"},
			{Field: "color", Name: "color"},
			{Field: "kilometers", Name: "kilometers"},
			{Field: "lastService", Name: "last_service"},
		},
		Sortable:              []string{"id", "vehicleCode", "plateNumber", "kilometers", "lastService"},
		StandardSortField:     "id",
		StandardSortDirection: "desc",
		ParseID:               parseUintID,
		Scan: func(scan func(dest ...any) error) (*models.Vehicle, error) {
			var (
				v     models.Vehicle
				color sql.NullString
				km    sql.NullInt64
				last  sql.NullString
			)
			if err := scan(&v.ID, &v.VehicleCode, &v.PlateNumber, &color, &km, &last); err != nil {
				return nil, err
			}
			v.Color = color.String
			if km.Valid {
				x := int(km.Int64)
				v.Kilometers = &x
			}
			v.LastService = last.String
			return &v, nil
		},
		Values: func(v *models.Vehicle) []any {
			return []any{
				strings.TrimSpace(v.VehicleCode),
				strings.TrimSpace(v.PlateNumber),
				NullIfEmpty(v.Color),
				v.Kilometers,
				NullIfEmpty(v.LastService),
			}
		},
		SetID: func(v *models.Vehicle, id int64) { v.ID = uint64(id) },
	}
}
