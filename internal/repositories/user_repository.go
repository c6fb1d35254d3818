package repositories

import (
	"context"
	"database/sql"
	"strings"

	"simplecrud/internal/domain/models"
)

// UserTable maps models.User onto the users table.
func UserTable() *Table[*models.User] {
	return &Table[*models.User]{
		Name: "users",
		Columns: []Column{
			{Field: "id", Name: "id"},
			{Field: "name", Name: "name"},
			{Field: "username", Name: "username"},
			{Field: "email", Name: "email"},
			{Field: "phone", Name: "phone"},
			{Field: "passwordHash", Name: "password_hash"},
			{Field: "role", Name: "role"},
			{Field: "status", Name: "status"},
		},
		Sortable:              []string{"id", "name", "username", "email", "role"},
		StandardSortField:     "id",
		StandardSortDirection: "asc",
		ParseID:               parseIntID,
		Scan: func(scan func(dest ...any) error) (*models.User, error) {
			var (
				u     models.User
				phone sql.NullString
			)
			if err := scan(&u.ID, &u.Name, &u.Username, &u.Email, &phone, &u.PasswordHash, &u.Role, &u.Status); err != nil {
				return nil, err
			}
			u.Phone = phone.String
			return &u, nil
		},
		Values: func(u *models.User) []any {
			role := u.Role
			if role == "" {
				role = models.RoleUser
			}
			status := u.Status
			if status == "" {
				status = "active"
			}
			return []any{
				strings.TrimSpace(u.Name),
				strings.TrimSpace(u.Username),
				strings.ToLower(strings.TrimSpace(u.Email)),
				NullIfEmpty(u.Phone),
				u.PasswordHash,
				role,
				status,
			}
		},
		SetID: func(u *models.User, id int64) { u.ID = id },
	}
}

// UserRepository adds the login lookup on top of the generic repository.
type UserRepository struct {
	SQLRepository[*models.User]
}

// FindByLogin returns the user whose email or username equals login.
func (r UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, nil
	}
	field := "username"
	if strings.Contains(login, "@") {
		field = "email"
		login = strings.ToLower(login)
	}
	res, err := r.FindOneBy(ctx, field, login)
	if err != nil || res == nil {
		return nil, err
	}
	u, _ := res.(*models.User)
	return u, nil
}
