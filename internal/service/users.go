package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Users
// ============================================================

// Users returns every user without passwords.
func (d *Desk) Users(ctx context.Context) []domain.User {
	_, span := deskTracer.Start(ctx, "Desk.Users")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()
	return publicUsers(d.users)
}

// AddUser creates a user. Admin only.
func (d *Desk) AddUser(ctx context.Context, actor domain.User, in domain.UserInput) ([]domain.User, error) {
	_, span := deskTracer.Start(ctx, "Desk.AddUser")
	defer span.End()

	if !domain.CanManageUsers(actor) {
		return nil, &domain.ErrForbidden{Action: "create user"}
	}
	if err := validateUserInput(in, true); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.usernameTaken(in.Username, "") {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("username %q already in use", in.Username)}
	}
	u := domain.User{
		ID:             d.newID(),
		Username:       strings.TrimSpace(in.Username),
		Password:       hash,
		Name:           strings.TrimSpace(in.Name),
		Role:           in.Role,
		Department:     in.Department,
		AvatarInitials: in.AvatarInitials,
	}
	if u.Department == "" {
		u.Department = domain.DeptCommercial
	}
	if u.AvatarInitials == "" {
		u.AvatarInitials = initials(u.Name)
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	d.users = append(slices.Clone(d.users), u)

	d.audit.Record(actor, AuditEntry{
		Action:     "user_add",
		TargetType: "user",
		TargetID:   u.ID,
		Details:    "Novo usuário " + u.Name,
	})
	d.emitUsers()
	d.mutated("user_add")

	d.logger.Info("user added",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("department", string(u.Department)),
	)
	return publicUsers(d.users), nil
}

// UpdateUser edits a user. Admins may change everything; a user editing
// their own record may change credentials, name and initials but not role
// or department. An empty password keeps the current one.
func (d *Desk) UpdateUser(ctx context.Context, actor domain.User, id string, in domain.UserInput) ([]domain.User, error) {
	_, span := deskTracer.Start(ctx, "Desk.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	self := actor.ID == id
	if !domain.CanManageUsers(actor) && !self {
		return nil, &domain.ErrForbidden{Action: "edit user"}
	}
	if err := validateUserInput(in, false); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != "" {
		h, err := hashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.userIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	if d.usernameTaken(in.Username, id) {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("username %q already in use", in.Username)}
	}

	u := d.users[i]
	u.Username = strings.TrimSpace(in.Username)
	u.Name = strings.TrimSpace(in.Name)
	if in.AvatarInitials != "" {
		u.AvatarInitials = in.AvatarInitials
	}
	if hash != "" {
		u.Password = hash
	}
	if domain.CanManageUsers(actor) {
		if in.Role != "" {
			u.Role = in.Role
		}
		if in.Department != "" {
			u.Department = in.Department
		}
	}

	d.users = slices.Clone(d.users)
	d.users[i] = u
	d.purgeChartCache()

	d.audit.Record(actor, AuditEntry{
		Action:     "user_update",
		TargetType: "user",
		TargetID:   id,
		Details:    "Perfil/Departamento de " + u.Name,
	})
	d.emitUsers()
	d.mutated("user_update")

	return publicUsers(d.users), nil
}

// DeleteUser removes a user. Admin only; an admin cannot delete the account
// they are signed in with.
func (d *Desk) DeleteUser(ctx context.Context, actor domain.User, id string) ([]domain.User, error) {
	_, span := deskTracer.Start(ctx, "Desk.DeleteUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	if !domain.CanManageUsers(actor) {
		return nil, &domain.ErrForbidden{Action: "delete user"}
	}
	if actor.ID == id {
		return nil, &domain.ErrConflict{Message: "cannot delete the signed-in user"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.userIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	d.users = slices.Delete(slices.Clone(d.users), i, i+1)
	d.purgeChartCache()

	d.audit.Record(actor, AuditEntry{Action: "user_delete", TargetType: "user", TargetID: id})
	d.emitUsers()
	d.mutated("user_delete")

	return publicUsers(d.users), nil
}

func (d *Desk) usernameTaken(username, exceptID string) bool {
	username = strings.TrimSpace(username)
	for _, u := range d.users {
		if u.ID != exceptID && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func validateUserInput(in domain.UserInput, creating bool) error {
	if strings.TrimSpace(in.Username) == "" {
		return &domain.ErrValidation{Field: "username", Message: "username is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	if creating && in.Password == "" {
		return &domain.ErrValidation{Field: "password", Message: "password is required"}
	}
	if creating && !domain.IsValidRole(in.Role) {
		return &domain.ErrValidation{Field: "role", Message: fmt.Sprintf("unknown role %q", in.Role)}
	}
	if !creating && in.Role != "" && !domain.IsValidRole(in.Role) {
		return &domain.ErrValidation{Field: "role", Message: fmt.Sprintf("unknown role %q", in.Role)}
	}
	if in.Department != "" && !domain.IsValidDepartment(in.Department) {
		return &domain.ErrValidation{Field: "department", Message: fmt.Sprintf("unknown department %q", in.Department)}
	}
	return nil
}

func publicUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// initials takes the first letter of the first and last words of name.
func initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	first := []rune(words[0])[0]
	if len(words) == 1 {
		return string(unicode.ToUpper(first))
	}
	last := []rune(words[len(words)-1])[0]
	return string(unicode.ToUpper(first)) + string(unicode.ToUpper(last))
}
