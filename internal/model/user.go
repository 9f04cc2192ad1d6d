package model

import "time"

// Role is the access level attached to every account. Role checks are exact
// matches; no role implies another.
type Role string

const (
    RoleAdmin  Role = "admin"
    RoleOwner  Role = "owner"
    RoleTenant Role = "tenant"
)

// Roles lists every known role in a stable order.
func Roles() []Role { return []Role{RoleAdmin, RoleOwner, RoleTenant} }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleOwner, RoleTenant:
        return true
    }
    return false
}

// User represents a row of the `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, stored trimmed and lower-cased.
//  PasswordHash – bcrypt digest; never leaves the server.
//  FirstName    – given name.
//  LastName     – family name.
//  Role         – admin, owner or tenant.
//  PhoneNumber  – optional contact number, empty when absent.
//  IsActive     – inactive accounts cannot log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64
    Email        string
    PasswordHash string
    FirstName    string
    LastName     string
    Role         Role
    PhoneNumber  string
    IsActive     bool
    CreatedAt    time.Time
    UpdatedAt    time.Time
}

// PublicUser is the projection of a User that may be sent to clients.
type PublicUser struct {
    ID          uint64 `json:"id"`
    Email       string `json:"email"`
    FirstName   string `json:"firstName"`
    LastName    string `json:"lastName"`
    Role        Role   `json:"role"`
    PhoneNumber string `json:"phoneNumber,omitempty"`
    IsActive    bool   `json:"isActive"`
}

// Public strips server-only fields from u.
func (u User) Public() PublicUser {
    return PublicUser{
        ID:          u.ID,
        Email:       u.Email,
        FirstName:   u.FirstName,
        LastName:    u.LastName,
        Role:        u.Role,
        PhoneNumber: u.PhoneNumber,
        IsActive:    u.IsActive,
    }
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// stored value untouched. Role and email are intentionally absent.
// A non-nil name must not be blank.
type ProfileUpdate struct {
    FirstName   *string `json:"firstName,omitempty" validate:"omitnil,notblank"`
    LastName    *string `json:"lastName,omitempty" validate:"omitnil,notblank"`
    PhoneNumber *string `json:"phoneNumber,omitempty" validate:"omitnil,phone"`
    IsActive    *bool   `json:"isActive,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
    return p.FirstName == nil && p.LastName == nil && p.PhoneNumber == nil && p.IsActive == nil
}
