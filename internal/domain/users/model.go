package users

import "time"

const RoleAdmin = "admin"

// User is a console account. Customers never log in; every row here is staff.
type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"type:varchar(150);not null;uniqueIndex:idx_users_username"`
	Email        *string `gorm:"uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  `gorm:"type:varchar(20);not null;default:'admin'"`
	IsActive     bool    `gorm:"not null;default:true"`

	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) IsAdmin() bool {
	return u.IsActive && u.Role == RoleAdmin
}
