package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	gorm.Model
	Name     string   `json:"name" gorm:"column:name;not null"`
	Username string   `json:"username" gorm:"column:username"`
	Email    string   `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Password string   `json:"-" gorm:"column:password;not null"`
	Phone    string   `json:"phone" gorm:"column:phone"`
	Role     UserRole `json:"role" gorm:"column:role;not null;default:'user'"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}
