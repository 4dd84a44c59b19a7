package models

import (
	"gorm.io/gorm"
)


type User struct {
    gorm.Model
    FullName string `gorm:"column:full_name;size:255;not null" json:"full_name"`
    Email    string `gorm:"column:email;size:255;not null" json:"email"`
    Role     string `gorm:"column:role;size:50;not null" json:"role"`
    Phone    string `gorm:"column:phone;size:20" json:"phone"`
    Status   string `gorm:"column:status;size:50;not null;default:inactive" json:"status"`

    Provider *Provider `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;nullable" json:"provider,omitempty"`
}


type Provider struct {
    gorm.Model
    UserID    uint   `gorm:"column:user_id;not null" json:"user_id"`
    Specialty string `gorm:"column:specialty;size:255" json:"specialty"`
    Bio       string `gorm:"column:bio;type:text" json:"bio"`
    Verified  bool   `gorm:"column:verified;default:false" json:"verified"`

    User      *User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Provider) TableName() string {
    return "providers"
}
