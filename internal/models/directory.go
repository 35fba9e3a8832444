package models

type Club struct {
	Base
	Code string `gorm:"size:100;unique;not null" json:"code"`
	Name string `gorm:"size:255;unique;not null" json:"name"`
}

type Registrant struct {
	Base
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`
	Phone     string `gorm:"size:255;not null" json:"phone"`
	Email     string `gorm:"size:255;not null" json:"email"`
}
