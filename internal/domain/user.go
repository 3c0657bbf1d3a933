package domain

import "time"

const (
	UserLevelMember = "member"
	UserLevelAdmin  = "admin"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

// User is a marketplace member. Password holds a bcrypt hash and never
// leaves the server.
type User struct {
	ID        int64     `json:"id,string" form:"id"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email" form:"email"`
	Password  string    `gorm:"size:255" json:"-" form:"-"`
	Realname  string    `json:"realname" form:"realname"`
	Tier      string    `gorm:"size:32" json:"tier" form:"tier"`
	Level     string    `gorm:"size:32" json:"level" form:"level"`
	Status    string    `gorm:"size:32" json:"status" form:"status"`
	Remark    string    `json:"remark" form:"remark"`
	LastLogin time.Time `json:"last_login" form:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
