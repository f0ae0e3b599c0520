package models

// User is owned by the identity service; this server only reads it
type User struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int64
	Username    string `gorm:"type:varchar(100);index:uniq_username,unique;not null"`
	DisplayName string `gorm:"type:varchar(100)"`
	Image       string `gorm:"type:varchar(200)"`
}
