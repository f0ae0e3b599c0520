package models

// Post is a single hoax. Rows are append-only: never updated, never deleted.
type Post struct {
	ID           uint64      `gorm:"primaryKey"`
	CreatedAt    int64       `gorm:"autoCreateTime:milli"`
	Content      string      `gorm:"type:varchar(5000);not null"`
	AuthorID     uint64      `gorm:"not null;index:author_post,priority:1"`
	Author       User        `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AttachmentID *uint64     `gorm:"index:uniq_attachment,unique"` // can be null, set once at creation
	Attachment   *Attachment `gorm:"foreignKey:AttachmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
