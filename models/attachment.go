package models

import "strings"

// Attachment is an uploaded file. It exists before the Post it gets bound to;
// PostID stays null until then and is written exactly once.
type Attachment struct {
	ID          uint64  `gorm:"primaryKey"`
	CreatedAt   int64   `gorm:"autoCreateTime:milli;index:orphan_sweep,priority:2"`
	StorageName string  `gorm:"type:varchar(100);not null"`
	ThumbName   string  `gorm:"type:varchar(120)"` // empty when no thumbnail was made
	MimeType    string  `gorm:"type:varchar(100)"`
	Size        int64   `gorm:"not null;default:0"`
	PostID      *uint64 `gorm:"index:orphan_sweep,priority:1"` // weak back-reference, no FK constraint
}

func (a *Attachment) IsBound() bool {
	return a.PostID != nil
}

func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// BlobNames returns every storage object that belongs to the attachment
func (a *Attachment) BlobNames() []string {
	names := []string{a.StorageName}
	if a.ThumbName != "" {
		names = append(names, a.ThumbName)
	}
	return names
}
