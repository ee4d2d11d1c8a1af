// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Document 对应 documents 表，存储一次上传提取出的纯文本。入库后不再修改。
type Document struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename    string    `gorm:"type:varchar(255);not null" json:"filename"`
	Content     string    `gorm:"type:longtext;not null" json:"-"`
	ContentHash string    `gorm:"type:varchar(32);not null;index:idx_document_hash" json:"content_hash"`
	WordCount   int       `json:"word_count"`
	Language    string    `gorm:"type:varchar(8);default:'en'" json:"language"`
	UploadDate  time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}
