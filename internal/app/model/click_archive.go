package model

import "time"

// ClickArchive is the warehouse row derived from a ClickEvent. The
// JetStream consumer writes these for the dashboard's reporting queries;
// the resolver itself never reads them.
type ClickArchive struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Hostname  string    `gorm:"size:253;index:idx_click_series"`
	LinkKey   string    `gorm:"size:255;index:idx_click_series"`
	Country   string    `gorm:"size:64"`
	Region    string    `gorm:"size:64"`
	City      string    `gorm:"size:128"`
	Browser   string    `gorm:"size:64"`
	OS        string    `gorm:"size:64"`
	Device    string    `gorm:"size:64"`
	Referer   string    `gorm:"type:text"`
	Timestamp int64     `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
