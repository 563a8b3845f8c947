package models

// Setting is a key/value row for runtime shop configuration.
type Setting struct {
	Key       string `gorm:"primarykey" json:"key"`  // setting key
	ValueJSON JSON   `gorm:"type:json" json:"value"` // setting value
}

// TableName sets the table name.
func (Setting) TableName() string {
	return "settings"
}
