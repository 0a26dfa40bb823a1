package models

// Counter is a named sequence, keyed by "<collection>.<field>".
type Counter struct {
	ID  string `gorm:"primaryKey;type:varchar(100)"`
	Seq int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string {
	return "counters"
}
