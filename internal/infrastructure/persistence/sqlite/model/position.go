package model

// Position mirrors the organizational position directory. This module
// only reads it; rows are seeded by init-db or synchronized externally.
type Position struct {
	PositionID   uint64 `gorm:"column:position_id;primaryKey"`
	Title        string `gorm:"column:title;type:text;not null"`
	HolderUserID uint64 `gorm:"column:holder_user_id;not null"`
	HolderName   string `gorm:"column:holder_name;type:text;not null"`
	Area         string `gorm:"column:area;type:text;not null;default:''"`
	Active       bool   `gorm:"column:active;not null"`
}

func (Position) TableName() string {
	return "positions"
}
