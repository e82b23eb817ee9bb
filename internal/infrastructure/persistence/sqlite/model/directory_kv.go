package model

// DirectoryKV backs the resolver lookup cache.
type DirectoryKV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (DirectoryKV) TableName() string {
	return "directory_kv"
}
