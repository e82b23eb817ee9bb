package model

// FolioCounter holds the last issued sequence number per folio scope.
// Incremented atomically inside the creation transaction; gaps after a
// rollback are acceptable, duplicates are not.
type FolioCounter struct {
	Scope   string `gorm:"column:scope;type:text;primaryKey"`
	LastSeq uint64 `gorm:"column:last_seq;not null;default:0"`
}

func (FolioCounter) TableName() string {
	return "folio_counters"
}
