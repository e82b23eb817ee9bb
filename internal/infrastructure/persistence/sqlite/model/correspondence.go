package model

// Correspondence is the record row. current_state mirrors the latest
// state entry's to_state and is only ever written in the same transaction
// that appends the entry.
type Correspondence struct {
	CorrespondenceID    uint64 `gorm:"column:correspondence_id;primaryKey;autoIncrement"`
	SystemFolio         string `gorm:"column:system_folio;type:text;not null;uniqueIndex"`
	ExternalFolio       string `gorm:"column:external_folio;type:text;not null;default:''"`
	ReceivedDate        string `gorm:"column:received_date;type:text;not null;index"`
	Summary             string `gorm:"column:summary;type:text;not null"`
	PriorityID          uint64 `gorm:"column:priority_id;not null;index"`
	DeliveryMethodID    uint64 `gorm:"column:delivery_method_id;not null;index"`
	DocumentPath        string `gorm:"column:document_path;type:text;not null;default:''"`
	Scope               string `gorm:"column:scope;type:text;not null;index"`
	CreatedByUserID     uint64 `gorm:"column:created_by_user_id;not null;index"`
	CreatedByPositionID uint64 `gorm:"column:created_by_position_id;not null"`
	CreatedAt           string `gorm:"column:created_at;type:text;not null"`
	CurrentState        int    `gorm:"column:current_state;not null;index"`
}

func (Correspondence) TableName() string {
	return "correspondences"
}
