package model

// StateEntry rows are append-only: nothing in the repository updates or
// deletes them once written.
type StateEntry struct {
	EntryID          uint64  `gorm:"column:entry_id;primaryKey;autoIncrement"`
	CorrespondenceID uint64  `gorm:"column:correspondence_id;not null;index"`
	FromState        *int    `gorm:"column:from_state"`
	ToState          int     `gorm:"column:to_state;not null"`
	ActingUserID     uint64  `gorm:"column:acting_user_id;not null"`
	ActingPositionID uint64  `gorm:"column:acting_position_id;not null"`
	TargetPositionID *uint64 `gorm:"column:target_position_id;index"`
	Notes            string  `gorm:"column:notes;type:text;not null;default:''"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null"`
}

func (StateEntry) TableName() string {
	return "state_entries"
}
