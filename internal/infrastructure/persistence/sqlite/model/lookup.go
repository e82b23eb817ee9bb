package model

type Priority struct {
	PriorityID uint64 `gorm:"column:priority_id;primaryKey"`
	Name       string `gorm:"column:name;type:text;not null"`
}

func (Priority) TableName() string {
	return "priorities"
}

type DeliveryMethod struct {
	DeliveryMethodID uint64 `gorm:"column:delivery_method_id;primaryKey"`
	Name             string `gorm:"column:name;type:text;not null"`
}

func (DeliveryMethod) TableName() string {
	return "delivery_methods"
}
