package model

// CheckinRecord is the locally tracked history of confirmed check-ins. Its
// row count doubles as the lifetime-count hint when the deployed contract
// misses the counter function.
type CheckinRecord struct {
	Id          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecordId    string `gorm:"column:record_id" json:"record_id"`
	Address     string `gorm:"column:address;index" json:"address"`
	ContentHash string `gorm:"column:content_hash" json:"content_hash"`
	TxHash      string `gorm:"column:tx_hash" json:"tx_hash"`
	RequiresFee bool   `gorm:"column:requires_fee" json:"requires_fee"`
	CreateTime  int64  `gorm:"column:create_time" json:"create_time"`
	UpdateTime  int64  `gorm:"column:update_time" json:"update_time"`
}

func CheckinRecordTableName() string {
	return "habit_checkin_records"
}
