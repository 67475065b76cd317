package dao

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/HabitChainLabs/HabitChainBackend/model"
)

// CreateCheckinRecord appends one confirmed check-in to the local history.
func (d *Dao) CreateCheckinRecord(ctx context.Context, record *model.CheckinRecord) error {
	now := time.Now().UnixMilli()
	record.Address = strings.ToLower(record.Address)
	record.CreateTime = now
	record.UpdateTime = now
	if err := d.DB.WithContext(ctx).Table(model.CheckinRecordTableName()).
		Create(record).Error; err != nil {
		return errors.Wrap(err, "failed on create checkin record")
	}
	return nil
}

// CountCheckins returns the local history length for an address. It backs
// the lifetime-count hint on old contract deployments.
func (d *Dao) CountCheckins(ctx context.Context, address string) (int64, error) {
	var count int64
	if err := d.DB.WithContext(ctx).Table(model.CheckinRecordTableName()).
		Where("address = ?", strings.ToLower(address)).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed on count checkin records")
	}
	return count, nil
}

// RecentCheckins returns the newest records for an address.
func (d *Dao) RecentCheckins(ctx context.Context, address string, limit int) ([]model.CheckinRecord, error) {
	var records []model.CheckinRecord
	if err := d.DB.WithContext(ctx).Table(model.CheckinRecordTableName()).
		Where("address = ?", strings.ToLower(address)).
		Order("create_time desc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed on get recent checkin records")
	}
	return records, nil
}
