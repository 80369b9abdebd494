package storage

import "time"

// singletonID is the primary key of the one settings row and the one counters row.
const singletonID = 1

type SettingsRow struct {
	ID                        uint   `gorm:"primarykey"`
	Token                     string `gorm:"not null;default:''"`
	StoreID                   string `gorm:"column:store_id;not null;default:''"`
	AutoSyncEnabled           bool   `gorm:"not null;default:false"`
	RealTimeMonitoringEnabled bool   `gorm:"not null;default:false"`
	UpdatedAt                 time.Time
}

func (SettingsRow) TableName() string { return "settings" }

type CounterRow struct {
	ID                 uint   `gorm:"primarykey"`
	LifetimeTradeCount int    `gorm:"not null;default:0"`
	TodayTradeCount    int    `gorm:"not null;default:0"`
	LastUpdateDate     string `gorm:"not null;default:''"`
	UpdatedAt          time.Time
}

func (CounterRow) TableName() string { return "counters" }

// PassLockRow is a per-account lease. ExpiresAt is unix milliseconds.
type PassLockRow struct {
	Key       string `gorm:"column:lock_key;primarykey"`
	Owner     string `gorm:"not null"`
	ExpiresAt int64  `gorm:"not null"`
}

func (PassLockRow) TableName() string { return "pass_locks" }
