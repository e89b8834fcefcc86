package sqlstore

import "time"

type playerRow struct {
	ID   string `gorm:"primaryKey;size:64"`
	Name string `gorm:"size:128"`
}

func (playerRow) TableName() string { return "players" }

type eventRow struct {
	ID         string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"size:128"`
	StartDate  time.Time
	RoundCount int `gorm:"not null"`
}

func (eventRow) TableName() string { return "events" }

type placementRow struct {
	ID       uint   `gorm:"primaryKey"`
	EventID  string `gorm:"not null;size:64;uniqueIndex:idx_placement_cell"`
	RoundNum int    `gorm:"not null;uniqueIndex:idx_placement_cell"`
	PlayerID string `gorm:"not null;size:64;uniqueIndex:idx_placement_cell"`
	Rank     int    `gorm:"not null"`
}

func (placementRow) TableName() string { return "placements" }

type snapshotRow struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"not null;size:36;index"`
	PlayerID  string `gorm:"not null;size:64"`
	Rating    float64
	Rounds    int
	CreatedAt time.Time
}

func (snapshotRow) TableName() string { return "rating_snapshots" }
