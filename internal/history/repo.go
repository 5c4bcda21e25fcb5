package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CareerRecord is one completed career.
type CareerRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	RunID       string    `gorm:"index;size:36" json:"runId"`
	Mode        string    `gorm:"size:16" json:"mode"`
	TotalFans   int       `json:"totalFans"`
	SkillPoints int       `json:"skillPoints"`
	Restarts    int       `json:"restarts"`
	Restarted   bool      `json:"restarted"`
	FinishedAt  time.Time `gorm:"index" json:"finishedAt"`
}

func (CareerRecord) TableName() string { return "career_history" }

// NewRecord fills in the id and finish time of a record.
func NewRecord(runID, mode string, fans, skillPoints, restarts int, restarted bool) CareerRecord {
	return CareerRecord{
		ID:          uuid.New().String(),
		RunID:       runID,
		Mode:        mode,
		TotalFans:   fans,
		SkillPoints: skillPoints,
		Restarts:    restarts,
		Restarted:   restarted,
		FinishedAt:  time.Now().UTC(),
	}
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repo {
	return Repo{db: db}
}

func (r Repo) Record(ctx context.Context, rec CareerRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// Recent returns the newest records first. A non-empty runID limits the
// result to that run.
func (r Repo) Recent(ctx context.Context, runID string, limit int) ([]CareerRecord, error) {
	query := r.db.WithContext(ctx).Order("finished_at DESC")
	if runID != "" {
		query = query.Where(&CareerRecord{RunID: runID})
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var out []CareerRecord
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
