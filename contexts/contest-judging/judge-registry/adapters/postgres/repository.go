package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"inkwell/contexts/contest-judging/judge-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/judge-registry/domain/errors"
	"inkwell/contexts/contest-judging/judge-registry/ports"
	"inkwell/internal/platform/db"

	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(gormDB *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: gormDB, logger: logger}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *Repository) CreateAssignment(ctx context.Context, assignment entities.Assignment) error {
	row := judgeModelFromEntity(assignment)
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domainerrors.ErrJudgeAlreadyAssigned
		}
		return r.logError("contest_judge_create_failed", err,
			"contest_id", assignment.ContestID,
			"judge_key", row.JudgeKey,
		)
	}
	return nil
}

func (r *Repository) DeleteAssignment(ctx context.Context, contestID int64, judgeKey string) error {
	result := r.conn(ctx).
		Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
		Delete(&judgeModel{})
	if result.Error != nil {
		return r.logError("contest_judge_delete_failed", result.Error, "contest_id", contestID, "judge_key", judgeKey)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrJudgeNotFound
	}
	return nil
}

func (r *Repository) ListAssignments(ctx context.Context, contestID int64) ([]entities.Assignment, error) {
	var rows []judgeModel
	if err := r.conn(ctx).
		Where("contest_id = ?", contestID).
		Order("assigned_at ASC, judge_key ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("contest_judge_list_failed", err, "contest_id", contestID)
	}
	items := make([]entities.Assignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) IsAssigned(ctx context.Context, contestID int64, judgeKey string) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&judgeModel{}).
		Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
		Count(&count).
		Error; err != nil {
		return false, r.logError("contest_judge_lookup_failed", err, "contest_id", contestID, "judge_key", judgeKey)
	}
	return count > 0, nil
}

func (r *Repository) IsUserAssigned(ctx context.Context, contestID int64, userID int64) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&judgeModel{}).
		Where("contest_id = ? AND judge_kind = ? AND user_id = ?", contestID, string(entities.JudgeKindHuman), userID).
		Count(&count).
		Error; err != nil {
		return false, r.logError("contest_judge_user_lookup_failed", err, "contest_id", contestID, "user_id", userID)
	}
	return count > 0, nil
}

func (r *Repository) DeleteByContest(ctx context.Context, contestID int64) (int, error) {
	result := r.conn(ctx).Where("contest_id = ?", contestID).Delete(&judgeModel{})
	if result.Error != nil {
		return 0, r.logError("contest_judge_purge_failed", result.Error, "contest_id", contestID)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	args := append([]any{
		"event", event,
		"module", "contest-judging/judge-registry",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("judge repository operation failed", args...)
	return err
}

type judgeModel struct {
	ContestID  int64     `gorm:"column:contest_id;primaryKey"`
	JudgeKey   string    `gorm:"column:judge_key;primaryKey"`
	JudgeKind  string    `gorm:"column:judge_kind"`
	UserID     *int64    `gorm:"column:user_id"`
	AgentID    *int64    `gorm:"column:agent_id"`
	Model      *string   `gorm:"column:model"`
	AssignedBy int64     `gorm:"column:assigned_by"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (judgeModel) TableName() string { return "contest_judges" }

func judgeModelFromEntity(item entities.Assignment) judgeModel {
	row := judgeModel{
		ContestID:  item.ContestID,
		JudgeKey:   item.Judge.Key(),
		JudgeKind:  string(item.Judge.Kind),
		AssignedBy: item.AssignedBy,
		AssignedAt: item.AssignedAt.UTC(),
	}
	if item.Judge.Kind == entities.JudgeKindAI {
		agentID, model := item.Judge.AgentID, item.Judge.Model
		row.AgentID = &agentID
		row.Model = &model
	} else {
		userID := item.Judge.UserID
		row.UserID = &userID
	}
	return row
}

func (m judgeModel) toEntity() entities.Assignment {
	judge := entities.JudgeIdentity{Kind: entities.JudgeKind(m.JudgeKind)}
	if m.UserID != nil {
		judge.UserID = *m.UserID
	}
	if m.AgentID != nil {
		judge.AgentID = *m.AgentID
	}
	if m.Model != nil {
		judge.Model = *m.Model
	}
	return entities.Assignment{
		ContestID:  m.ContestID,
		Judge:      judge,
		AssignedBy: m.AssignedBy,
		AssignedAt: m.AssignedAt.UTC(),
	}
}

var _ ports.AssignmentRepository = (*Repository)(nil)
