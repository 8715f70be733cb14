package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inkwell/contexts/contest-judging/submission-manager/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/submission-manager/domain/errors"
	"inkwell/contexts/contest-judging/submission-manager/ports"
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

func (r *Repository) CreateSubmission(ctx context.Context, submission entities.Submission) (entities.Submission, error) {
	row := submissionModel{
		ContestID:   submission.ContestID,
		TextID:      submission.TextID,
		OwnerID:     submission.OwnerID,
		AuthorID:    submission.AuthorID,
		SubmittedAt: submission.SubmittedAt.UTC(),
		Tombstoned:  submission.Tombstoned,
		WithdrawnAt: submission.WithdrawnAt,
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return entities.Submission{}, domainerrors.ErrDuplicateSubmission
		}
		return entities.Submission{}, r.logError("contest_submission_create_failed", err,
			"contest_id", submission.ContestID,
			"text_id", submission.TextID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSubmission(ctx context.Context, submissionID int64) (entities.Submission, error) {
	var row submissionModel
	err := r.conn(ctx).Where("id = ?", submissionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Submission{}, domainerrors.ErrSubmissionNotFound
		}
		return entities.Submission{}, r.logError("contest_submission_get_failed", err, "submission_id", submissionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByContestAndText(ctx context.Context, contestID int64, textID int64) (entities.Submission, bool, error) {
	var rows []submissionModel
	if err := r.conn(ctx).
		Where("contest_id = ? AND text_id = ?", contestID, textID).
		Limit(1).
		Find(&rows).
		Error; err != nil {
		return entities.Submission{}, false, r.logError("contest_submission_find_failed", err,
			"contest_id", contestID,
			"text_id", textID,
		)
	}
	if len(rows) == 0 {
		return entities.Submission{}, false, nil
	}
	return rows[0].toEntity(), true, nil
}

func (r *Repository) ListByContest(ctx context.Context, contestID int64) ([]entities.Submission, error) {
	return r.list(ctx, "contest_submission_list_failed", r.conn(ctx).Where("contest_id = ?", contestID))
}

func (r *Repository) ListByContests(ctx context.Context, contestIDs []int64) ([]entities.Submission, error) {
	if len(contestIDs) == 0 {
		return []entities.Submission{}, nil
	}
	return r.list(ctx, "contest_submission_list_many_failed", r.conn(ctx).Where("contest_id IN ?", contestIDs))
}

func (r *Repository) ListByText(ctx context.Context, textID int64) ([]entities.Submission, error) {
	return r.list(ctx, "contest_submission_list_by_text_failed", r.conn(ctx).Where("text_id = ?", textID))
}

func (r *Repository) list(_ context.Context, event string, tx *gorm.DB) ([]entities.Submission, error) {
	var rows []submissionModel
	if err := tx.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError(event, err)
	}
	items := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountActiveByAuthor(ctx context.Context, contestID int64, authorID int64) (int, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&submissionModel{}).
		Where("contest_id = ? AND author_id = ? AND tombstoned = ?", contestID, authorID, false).
		Count(&count).
		Error; err != nil {
		return 0, r.logError("contest_submission_count_failed", err, "contest_id", contestID)
	}
	return int(count), nil
}

func (r *Repository) HasParticipant(ctx context.Context, contestID int64, userID int64) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&submissionModel{}).
		Where("contest_id = ? AND (owner_id = ? OR author_id = ?)", contestID, userID, userID).
		Count(&count).
		Error; err != nil {
		return false, r.logError("contest_submission_participant_failed", err, "contest_id", contestID)
	}
	return count > 0, nil
}

func (r *Repository) TombstoneSubmission(ctx context.Context, submissionID int64, at time.Time) error {
	result := r.conn(ctx).
		Model(&submissionModel{}).
		Where("id = ?", submissionID).
		Updates(map[string]any{
			"tombstoned":   true,
			"withdrawn_at": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_submission_tombstone_failed", result.Error, "submission_id", submissionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) DeleteSubmission(ctx context.Context, submissionID int64) error {
	result := r.conn(ctx).Where("id = ?", submissionID).Delete(&submissionModel{})
	if result.Error != nil {
		return r.logError("contest_submission_delete_failed", result.Error, "submission_id", submissionID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSubmissionNotFound
	}
	return nil
}

func (r *Repository) DeleteByContest(ctx context.Context, contestID int64) (int, error) {
	result := r.conn(ctx).Where("contest_id = ?", contestID).Delete(&submissionModel{})
	if result.Error != nil {
		return 0, r.logError("contest_submission_purge_failed", result.Error, "contest_id", contestID)
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) GetText(ctx context.Context, textID int64) (entities.Text, error) {
	var row textModel
	err := r.conn(ctx).Where("id = ?", textID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Text{}, domainerrors.ErrTextNotFound
		}
		return entities.Text{}, r.logError("text_get_failed", err, "text_id", textID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetTexts(ctx context.Context, textIDs []int64) (map[int64]entities.Text, error) {
	out := make(map[int64]entities.Text, len(textIDs))
	if len(textIDs) == 0 {
		return out, nil
	}
	var rows []textModel
	if err := r.conn(ctx).Where("id IN ?", textIDs).Find(&rows).Error; err != nil {
		return nil, r.logError("text_list_failed", err)
	}
	for _, row := range rows {
		out[row.ID] = row.toEntity()
	}
	return out, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	args := append([]any{
		"event", event,
		"module", "contest-judging/submission-manager",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("submission repository operation failed", args...)
	return err
}

type submissionModel struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ContestID   int64      `gorm:"column:contest_id"`
	TextID      int64      `gorm:"column:text_id"`
	OwnerID     int64      `gorm:"column:owner_id"`
	AuthorID    int64      `gorm:"column:author_id"`
	SubmittedAt time.Time  `gorm:"column:submitted_at"`
	Tombstoned  bool       `gorm:"column:tombstoned"`
	WithdrawnAt *time.Time `gorm:"column:withdrawn_at"`
}

func (submissionModel) TableName() string { return "contest_submissions" }

func (m submissionModel) toEntity() entities.Submission {
	var withdrawnAt *time.Time
	if m.WithdrawnAt != nil {
		utc := m.WithdrawnAt.UTC()
		withdrawnAt = &utc
	}
	return entities.Submission{
		SubmissionID: m.ID,
		ContestID:    m.ContestID,
		TextID:       m.TextID,
		OwnerID:      m.OwnerID,
		AuthorID:     m.AuthorID,
		SubmittedAt:  m.SubmittedAt.UTC(),
		Tombstoned:   m.Tombstoned,
		WithdrawnAt:  withdrawnAt,
	}
}

type textModel struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	OwnerID  int64  `gorm:"column:owner_id"`
	AuthorID int64  `gorm:"column:author_id"`
	Title    string `gorm:"column:title"`
	Content  string `gorm:"column:content"`
}

func (textModel) TableName() string { return "texts" }

func (m textModel) toEntity() entities.Text {
	return entities.Text{
		TextID:   m.ID,
		OwnerID:  m.OwnerID,
		AuthorID: m.AuthorID,
		Title:    m.Title,
		Content:  m.Content,
	}
}

var (
	_ ports.SubmissionRepository = (*Repository)(nil)
	_ ports.TextCatalog          = (*Repository)(nil)
)
