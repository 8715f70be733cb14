package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"inkwell/contexts/contest-judging/contest-registry/domain/entities"
	domainerrors "inkwell/contexts/contest-judging/contest-registry/domain/errors"
	"inkwell/contexts/contest-judging/contest-registry/ports"
	"inkwell/internal/platform/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(gormDB *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     gormDB,
		logger: logger,
	}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *Repository) CreateContest(ctx context.Context, contest entities.Contest) (entities.Contest, error) {
	row := contestModelFromEntity(contest)
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return entities.Contest{}, r.logError("contest_create_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateContest(ctx context.Context, contest entities.Contest) error {
	result := r.conn(ctx).
		Model(&contestModel{}).
		Where("id = ?", contest.ContestID).
		Updates(map[string]any{
			"title":                      contest.Title,
			"description":                contest.Description,
			"is_public":                  contest.IsPublic,
			"password_protected":         contest.PasswordProtected,
			"password_hash":              contest.PasswordHash,
			"min_votes_required":         contest.MinVotesRequired,
			"judges_excluded_as_authors": contest.JudgesExcludedAsAuthors,
			"one_submission_per_author":  contest.OneSubmissionPerAuthor,
			"ends_at":                    contest.EndsAt,
			"updated_at":                 contest.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_update_failed", result.Error, "contest_id", contest.ContestID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContestNotFound
	}
	return nil
}

func (r *Repository) GetContest(ctx context.Context, contestID int64) (entities.Contest, error) {
	var row contestModel
	err := r.conn(ctx).
		Where("id = ?", contestID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, domainerrors.ErrContestNotFound
		}
		return entities.Contest{}, r.logError("contest_get_failed", err, "contest_id", contestID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListContests(ctx context.Context, filter ports.ContestFilter) ([]entities.Contest, error) {
	tx := r.conn(ctx).Model(&contestModel{})
	if !filter.All {
		if filter.PublicOrCreatorID != 0 {
			tx = tx.Where("is_public = ? OR creator_id = ?", true, filter.PublicOrCreatorID)
		} else {
			tx = tx.Where("is_public = ?", true)
		}
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []contestModel
	if err := tx.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_list_failed", err)
	}
	items := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteContest(ctx context.Context, contestID int64) error {
	result := r.conn(ctx).Where("id = ?", contestID).Delete(&contestModel{})
	if result.Error != nil {
		return r.logError("contest_delete_failed", result.Error, "contest_id", contestID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrContestNotFound
	}
	return nil
}

func (r *Repository) CompareAndSetStatus(
	ctx context.Context,
	contestID int64,
	from entities.ContestStatus,
	to entities.ContestStatus,
	at time.Time,
) (bool, error) {
	result := r.conn(ctx).
		Model(&contestModel{}).
		Where("id = ? AND status = ?", contestID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("contest_status_cas_failed", result.Error,
			"contest_id", contestID,
			"from_status", string(from),
			"to_status", string(to),
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []contestModel
	if err := r.conn(ctx).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at < ?", string(entities.ContestStatusOpen), now.UTC()).
		Order("ends_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("contest_list_expired_failed", err)
	}
	items := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendState(ctx context.Context, item entities.StateHistory) error {
	row := stateHistoryModel{
		HistoryID:    item.HistoryID,
		ContestID:    item.ContestID,
		FromState:    string(item.FromState),
		ToState:      string(item.ToState),
		ChangedBy:    item.ChangedBy,
		ChangeReason: item.ChangeReason,
		CreatedAt:    item.CreatedAt.UTC(),
	}
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		return r.logError("contest_state_history_append_failed", err, "contest_id", item.ContestID)
	}
	return nil
}

func (r *Repository) ListStates(ctx context.Context, contestID int64) ([]entities.StateHistory, error) {
	var rows []stateHistoryModel
	if err := r.conn(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("contest_state_history_list_failed", err, "contest_id", contestID)
	}
	items := make([]entities.StateHistory, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.StateHistory{
			HistoryID:    row.HistoryID,
			ContestID:    row.ContestID,
			FromState:    entities.ContestStatus(row.FromState),
			ToState:      entities.ContestStatus(row.ToState),
			ChangedBy:    row.ChangedBy,
			ChangeReason: row.ChangeReason,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error; err != nil {
		return r.logError("contest_outbox_append_failed", err, "event_type", row.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.conn(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, r.logError("contest_outbox_list_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.conn(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("contest_outbox_mark_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidContestInput
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	args := append([]any{
		"event", event,
		"module", "contest-judging/contest-registry",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("contest repository operation failed", args...)
	return err
}

type contestModel struct {
	ID                      int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Title                   string     `gorm:"column:title"`
	Description             string     `gorm:"column:description"`
	CreatorID               int64      `gorm:"column:creator_id"`
	Status                  string     `gorm:"column:status"`
	IsPublic                bool       `gorm:"column:is_public"`
	PasswordProtected       bool       `gorm:"column:password_protected"`
	PasswordHash            string     `gorm:"column:password_hash"`
	MinVotesRequired        *int       `gorm:"column:min_votes_required"`
	JudgesExcludedAsAuthors bool       `gorm:"column:judges_excluded_as_authors"`
	OneSubmissionPerAuthor  bool       `gorm:"column:one_submission_per_author"`
	EndsAt                  *time.Time `gorm:"column:ends_at"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	UpdatedAt               time.Time  `gorm:"column:updated_at"`
}

func (contestModel) TableName() string { return "contests" }

func contestModelFromEntity(contest entities.Contest) contestModel {
	return contestModel{
		ID:                      contest.ContestID,
		Title:                   contest.Title,
		Description:             contest.Description,
		CreatorID:               contest.CreatorID,
		Status:                  string(contest.Status),
		IsPublic:                contest.IsPublic,
		PasswordProtected:       contest.PasswordProtected,
		PasswordHash:            contest.PasswordHash,
		MinVotesRequired:        contest.MinVotesRequired,
		JudgesExcludedAsAuthors: contest.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  contest.OneSubmissionPerAuthor,
		EndsAt:                  contest.EndsAt,
		CreatedAt:               contest.CreatedAt.UTC(),
		UpdatedAt:               contest.UpdatedAt.UTC(),
	}
}

func (m contestModel) toEntity() entities.Contest {
	var endsAt *time.Time
	if m.EndsAt != nil {
		utc := m.EndsAt.UTC()
		endsAt = &utc
	}
	return entities.Contest{
		ContestID:               m.ID,
		Title:                   m.Title,
		Description:             m.Description,
		CreatorID:               m.CreatorID,
		Status:                  entities.ContestStatus(m.Status),
		IsPublic:                m.IsPublic,
		PasswordProtected:       m.PasswordProtected,
		PasswordHash:            m.PasswordHash,
		MinVotesRequired:        m.MinVotesRequired,
		JudgesExcludedAsAuthors: m.JudgesExcludedAsAuthors,
		OneSubmissionPerAuthor:  m.OneSubmissionPerAuthor,
		EndsAt:                  endsAt,
		CreatedAt:               m.CreatedAt.UTC(),
		UpdatedAt:               m.UpdatedAt.UTC(),
	}
}

type stateHistoryModel struct {
	HistoryID    string    `gorm:"column:history_id;primaryKey"`
	ContestID    int64     `gorm:"column:contest_id"`
	FromState    string    `gorm:"column:from_state"`
	ToState      string    `gorm:"column:to_state"`
	ChangedBy    int64     `gorm:"column:changed_by"`
	ChangeReason string    `gorm:"column:change_reason"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (stateHistoryModel) TableName() string { return "contest_state_history" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "contest_outbox" }

var (
	_ ports.ContestRepository = (*Repository)(nil)
	_ ports.HistoryRepository = (*Repository)(nil)
	_ ports.OutboxWriter      = (*Repository)(nil)
	_ ports.OutboxRepository  = (*Repository)(nil)
)
