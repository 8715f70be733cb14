package postgresadapter

import (
	"context"
	"log/slog"
	"time"

	"inkwell/contexts/contest-judging/voting-engine/domain/entities"
	"inkwell/contexts/contest-judging/voting-engine/ports"
	"inkwell/internal/platform/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// ReplaceVoteSet runs the delete and insert in the caller's transaction, or
// in its own when none is carried by ctx.
func (r *Repository) ReplaceVoteSet(ctx context.Context, contestID int64, judgeKey string, castAt time.Time, votes []entities.Vote) error {
	return db.NewTransactor(r.db).WithinTx(ctx, func(ctx context.Context) error {
		header := voteSetModel{ContestID: contestID, JudgeKey: judgeKey, CastAt: castAt.UTC()}
		if err := r.conn(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "contest_id"}, {Name: "judge_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"cast_at"}),
			}).
			Create(&header).
			Error; err != nil {
			return r.logError("contest_vote_set_record_failed", err, "contest_id", contestID, "judge_key", judgeKey)
		}
		if err := r.conn(ctx).
			Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
			Delete(&voteModel{}).
			Error; err != nil {
			return r.logError("contest_vote_set_delete_failed", err, "contest_id", contestID, "judge_key", judgeKey)
		}
		if len(votes) == 0 {
			return nil
		}
		rows := make([]voteModel, 0, len(votes))
		for _, vote := range votes {
			rows = append(rows, voteModelFromEntity(vote))
		}
		if err := r.conn(ctx).Create(&rows).Error; err != nil {
			return r.logError("contest_vote_set_insert_failed", err, "contest_id", contestID, "judge_key", judgeKey)
		}
		return nil
	})
}

func (r *Repository) ListVotes(ctx context.Context, contestID int64) ([]entities.Vote, error) {
	return r.listVotes(ctx, r.conn(ctx).Where("contest_id = ?", contestID))
}

func (r *Repository) ListVoteSet(ctx context.Context, contestID int64, judgeKey string) ([]entities.Vote, error) {
	return r.listVotes(ctx, r.conn(ctx).Where("contest_id = ? AND judge_key = ?", contestID, judgeKey))
}

func (r *Repository) listVotes(_ context.Context, tx *gorm.DB) ([]entities.Vote, error) {
	var rows []voteModel
	if err := tx.Order("judge_key ASC, submission_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("contest_vote_list_failed", err)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListVoters(ctx context.Context, contestID int64) ([]string, error) {
	var keys []string
	if err := r.conn(ctx).
		Model(&voteSetModel{}).
		Where("contest_id = ?", contestID).
		Order("judge_key ASC").
		Pluck("judge_key", &keys).
		Error; err != nil {
		return nil, r.logError("contest_voter_list_failed", err, "contest_id", contestID)
	}
	return keys, nil
}

func (r *Repository) HasVoteSet(ctx context.Context, contestID int64, judgeKey string) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&voteSetModel{}).
		Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
		Count(&count).
		Error; err != nil {
		return false, r.logError("contest_vote_lookup_failed", err, "contest_id", contestID, "judge_key", judgeKey)
	}
	return count > 0, nil
}

func (r *Repository) DeleteVoteSet(ctx context.Context, contestID int64, judgeKey string) (int, error) {
	removed := 0
	err := db.NewTransactor(r.db).WithinTx(ctx, func(ctx context.Context) error {
		result := r.conn(ctx).
			Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
			Delete(&voteModel{})
		if result.Error != nil {
			return r.logError("contest_vote_set_drop_failed", result.Error, "contest_id", contestID, "judge_key", judgeKey)
		}
		removed = int(result.RowsAffected)
		if err := r.conn(ctx).
			Where("contest_id = ? AND judge_key = ?", contestID, judgeKey).
			Delete(&voteSetModel{}).
			Error; err != nil {
			return r.logError("contest_vote_set_drop_failed", err, "contest_id", contestID, "judge_key", judgeKey)
		}
		return nil
	})
	return removed, err
}

func (r *Repository) DeleteByContest(ctx context.Context, contestID int64) (int, error) {
	removed := 0
	err := db.NewTransactor(r.db).WithinTx(ctx, func(ctx context.Context) error {
		result := r.conn(ctx).Where("contest_id = ?", contestID).Delete(&voteModel{})
		if result.Error != nil {
			return r.logError("contest_vote_purge_failed", result.Error, "contest_id", contestID)
		}
		removed = int(result.RowsAffected)
		if err := r.conn(ctx).Where("contest_id = ?", contestID).Delete(&voteSetModel{}).Error; err != nil {
			return r.logError("contest_vote_purge_failed", err, "contest_id", contestID)
		}
		return nil
	})
	return removed, err
}

func (r *Repository) SaveFinalRanking(ctx context.Context, ranking entities.FinalRanking) error {
	return db.NewTransactor(r.db).WithinTx(ctx, func(ctx context.Context) error {
		if err := r.conn(ctx).Where("contest_id = ?", ranking.ContestID).Delete(&rankingModel{}).Error; err != nil {
			return r.logError("contest_ranking_clear_failed", err, "contest_id", ranking.ContestID)
		}
		if len(ranking.Standings) == 0 {
			return nil
		}
		rows := make([]rankingModel, 0, len(ranking.Standings))
		for _, standing := range ranking.Standings {
			rows = append(rows, rankingModel{
				ContestID:    ranking.ContestID,
				SubmissionID: standing.SubmissionID,
				Rank:         standing.Rank,
				Points:       standing.Points,
				FirstPlaces:  standing.FirstPlaces,
				SecondPlaces: standing.SecondPlaces,
				ThirdPlaces:  standing.ThirdPlaces,
				FrozenAt:     ranking.FrozenAt.UTC(),
			})
		}
		if err := r.conn(ctx).Create(&rows).Error; err != nil {
			return r.logError("contest_ranking_save_failed", err, "contest_id", ranking.ContestID)
		}
		return nil
	})
}

// GetFinalRanking reports found=false for a contest that was never frozen.
// A frozen contest without submissions has no rows either, so it reads as
// not frozen and is ranked live.
func (r *Repository) GetFinalRanking(ctx context.Context, contestID int64) (entities.FinalRanking, bool, error) {
	var rows []rankingModel
	if err := r.conn(ctx).
		Where("contest_id = ?", contestID).
		Order("rank ASC, submission_id ASC").
		Find(&rows).
		Error; err != nil {
		return entities.FinalRanking{}, false, r.logError("contest_ranking_get_failed", err, "contest_id", contestID)
	}
	if len(rows) == 0 {
		return entities.FinalRanking{}, false, nil
	}
	ranking := entities.FinalRanking{
		ContestID: contestID,
		Standings: make([]entities.Standing, 0, len(rows)),
		FrozenAt:  rows[0].FrozenAt.UTC(),
	}
	for _, row := range rows {
		ranking.Standings = append(ranking.Standings, entities.Standing{
			SubmissionID: row.SubmissionID,
			Rank:         row.Rank,
			Points:       row.Points,
			FirstPlaces:  row.FirstPlaces,
			SecondPlaces: row.SecondPlaces,
			ThirdPlaces:  row.ThirdPlaces,
		})
	}
	return ranking, true, nil
}

func (r *Repository) DeleteFinalRanking(ctx context.Context, contestID int64) error {
	if err := r.conn(ctx).Where("contest_id = ?", contestID).Delete(&rankingModel{}).Error; err != nil {
		return r.logError("contest_ranking_delete_failed", err, "contest_id", contestID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	args := append([]any{
		"event", event,
		"module", "contest-judging/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, attrs...)
	r.logger.Error("vote repository operation failed", args...)
	return err
}

type voteModel struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	ContestID    int64     `gorm:"column:contest_id"`
	SubmissionID int64     `gorm:"column:submission_id"`
	JudgeKey     string    `gorm:"column:judge_key"`
	JudgeKind    string    `gorm:"column:judge_kind"`
	UserID       *int64    `gorm:"column:user_id"`
	AgentID      *int64    `gorm:"column:agent_id"`
	Model        *string   `gorm:"column:model"`
	BaseVersion  *string   `gorm:"column:base_version"`
	Place        *int      `gorm:"column:place"`
	Comment      string    `gorm:"column:comment"`
	CastAt       time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string { return "contest_votes" }

// voteSetModel marks that a judge submitted a vote set. An empty set has a
// header and no vote rows.
type voteSetModel struct {
	ContestID int64     `gorm:"column:contest_id;primaryKey"`
	JudgeKey  string    `gorm:"column:judge_key;primaryKey"`
	CastAt    time.Time `gorm:"column:cast_at"`
}

func (voteSetModel) TableName() string { return "contest_vote_sets" }

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:           vote.VoteID,
		ContestID:    vote.ContestID,
		SubmissionID: vote.SubmissionID,
		JudgeKey:     vote.Judge.Key(),
		JudgeKind:    string(vote.Judge.Kind),
		Place:        vote.Place,
		Comment:      vote.Comment,
		CastAt:       vote.CastAt.UTC(),
	}
	if vote.Judge.Kind == entities.JudgeKindAI {
		agentID, model := vote.Judge.AgentID, vote.Judge.Model
		row.AgentID = &agentID
		row.Model = &model
	} else {
		userID := vote.Judge.UserID
		row.UserID = &userID
	}
	if vote.BaseVersion != "" {
		baseVersion := vote.BaseVersion
		row.BaseVersion = &baseVersion
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
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
	vote := entities.Vote{
		VoteID:       m.ID,
		ContestID:    m.ContestID,
		SubmissionID: m.SubmissionID,
		Judge:        judge,
		Place:        m.Place,
		Comment:      m.Comment,
		CastAt:       m.CastAt.UTC(),
	}
	if m.BaseVersion != nil {
		vote.BaseVersion = *m.BaseVersion
	}
	return vote
}

type rankingModel struct {
	ContestID    int64     `gorm:"column:contest_id;primaryKey"`
	SubmissionID int64     `gorm:"column:submission_id;primaryKey"`
	Rank         int       `gorm:"column:rank"`
	Points       int       `gorm:"column:points"`
	FirstPlaces  int       `gorm:"column:first_places"`
	SecondPlaces int       `gorm:"column:second_places"`
	ThirdPlaces  int       `gorm:"column:third_places"`
	FrozenAt     time.Time `gorm:"column:frozen_at"`
}

func (rankingModel) TableName() string { return "contest_final_rankings" }

var (
	_ ports.VoteRepository    = (*Repository)(nil)
	_ ports.RankingRepository = (*Repository)(nil)
)
