package interaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Store is the persistence contract for interaction records.
// Every operation is atomic for a single row; there are no multi-row transactions.
type Store interface {
	Insert(ctx context.Context, rec *Interaction, method Method) (*Interaction, error)
	UpdatePartial(ctx context.Context, id int64, patch Patch) (bool, error)
	GetByID(ctx context.Context, id int64) (*Interaction, error)
	FindByNameAndDate(ctx context.Context, hcpName, date string) ([]Summary, error)
	GetFullByNameAndDate(ctx context.Context, hcpName, date string) (*Interaction, error)
	ListAll(ctx context.Context) ([]Interaction, error)
}

var _ Store = (*BunStore)(nil)

// StoreOption customizes BunStore.
type StoreOption func(*BunStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

// BunStore persists interactions in a single SQL table through bun.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

func NewBunStore(db bun.IDB, opts ...StoreOption) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}

	store := &BunStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// CreateSchema creates the interactions table and its lookup index when missing.
func (s *BunStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Interaction)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create hcp_interactions table: %w", err)
	}

	if _, err := s.db.NewCreateIndex().
		Model((*Interaction)(nil)).
		Index("hcp_interactions_name_date_idx").
		Column("hcp_name", "interaction_date").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create hcp_interactions index: %w", err)
	}
	return nil
}

func (s *BunStore) Insert(ctx context.Context, rec *Interaction, method Method) (*Interaction, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: record is nil", ErrValidation)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown logging method %q", ErrValidation, method)
	}

	row := *rec
	row.ID = 0
	row.HCPName = strings.TrimSpace(row.HCPName)
	if row.InteractionDate != nil {
		date := strings.TrimSpace(*row.InteractionDate)
		row.InteractionDate = &date
	}
	row.LoggingMethod = method
	row.CreatedAt = s.now().UTC()
	if row.Sentiment != nil {
		canonical, err := ParseSentiment(string(*row.Sentiment))
		if err != nil {
			return nil, err
		}
		row.Sentiment = &canonical
	}
	if err := row.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	if row.ID == 0 {
		return nil, errors.New("insert interaction: no id assigned")
	}

	return s.GetByID(ctx, row.ID)
}

func (s *BunStore) UpdatePartial(ctx context.Context, id int64, patch Patch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}
	patch, err := patch.Normalize()
	if err != nil {
		return false, err
	}

	q := s.db.NewUpdate().
		Model((*Interaction)(nil)).
		Where("id = ?", id)

	if patch.HCPName != nil {
		q = q.Set("hcp_name = ?", *patch.HCPName)
	}
	if patch.InteractionType != nil {
		q = q.Set("interaction_type = ?", *patch.InteractionType)
	}
	if patch.InteractionDate != nil {
		q = q.Set("interaction_date = ?", *patch.InteractionDate)
	}
	if patch.Summary != nil {
		q = q.Set("summary = ?", *patch.Summary)
	}
	if patch.DiscussionTopics != nil {
		q = q.Set("discussion_topics = ?", patch.DiscussionTopics)
	}
	if patch.Sentiment != nil {
		q = q.Set("sentiment = ?", string(*patch.Sentiment))
	}
	if patch.Outcomes != nil {
		q = q.Set("outcomes = ?", *patch.Outcomes)
	}
	if patch.FollowUp != nil {
		q = q.Set("follow_up = ?", *patch.FollowUp)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update interaction id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update interaction id=%d rows affected: %w", id, err)
	}
	return affected > 0, nil
}

func (s *BunStore) GetByID(ctx context.Context, id int64) (*Interaction, error) {
	rec := new(Interaction)
	err := s.db.NewSelect().
		Model(rec).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get interaction id=%d: %w", id, err)
	}
	return rec, nil
}

func (s *BunStore) FindByNameAndDate(ctx context.Context, hcpName, date string) ([]Summary, error) {
	summaries := make([]Summary, 0)
	err := s.db.NewSelect().
		Model((*Interaction)(nil)).
		Column("id", "hcp_name", "interaction_date", "summary").
		Where("hcp_name = ?", strings.TrimSpace(hcpName)).
		Where("interaction_date = ?", strings.TrimSpace(date)).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx, &summaries)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find interactions by name and date: %w", err)
	}
	return summaries, nil
}

func (s *BunStore) GetFullByNameAndDate(ctx context.Context, hcpName, date string) (*Interaction, error) {
	rec := new(Interaction)
	err := s.db.NewSelect().
		Model(rec).
		Where("hcp_name = ?", strings.TrimSpace(hcpName)).
		Where("interaction_date = ?", strings.TrimSpace(date)).
		OrderExpr("created_at DESC, id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: hcp=%q date=%q", ErrNotFound, hcpName, date)
		}
		return nil, fmt.Errorf("get interaction by name and date: %w", err)
	}
	return rec, nil
}

func (s *BunStore) ListAll(ctx context.Context) ([]Interaction, error) {
	items := make([]Interaction, 0)
	err := s.db.NewSelect().
		Model(&items).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return items, nil
}
