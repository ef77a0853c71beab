package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-tx-propagation/internal/domain/member"
)

type memberRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// executor はフローに束縛されたトランザクションを優先し、なければ素の接続を返す
func (r *MemberRepository) executor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := TxFrom(ctx); ok {
		return tx
	}
	return r.db
}

func (r *MemberRepository) Save(ctx context.Context, m *member.Member) error {
	query := `INSERT INTO members (id, username, created_at) VALUES ($1, $2, $3)`
	if _, err := r.executor(ctx).ExecContext(ctx, query, m.ID, m.Username, m.CreatedAt); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return member.ErrMemberAlreadyExists
		}
		return fmt.Errorf("会員保存に失敗: %w", err)
	}
	return nil
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) (*member.Member, error) {
	var row memberRow
	query := `SELECT id, username, created_at FROM members WHERE username = $1`
	if err := sqlx.GetContext(ctx, r.executor(ctx), &row, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, member.ErrMemberNotFound
		}
		return nil, fmt.Errorf("会員取得に失敗: %w", err)
	}
	return &member.Member{ID: row.ID, Username: row.Username, CreatedAt: row.CreatedAt}, nil
}
