package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
)

var ErrNotFound = errors.New("user not found")

type Model struct {
	bun.BaseModel `bun:"table:shop_user"`

	Id        int64     `bun:",pk,autoincrement"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Email     string    `bun:",notnull,unique"`
	Name      string    `bun:",notnull"`
}

type Store struct {
	DB *bun.DB
}

func (s *Store) ById(ctx context.Context, id int64) (*Model, error) {
	model := new(Model)
	err := s.DB.NewSelect().
		Model(model).
		Where("id=?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return model, nil
}
