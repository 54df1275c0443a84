package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tartampluch/go-valentine/internal/config"
	"github.com/tartampluch/go-valentine/internal/content"
	"github.com/tartampluch/go-valentine/internal/engine"
)

var _ content.Repository = (*Store)(nil)

// Table names.
const (
	tablePhotos       = "photos"
	tableReasons      = "reasons"
	tableQuiz         = "quiz_questions"
	tableBucket       = "bucket_list"
	tableLetters      = "love_letters"
	tableSpecialDates = "special_dates"
	tableMemories     = "memories"
	tableWishes       = "wishes"
	tableSettings     = "site_settings"
)

const (
	colsPhoto       = `id, url, caption, display_order, created_at`
	colsReason      = `id, content, display_order`
	colsQuiz        = `id, question, correct_answer, wrong_answers, display_order`
	colsBucket      = `id, content, is_completed, display_order`
	colsLetter      = `id, title, content, created_at`
	colsSpecialDate = `id, title, event_date, description, icon, is_recurring, display_order`
	colsMemory      = `id, memory_date, title, description, photo_url, category, display_order`
	colsWish        = `id, wish, x, y, created_at`
)

func queryErr(err error) error {
	return fmt.Errorf("%s: %w", config.ErrDBQuery, err)
}

func (s *Store) list(ctx context.Context, dest any, query string) error {
	if err := s.db.SelectContext(ctx, dest, s.db.Rebind(query)); err != nil {
		return queryErr(err)
	}
	return nil
}

// createOrdered assigns id and display order, then runs the named insert in the
// same transaction as the count.
func (s *Store) createOrdered(ctx context.Context, table string, id *string, order *int, insert string, arg any) error {
	if *id == "" {
		*id = uuid.NewString()
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return queryErr(err)
		}
		*order = engine.NextDisplayOrder(n)
		if _, err := tx.NamedExecContext(ctx, insert, arg); err != nil {
			return queryErr(err)
		}
		return nil
	})
}

func (s *Store) create(ctx context.Context, id *string, insert string, arg any) error {
	if *id == "" {
		*id = uuid.NewString()
	}
	if _, err := s.db.NamedExecContext(ctx, insert, arg); err != nil {
		return queryErr(err)
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return queryErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return queryErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, content.ErrNotFound)
	}
	return nil
}

func (s *Store) get(ctx context.Context, dest any, table, id, query string) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", table, id, content.ErrNotFound)
	}
	if err != nil {
		return queryErr(err)
	}
	return nil
}

// --- Photos ---

func (s *Store) ListPhotos(ctx context.Context) ([]content.Photo, error) {
	items := []content.Photo{}
	err := s.list(ctx, &items, `SELECT `+colsPhoto+` FROM photos ORDER BY display_order`)
	return items, err
}

func (s *Store) CreatePhoto(ctx context.Context, p *content.Photo) error {
	return s.createOrdered(ctx, tablePhotos, &p.ID, &p.DisplayOrder,
		`INSERT INTO photos (`+colsPhoto+`) VALUES (:id, :url, :caption, :display_order, :created_at)`, p)
}

func (s *Store) DeletePhoto(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tablePhotos, id)
}

// --- Reasons ---

func (s *Store) ListReasons(ctx context.Context) ([]content.Reason, error) {
	items := []content.Reason{}
	err := s.list(ctx, &items, `SELECT `+colsReason+` FROM reasons ORDER BY display_order`)
	return items, err
}

func (s *Store) CreateReason(ctx context.Context, r *content.Reason) error {
	return s.createOrdered(ctx, tableReasons, &r.ID, &r.DisplayOrder,
		`INSERT INTO reasons (`+colsReason+`) VALUES (:id, :content, :display_order)`, r)
}

func (s *Store) DeleteReason(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableReasons, id)
}

// --- Quiz ---

func (s *Store) ListQuizQuestions(ctx context.Context) ([]content.QuizQuestion, error) {
	items := []content.QuizQuestion{}
	err := s.list(ctx, &items, `SELECT `+colsQuiz+` FROM quiz_questions ORDER BY display_order`)
	return items, err
}

func (s *Store) GetQuizQuestion(ctx context.Context, id string) (content.QuizQuestion, error) {
	var q content.QuizQuestion
	err := s.get(ctx, &q, tableQuiz, id, `SELECT `+colsQuiz+` FROM quiz_questions WHERE id = ?`)
	return q, err
}

func (s *Store) CreateQuizQuestion(ctx context.Context, q *content.QuizQuestion) error {
	return s.createOrdered(ctx, tableQuiz, &q.ID, &q.DisplayOrder,
		`INSERT INTO quiz_questions (`+colsQuiz+`)
		VALUES (:id, :question, :correct_answer, :wrong_answers, :display_order)`, q)
}

func (s *Store) DeleteQuizQuestion(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableQuiz, id)
}

// --- Bucket list ---

func (s *Store) ListBucketItems(ctx context.Context) ([]content.BucketItem, error) {
	items := []content.BucketItem{}
	err := s.list(ctx, &items, `SELECT `+colsBucket+` FROM bucket_list ORDER BY display_order`)
	return items, err
}

func (s *Store) CreateBucketItem(ctx context.Context, b *content.BucketItem) error {
	return s.createOrdered(ctx, tableBucket, &b.ID, &b.DisplayOrder,
		`INSERT INTO bucket_list (`+colsBucket+`) VALUES (:id, :content, :is_completed, :display_order)`, b)
}

func (s *Store) DeleteBucketItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableBucket, id)
}

// ToggleBucketItem flips is_completed and returns the updated row.
func (s *Store) ToggleBucketItem(ctx context.Context, id string) (content.BucketItem, error) {
	var b content.BucketItem
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE bucket_list SET is_completed = NOT is_completed WHERE id = ?`), id)
		if err != nil {
			return queryErr(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return queryErr(err)
		} else if n == 0 {
			return fmt.Errorf("%s %s: %w", tableBucket, id, content.ErrNotFound)
		}
		if err := tx.GetContext(ctx, &b, tx.Rebind(`SELECT `+colsBucket+` FROM bucket_list WHERE id = ?`), id); err != nil {
			return queryErr(err)
		}
		return nil
	})
	return b, err
}

// --- Special dates ---

func (s *Store) ListSpecialDates(ctx context.Context) ([]content.SpecialDate, error) {
	items := []content.SpecialDate{}
	err := s.list(ctx, &items, `SELECT `+colsSpecialDate+` FROM special_dates ORDER BY display_order`)
	return items, err
}

func (s *Store) CreateSpecialDate(ctx context.Context, d *content.SpecialDate) error {
	return s.createOrdered(ctx, tableSpecialDates, &d.ID, &d.DisplayOrder,
		`INSERT INTO special_dates (`+colsSpecialDate+`)
		VALUES (:id, :title, :event_date, :description, :icon, :is_recurring, :display_order)`, d)
}

func (s *Store) DeleteSpecialDate(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableSpecialDates, id)
}

// --- Memories ---

func (s *Store) ListMemories(ctx context.Context, ascending bool) ([]content.Memory, error) {
	items := []content.Memory{}
	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}
	err := s.list(ctx, &items, `SELECT `+colsMemory+` FROM memories ORDER BY memory_date `+dir+`, display_order`)
	return items, err
}

func (s *Store) CreateMemory(ctx context.Context, m *content.Memory) error {
	return s.createOrdered(ctx, tableMemories, &m.ID, &m.DisplayOrder,
		`INSERT INTO memories (`+colsMemory+`)
		VALUES (:id, :memory_date, :title, :description, :photo_url, :category, :display_order)`, m)
}

func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableMemories, id)
}

// --- Wishes ---

func (s *Store) ListWishes(ctx context.Context, ascending bool) ([]content.Wish, error) {
	items := []content.Wish{}
	dir := "ASC"
	if !ascending {
		dir = "DESC"
	}
	err := s.list(ctx, &items, `SELECT `+colsWish+` FROM wishes ORDER BY created_at `+dir)
	return items, err
}

func (s *Store) CreateWish(ctx context.Context, w *content.Wish) error {
	return s.create(ctx, &w.ID, `INSERT INTO wishes (`+colsWish+`) VALUES (:id, :wish, :x, :y, :created_at)`, w)
}

func (s *Store) DeleteWish(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableWishes, id)
}

// --- Love letter ---

func (s *Store) LatestLetter(ctx context.Context) (content.LoveLetter, error) {
	var l content.LoveLetter
	err := s.db.GetContext(ctx, &l, `SELECT `+colsLetter+` FROM love_letters ORDER BY created_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return l, fmt.Errorf("%s: %w", tableLetters, content.ErrNotFound)
	}
	if err != nil {
		return l, queryErr(err)
	}
	return l, nil
}

func (s *Store) SaveLetter(ctx context.Context, l *content.LoveLetter) error {
	if l.ID == "" {
		return s.create(ctx, &l.ID, `INSERT INTO love_letters (`+colsLetter+`) VALUES (:id, :title, :content, :created_at)`, l)
	}

	res, err := s.db.NamedExecContext(ctx, `UPDATE love_letters SET title = :title, content = :content WHERE id = :id`, l)
	if err != nil {
		return queryErr(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return queryErr(err)
	} else if n == 0 {
		return fmt.Errorf("%s %s: %w", tableLetters, l.ID, content.ErrNotFound)
	}
	return nil
}

// --- Settings ---

func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT value FROM site_settings WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", queryErr(err)
	}
	return v, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO `+tableSettings+` (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, value)
	if err != nil {
		return queryErr(err)
	}
	return nil
}
