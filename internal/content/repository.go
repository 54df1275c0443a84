package content

import "context"

// Repository is the persistence port of the content service.
//
// Create methods assign the ID and, for ordered entities, the display order.
// Delete and lookup methods return ErrNotFound (wrapped) for unknown IDs.
type Repository interface {
	ListPhotos(ctx context.Context) ([]Photo, error)
	CreatePhoto(ctx context.Context, p *Photo) error
	DeletePhoto(ctx context.Context, id string) error

	ListReasons(ctx context.Context) ([]Reason, error)
	CreateReason(ctx context.Context, r *Reason) error
	DeleteReason(ctx context.Context, id string) error

	ListQuizQuestions(ctx context.Context) ([]QuizQuestion, error)
	GetQuizQuestion(ctx context.Context, id string) (QuizQuestion, error)
	CreateQuizQuestion(ctx context.Context, q *QuizQuestion) error
	DeleteQuizQuestion(ctx context.Context, id string) error

	ListBucketItems(ctx context.Context) ([]BucketItem, error)
	CreateBucketItem(ctx context.Context, b *BucketItem) error
	DeleteBucketItem(ctx context.Context, id string) error
	ToggleBucketItem(ctx context.Context, id string) (BucketItem, error)

	ListSpecialDates(ctx context.Context) ([]SpecialDate, error)
	CreateSpecialDate(ctx context.Context, d *SpecialDate) error
	DeleteSpecialDate(ctx context.Context, id string) error

	ListMemories(ctx context.Context, ascending bool) ([]Memory, error)
	CreateMemory(ctx context.Context, m *Memory) error
	DeleteMemory(ctx context.Context, id string) error

	ListWishes(ctx context.Context, ascending bool) ([]Wish, error)
	CreateWish(ctx context.Context, w *Wish) error
	DeleteWish(ctx context.Context, id string) error

	// LatestLetter returns ErrNotFound when no letter was written yet.
	LatestLetter(ctx context.Context) (LoveLetter, error)
	// SaveLetter updates l when l.ID is set and inserts it otherwise.
	SaveLetter(ctx context.Context, l *LoveLetter) error

	// Setting returns "" for unknown keys.
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
