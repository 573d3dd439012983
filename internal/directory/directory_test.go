package directory

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"reviewgate/internal/common/errors"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/models"
	"reviewgate/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func starterSet() []models.Business {
	return []models.Business{
		{ID: "b1", Name: "Sunrise Cafe", Slug: "sunrise-cafe", ThresholdRating: 4,
			GoogleReviewURL: "https://search.google.com/local/writereview?placeid=x"},
		{ID: "b2", Name: "QuickFix Plumbing", ThresholdRating: 5},
	}
}

func setupDirectory(t *testing.T) (*Directory, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	parts := storage.NewPartitions(store, "", logger.NewTestLogger(t))
	return New(parts, starterSet(), logger.NewTestLogger(t)), store
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, stderrors.New("disk unavailable")
}
func (brokenStore) Set(context.Context, string, []byte) error {
	return stderrors.New("disk unavailable")
}
func (brokenStore) Backend() string { return "broken" }

// ==========================
// Reads
// ==========================

func TestList_SeedsOnFirstAccess(t *testing.T) {
	dir, store := setupDirectory(t)
	ctx := context.Background()

	_, found, _ := store.Get(ctx, "rf_businesses")
	assert.False(t, found)

	items, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "quickfix-plumbing", items[1].Slug)

	_, found, _ = store.Get(ctx, "rf_businesses")
	assert.True(t, found)
}

func TestList_CorruptPartitionFallsBackToSeed(t *testing.T) {
	dir, store := setupDirectory(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "rf_businesses", []byte(`{"broken":`)))

	items, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestBySlug(t *testing.T) {
	dir, _ := setupDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		slug  string
		found bool
		id    string
	}{
		{name: "exact", slug: "sunrise-cafe", found: true, id: "b1"},
		{name: "denormalized input", slug: "  Sunrise Cafe ", found: true, id: "b1"},
		{name: "derived from name", slug: "quickfix-plumbing", found: true, id: "b2"},
		{name: "unknown", slug: "nowhere", found: false},
		{name: "empty", slug: "!!!", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, found, err := dir.BySlug(ctx, tt.slug)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.id, b.ID)
		})
	}
}

func TestByID(t *testing.T) {
	dir, _ := setupDirectory(t)
	b, found, err := dir.ByID(context.Background(), "b2")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "QuickFix Plumbing", b.Name)

	_, found, err = dir.ByID(context.Background(), "b9")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIsSlugAvailable(t *testing.T) {
	dir, _ := setupDirectory(t)
	ctx := context.Background()

	ok, err := dir.IsSlugAvailable(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = dir.IsSlugAvailable(ctx, "sunrise-cafe", "")
	assert.False(t, ok)

	ok, _ = dir.IsSlugAvailable(ctx, "sunrise-cafe", "b1")
	assert.True(t, ok)

	ok, _ = dir.IsSlugAvailable(ctx, "Harbor Books", "b1")
	assert.True(t, ok)
}

// ==========================
// Writes
// ==========================

func TestSave_Upsert(t *testing.T) {
	dir, _ := setupDirectory(t)
	ctx := context.Background()

	updated, err := dir.Save(ctx, models.Business{ID: "b1", Name: "Sunrise Cafe", Slug: "Sunrise Cafe Downtown", ThresholdRating: 3})
	require.NoError(t, err)
	assert.Equal(t, "sunrise-cafe-downtown", updated.Slug)
	assert.Equal(t, "#3b82f6", updated.Theme.AccentColor)
	assert.False(t, updated.CreatedAt.IsZero())

	created, err := dir.Save(ctx, models.Business{Name: "Harbor Books"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultThresholdRating, created.ThresholdRating)

	items, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "sunrise-cafe-downtown", items[0].Slug)
	assert.Equal(t, 3.0, items[0].ThresholdRating)
	assert.Equal(t, "harbor-books", items[2].Slug)
}

func TestSave_SlugCollisionIsCallerContract(t *testing.T) {
	dir, _ := setupDirectory(t)
	ctx := context.Background()

	_, err := dir.Save(ctx, models.Business{ID: "x1", Name: "Corner Shop"})
	require.NoError(t, err)
	_, err = dir.Save(ctx, models.Business{ID: "x2", Name: "Corner Shop"})
	require.NoError(t, err, "Save itself never rejects a colliding slug")

	ok, err := dir.IsSlugAvailable(ctx, "corner-shop", "x3")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = dir.SaveChecked(ctx, models.Business{ID: "x3", Name: "Corner Shop", ThresholdRating: 4})
	assert.True(t, errors.HasCode(err, errors.ErrCodeSlugUnavailable))

	saved, err := dir.SaveChecked(ctx, models.Business{ID: "x3", Name: "Corner Shop", Slug: "corner-shop-east", ThresholdRating: 4})
	require.NoError(t, err)
	assert.Equal(t, "corner-shop-east", saved.Slug)
}

func TestSaveChecked_ValidatesFirst(t *testing.T) {
	dir, _ := setupDirectory(t)
	_, err := dir.SaveChecked(context.Background(), models.Business{ID: "x1", Name: "Bad Link", GoogleReviewURL: "not a url"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed))
}

func TestStorageFailurePropagates(t *testing.T) {
	parts := storage.NewPartitions(brokenStore{}, "", logger.NewNoOpLogger())
	dir := New(parts, starterSet(), logger.NewNoOpLogger())

	_, err := dir.List(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeStorageReadFailed))

	_, err = dir.Save(context.Background(), models.Business{ID: "b1", Name: "x"})
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func TestValidate(t *testing.T) {
	valid := models.Business{
		ID:              "b1",
		Name:            "Sunrise Cafe",
		Slug:            "sunrise-cafe",
		ThresholdRating: 4,
		GoogleReviewURL: "https://g.page/r/x/review",
		ExitRedirectURL: "https://example.com",
		Theme:           models.DefaultTheme(),
		LowRatingQuestions: []models.LowRatingQuestion{
			{ID: "q1", Prompt: "Visit type?", Type: models.QuestionSingle, Options: []string{"Dine in"}},
		},
		ContactSettings: models.ContactSettings{NotifyEmail: "ops@cafe.com", Enabled: true},
		CreatedAt:       time.Now(),
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(b *models.Business)
	}{
		{name: "missing name", mutate: func(b *models.Business) { b.Name = "" }},
		{name: "bad slug", mutate: func(b *models.Business) { b.Slug = "Sunrise Cafe" }},
		{name: "threshold too high", mutate: func(b *models.Business) { b.ThresholdRating = 6 }},
		{name: "threshold zero", mutate: func(b *models.Business) { b.ThresholdRating = 0 }},
		{name: "bad review url", mutate: func(b *models.Business) { b.GoogleReviewURL = "nope" }},
		{name: "bad accent", mutate: func(b *models.Business) { b.Theme.AccentColor = "blue" }},
		{name: "question without options", mutate: func(b *models.Business) {
			b.LowRatingQuestions = []models.LowRatingQuestion{{ID: "q1", Prompt: "?", Type: models.QuestionSingle}}
		}},
		{name: "question bad type", mutate: func(b *models.Business) {
			b.LowRatingQuestions = []models.LowRatingQuestion{{ID: "q1", Prompt: "?", Type: "grid", Options: []string{"a"}}}
		}},
		{name: "alerts without destination", mutate: func(b *models.Business) {
			b.ContactSettings = models.ContactSettings{Enabled: true}
		}},
		{name: "bad email", mutate: func(b *models.Business) { b.ContactSettings.NotifyEmail = "ops-at-cafe" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			b.LowRatingQuestions = append([]models.LowRatingQuestion(nil), valid.LowRatingQuestions...)
			tt.mutate(&b)
			err := Validate(b)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailed), "expected validation error, got %v", err)
		})
	}

	phoneOnly := valid
	phoneOnly.ContactSettings = models.ContactSettings{NotifyPhone: "+15551234567", Enabled: true}
	assert.NoError(t, Validate(phoneOnly))
}
