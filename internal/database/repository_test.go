package database

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/timearc/timearc/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := RunMigrations(db, logger); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()

	user, err := NewUserRepository(db).EnsureLocalUser(context.Background(), "local", "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestEventRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	event := &models.ActivityEvent{
		UserID:    user.ID,
		OwnerName: "Google Chrome",
		Title:     "github.com/org/repo",
		URL:       "https://github.com/org/repo",
		Browser:   "chrome",
		Timestamp: time.Now().UTC(),
	}

	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.ID == "" {
		t.Fatal("Create should generate an event id")
	}
	if event.Type != models.ActivityTypeNormal {
		t.Errorf("expected default type normal, got %q", event.Type)
	}

	got, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OwnerName != "Google Chrome" {
		t.Errorf("expected owner name Google Chrome, got %q", got.OwnerName)
	}
	if got.CategoryID != nil {
		t.Errorf("new event should be uncategorized, got category %v", *got.CategoryID)
	}
	if got.DurationMS != 0 {
		t.Errorf("new event should have zero duration, got %d", got.DurationMS)
	}
}

func TestEventRepositoryUpdateDuration(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	event := &models.ActivityEvent{UserID: user.ID, OwnerName: "Slack", Timestamp: time.Now().UTC()}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateDuration(ctx, event.ID, 42000); err != nil {
		t.Fatalf("UpdateDuration failed: %v", err)
	}

	got, err := repo.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.DurationMS != 42000 {
		t.Errorf("expected duration 42000, got %d", got.DurationMS)
	}

	if err := repo.UpdateDuration(ctx, "missing-id", 1); err == nil {
		t.Error("expected error for unknown event id")
	}
}

func TestEventRepositoryApplyCategorizationSnapshotsOldFields(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	events := NewEventRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	work := &models.Category{UserID: user.ID, Name: "Work", Productive: true}
	fun := &models.Category{UserID: user.ID, Name: "Entertainment"}
	if err := categories.Create(ctx, work); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := categories.Create(ctx, fun); err != nil {
		t.Fatalf("create category: %v", err)
	}

	event := &models.ActivityEvent{UserID: user.ID, OwnerName: "Code", Timestamp: time.Now().UTC()}
	if err := events.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	first := models.Categorization{
		CategoryID:    work.ID,
		Reasoning:     "matched app name",
		Summary:       "Editing code",
		CategorizedAt: time.Now().UTC(),
	}
	if err := events.ApplyCategorization(ctx, event.ID, first); err != nil {
		t.Fatalf("ApplyCategorization failed: %v", err)
	}

	got, err := events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CategoryID == nil || *got.CategoryID != work.ID {
		t.Fatalf("expected category %s, got %v", work.ID, got.CategoryID)
	}
	if got.OldCategoryID != nil {
		t.Errorf("first categorization should snapshot a nil old category, got %v", *got.OldCategoryID)
	}
	if got.CategorizedAt == nil {
		t.Error("categorized_at should be set")
	}

	second := models.Categorization{
		CategoryID:    fun.ID,
		Reasoning:     "manual correction",
		Summary:       "Actually a break",
		CategorizedAt: time.Now().UTC(),
	}
	if err := events.ApplyCategorization(ctx, event.ID, second); err != nil {
		t.Fatalf("ApplyCategorization failed: %v", err)
	}

	got, err = events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CategoryID == nil || *got.CategoryID != fun.ID {
		t.Fatalf("expected category %s after recategorization", fun.ID)
	}
	if got.OldCategoryID == nil || *got.OldCategoryID != work.ID {
		t.Error("recategorization should snapshot the prior category id")
	}
	if got.OldReasoning != "matched app name" {
		t.Errorf("expected old reasoning snapshot, got %q", got.OldReasoning)
	}
	if got.OldSummary != "Editing code" {
		t.Errorf("expected old summary snapshot, got %q", got.OldSummary)
	}
}

func TestEventRepositoryRecategorizeByIdentifier(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	events := NewEventRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	target := &models.Category{UserID: user.ID, Name: "Communication"}
	if err := categories.Create(ctx, target); err != nil {
		t.Fatalf("create category: %v", err)
	}

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	inRange := []models.ActivityEvent{
		{UserID: user.ID, OwnerName: "Slack", Timestamp: day.Add(9 * time.Hour)},
		{UserID: user.ID, OwnerName: "Slack", Timestamp: day.Add(15 * time.Hour)},
	}
	outOfScope := []models.ActivityEvent{
		{UserID: user.ID, OwnerName: "Code", Timestamp: day.Add(10 * time.Hour)},
		{UserID: user.ID, OwnerName: "Slack", Timestamp: day.Add(30 * time.Hour)},
	}
	for i := range inRange {
		if err := events.Create(ctx, &inRange[i]); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}
	for i := range outOfScope {
		if err := events.Create(ctx, &outOfScope[i]); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	count, err := events.RecategorizeByIdentifier(ctx, user.ID, "Slack", models.ItemTypeApp, day, day.Add(24*time.Hour), target.ID)
	if err != nil {
		t.Fatalf("RecategorizeByIdentifier failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recategorized events, got %d", count)
	}

	for _, event := range inRange {
		got, err := events.GetByID(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.CategoryID == nil || *got.CategoryID != target.ID {
			t.Errorf("event %s should be recategorized", event.ID)
		}
	}
	for _, event := range outOfScope {
		got, err := events.GetByID(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.CategoryID != nil {
			t.Errorf("event %s outside the identifier/time scope should be untouched", event.ID)
		}
	}
}

func TestEventRepositoryRecategorizeByURL(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	events := NewEventRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	target := &models.Category{UserID: user.ID, Name: "Entertainment"}
	if err := categories.Create(ctx, target); err != nil {
		t.Fatalf("create category: %v", err)
	}

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	event := &models.ActivityEvent{
		UserID:    user.ID,
		OwnerName: "Google Chrome",
		URL:       "https://youtube.com/watch?v=x",
		Timestamp: day.Add(time.Hour),
	}
	if err := events.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	count, err := events.RecategorizeByIdentifier(ctx, user.ID, "youtube.com", models.ItemTypeWebsite, day, day.Add(24*time.Hour), target.ID)
	if err != nil {
		t.Fatalf("RecategorizeByIdentifier failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 recategorized event, got %d", count)
	}
}

func TestEventRepositoryListByTimeRange(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	repo := NewEventRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		event := &models.ActivityEvent{
			UserID:    user.ID,
			OwnerName: "Code",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, event); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	got, err := repo.ListByTimeRange(ctx, user.ID, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ListByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(got))
	}
	if !got[0].Timestamp.Before(got[1].Timestamp) {
		t.Error("events should be ordered oldest first")
	}
}

func TestCategoryRepositoryDefaultsAndArchive(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	if err := repo.EnsureDefaults(ctx, user.ID); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}

	categories, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(categories) != len(models.DefaultCategoryTemplates()) {
		t.Fatalf("expected %d default categories, got %d", len(models.DefaultCategoryTemplates()), len(categories))
	}

	// EnsureDefaults is idempotent.
	if err := repo.EnsureDefaults(ctx, user.ID); err != nil {
		t.Fatalf("EnsureDefaults second run failed: %v", err)
	}
	again, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(again) != len(categories) {
		t.Fatal("EnsureDefaults should not duplicate categories")
	}

	if err := repo.Archive(ctx, categories[0].ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	active, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(active) != len(categories)-1 {
		t.Errorf("archived category should not be listed, got %d", len(active))
	}
}

func TestCategoryHardDeleteNullsEventReferences(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db)
	events := NewEventRepository(db)
	categories := NewCategoryRepository(db)
	ctx := context.Background()

	category := &models.Category{UserID: user.ID, Name: "Temp"}
	if err := categories.Create(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}

	event := &models.ActivityEvent{UserID: user.ID, OwnerName: "Code", Timestamp: time.Now().UTC()}
	if err := events.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := events.ApplyCategorization(ctx, event.ID, models.Categorization{
		CategoryID: category.ID, CategorizedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("ApplyCategorization failed: %v", err)
	}

	if err := categories.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CategoryID != nil {
		t.Error("hard-deleting a category should null out the event reference")
	}
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	value, err := repo.Get(ctx, models.SettingAIEnabled)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "" {
		t.Errorf("unset key should read empty, got %q", value)
	}

	enabled, err := repo.GetBool(ctx, models.SettingAIEnabled)
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if enabled {
		t.Error("unset boolean key should read false")
	}

	if err := repo.Set(ctx, models.SettingAIEnabled, "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	enabled, err = repo.GetBool(ctx, models.SettingAIEnabled)
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if !enabled {
		t.Error("expected true after Set")
	}

	// Overwrite.
	if err := repo.Set(ctx, models.SettingAIEnabled, "false"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	enabled, err = repo.GetBool(ctx, models.SettingAIEnabled)
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if enabled {
		t.Error("expected false after overwrite")
	}

	if err := repo.EnsureDefaults(ctx, models.SettingsDefaults()); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}
	enabled, err = repo.GetBool(ctx, models.SettingAIEnabled)
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if enabled {
		t.Error("EnsureDefaults should not overwrite an existing key")
	}
	provider, err := repo.Get(ctx, models.SettingAIProvider)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if provider != models.ProviderOllama {
		t.Errorf("expected seeded default provider, got %q", provider)
	}
}

func TestUserRepositoryEnsureLocalUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.EnsureLocalUser(ctx, "local", "hash-1")
	if err != nil {
		t.Fatalf("EnsureLocalUser failed: %v", err)
	}

	same, err := repo.EnsureLocalUser(ctx, "other", "hash-2")
	if err != nil {
		t.Fatalf("EnsureLocalUser second call failed: %v", err)
	}
	if same.ID != user.ID {
		t.Error("EnsureLocalUser should return the existing user")
	}

	if err := repo.SetGoals(ctx, user.ID, "ship the quarterly report"); err != nil {
		t.Fatalf("SetGoals failed: %v", err)
	}
	got, err := repo.GetLocal(ctx)
	if err != nil {
		t.Fatalf("GetLocal failed: %v", err)
	}
	if got.Goals != "ship the quarterly report" {
		t.Errorf("expected goals to persist, got %q", got.Goals)
	}
}
