package profiles_test

import (
	"errors"
	"strings"
	"testing"

	"cinehub/services/profiles"
)

func TestCreateAndListProfiles(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Evening Watcher")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected created profile to have an id")
	}
	if created.WatchProgress == nil {
		t.Fatal("expected progress map to be initialised")
	}

	list := svc.ListByUser("user-1")
	if len(list) != 1 {
		t.Fatalf("expected one profile, got %d", len(list))
	}
	if len(svc.ListByUser("user-2")) != 0 {
		t.Fatal("expected no profiles for other users")
	}
}

func TestCreateEnforcesNameRules(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := svc.Create("user-1", "  "); !errors.Is(err, profiles.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	if _, err := svc.Create("user-1", strings.Repeat("x", 51)); !errors.Is(err, profiles.ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}

	if _, err := svc.Create("user-1", "Kids"); err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := svc.Create("user-1", "kids"); !errors.Is(err, profiles.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken for case-insensitive duplicate, got %v", err)
	}

	// Another user may reuse the name.
	if _, err := svc.Create("user-2", "Kids"); err != nil {
		t.Fatalf("create for other user returned error: %v", err)
	}
}

func TestCreateEnforcesProfileLimit(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	names := []string{"One", "Two", "Three", "Four", "Five"}
	for _, name := range names {
		if _, err := svc.Create("user-1", name); err != nil {
			t.Fatalf("create %s returned error: %v", name, err)
		}
	}

	if _, err := svc.Create("user-1", "Six"); !errors.Is(err, profiles.ErrProfileLimit) {
		t.Fatalf("expected ErrProfileLimit, got %v", err)
	}
}

func TestFindByIDReturnsDeepCopy(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Main")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	copy1, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	copy1.WatchProgress["movie-1"] = 500

	copy2, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	if _, ok := copy2.WatchProgress["movie-1"]; ok {
		t.Fatal("mutating a returned copy must not change the stored document")
	}
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Main")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	profile, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	profile.WatchProgress["movie-1"] = 120
	profile.LikedContent = append(profile.LikedContent, "movie-1")

	if err := svc.Save(*profile); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	reloaded, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	if reloaded.WatchProgress["movie-1"] != 120 || !reloaded.Likes("movie-1") {
		t.Fatalf("saved state not visible: %+v", reloaded)
	}
}

// TestConcurrentSavesLastWriterWins pins down the store's concurrency
// contract: two read-modify-write cycles that interleave do not merge,
// the later Save replaces the earlier one wholesale.
func TestConcurrentSavesLastWriterWins(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Main")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	first, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	second, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}

	first.LikedContent = append(first.LikedContent, "movie-1")
	if err := svc.Save(*first); err != nil {
		t.Fatalf("save first copy: %v", err)
	}

	second.WatchProgress["movie-2"] = 480
	if err := svc.Save(*second); err != nil {
		t.Fatalf("save second copy: %v", err)
	}

	final, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	if final.WatchProgress["movie-2"] != 480 {
		t.Fatal("second writer's change should win")
	}
	if final.Likes("movie-1") {
		t.Fatal("first writer's change should be lost, not merged")
	}
}

func TestSaveUnknownProfile(t *testing.T) {
	svc, err := profiles.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Main")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	profile, err := svc.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find returned error: %v", err)
	}
	profile.ID = "missing"
	if err := svc.Save(*profile); !errors.Is(err, profiles.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestRenameAndDelete(t *testing.T) {
	dir := t.TempDir()
	svc, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	created, err := svc.Create("user-1", "Main")
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	renamed, err := svc.Rename(created.ID, "Night Owl")
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}
	if renamed.Name != "Night Owl" {
		t.Fatalf("expected renamed profile, got %q", renamed.Name)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if svc.Exists(created.ID) {
		t.Fatal("expected profile to be deleted")
	}

	// Deleted state survives a reload from disk.
	reopened, err := profiles.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reopen service: %v", err)
	}
	if reopened.Exists(created.ID) {
		t.Fatal("expected deletion to persist")
	}
}
