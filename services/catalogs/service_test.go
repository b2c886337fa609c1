package catalogs_test

import (
	"errors"
	"testing"

	"cinehub/models"
	"cinehub/services/catalogs"
)

func newService(t *testing.T, dir string) *catalogs.Service {
	t.Helper()
	svc, err := catalogs.NewService(dir)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newService(t, t.TempDir())

	catalog, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Weekend Picks"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if catalog.ID == "" {
		t.Fatal("expected generated id")
	}
	if catalog.Type != models.CatalogTypeCustom {
		t.Fatalf("expected custom type, got %q", catalog.Type)
	}
	if catalog.ContentIDs == nil || len(catalog.ContentIDs) != 0 {
		t.Fatalf("expected empty content list, got %v", catalog.ContentIDs)
	}
	if catalog.ProfileID != "profile-1" {
		t.Fatalf("expected owner profile-1, got %q", catalog.ProfileID)
	}
	if catalog.CreatedAt.IsZero() || catalog.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, t.TempDir())

	if _, err := svc.Create("", models.CatalogUpsert{Name: "x"}); !errors.Is(err, catalogs.ErrProfileIDRequired) {
		t.Fatalf("expected ErrProfileIDRequired, got %v", err)
	}
	if _, err := svc.Create("profile-1", models.CatalogUpsert{Name: "   "}); !errors.Is(err, catalogs.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create("profile-1", models.CatalogUpsert{Name: "x", Type: "playlist"}); !errors.Is(err, catalogs.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateRejectsDuplicateNamesPerProfile(t *testing.T) {
	svc := newService(t, t.TempDir())

	if _, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Favorites"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create("profile-1", models.CatalogUpsert{Name: "FAVORITES"}); !errors.Is(err, catalogs.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken for case-insensitive match, got %v", err)
	}

	// A different profile may reuse the name.
	if _, err := svc.Create("profile-2", models.CatalogUpsert{Name: "Favorites"}); err != nil {
		t.Fatalf("other profile should reuse name: %v", err)
	}
}

func TestUpdateRenamesButKeepsType(t *testing.T) {
	svc := newService(t, t.TempDir())

	created, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Old Name", Type: models.CatalogTypeWatchlist})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Taken"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update("profile-1", created.ID, models.CatalogUpsert{Name: "New Name", Description: "refreshed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Name" || updated.Description != "refreshed" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Type != models.CatalogTypeWatchlist {
		t.Fatalf("type should not change on update, got %q", updated.Type)
	}

	if _, err := svc.Update("profile-1", created.ID, models.CatalogUpsert{Name: other.Name}); !errors.Is(err, catalogs.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken renaming onto %q, got %v", other.Name, err)
	}
}

func TestAddContentDeduplicates(t *testing.T) {
	svc := newService(t, t.TempDir())

	created, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Queue"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AddContent("profile-1", created.ID, "movie-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	catalog, err := svc.AddContent("profile-1", created.ID, "movie-1")
	if err != nil {
		t.Fatalf("second add should be a no-op: %v", err)
	}
	if len(catalog.ContentIDs) != 1 {
		t.Fatalf("expected a single entry, got %v", catalog.ContentIDs)
	}

	if _, err := svc.AddContent("profile-1", created.ID, ""); !errors.Is(err, catalogs.ErrContentIDRequired) {
		t.Fatalf("expected ErrContentIDRequired, got %v", err)
	}
}

func TestRemoveContentAbsentIsNoOp(t *testing.T) {
	svc := newService(t, t.TempDir())

	created, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Queue"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddContent("profile-1", created.ID, "movie-1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	catalog, err := svc.RemoveContent("profile-1", created.ID, "never-added")
	if err != nil {
		t.Fatalf("removing an absent id should succeed: %v", err)
	}
	if len(catalog.ContentIDs) != 1 {
		t.Fatalf("expected untouched list, got %v", catalog.ContentIDs)
	}

	catalog, err = svc.RemoveContent("profile-1", created.ID, "movie-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(catalog.ContentIDs) != 0 {
		t.Fatalf("expected empty list, got %v", catalog.ContentIDs)
	}
}

func TestGetAndDelete(t *testing.T) {
	svc := newService(t, t.TempDir())

	created, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Queue"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get("profile-1", created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Get("profile-1", "missing"); !errors.Is(err, catalogs.ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound, got %v", err)
	}
	if _, err := svc.Get("profile-2", created.ID); !errors.Is(err, catalogs.ErrCatalogNotFound) {
		t.Fatalf("other profiles must not see the catalog, got %v", err)
	}

	if err := svc.Delete("profile-1", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete("profile-1", created.ID); !errors.Is(err, catalogs.ErrCatalogNotFound) {
		t.Fatalf("expected ErrCatalogNotFound on second delete, got %v", err)
	}
}

func TestDeleteByProfileRemovesEverything(t *testing.T) {
	svc := newService(t, t.TempDir())

	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := svc.Create("profile-1", models.CatalogUpsert{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	kept, err := svc.Create("profile-2", models.CatalogUpsert{Name: "Keep"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteByProfile("profile-1"); err != nil {
		t.Fatalf("delete by profile: %v", err)
	}

	listed, err := svc.ListByProfile("profile-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no catalogs left, got %d", len(listed))
	}
	if _, err := svc.Get("profile-2", kept.ID); err != nil {
		t.Fatalf("other profile's catalog must survive: %v", err)
	}
}

func TestPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, dir)

	created, err := svc.Create("profile-1", models.CatalogUpsert{Name: "Queue", IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddContent("profile-1", created.ID, "movie-1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := newService(t, dir)
	catalog, err := reloaded.Get("profile-1", created.ID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if catalog.Name != "Queue" || !catalog.IsPublic {
		t.Fatalf("unexpected reloaded catalog: %+v", catalog)
	}
	if len(catalog.ContentIDs) != 1 || catalog.ContentIDs[0] != "movie-1" {
		t.Fatalf("expected content to persist, got %v", catalog.ContentIDs)
	}
}
