package repository

import (
	"errors"
	"reflect"
	"testing"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
)

func TestCreateDocumentDeduplicates(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	other := createTestCollection(t, db, user.ID)
	repo := NewDocumentRepo(db)

	first, created, err := repo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "notes",
		Content:      "the same content",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if !created {
		t.Fatal("first insert reported as duplicate")
	}

	second, created, err := repo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "different title, same content",
		Content:      "the same content",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if created {
		t.Error("duplicate content created a new row")
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing row %s, got %s", first.ID, second.ID)
	}

	// Same content in another collection is a distinct document
	third, created, err := repo.CreateDocument(&models.Document{
		CollectionID: other.ID,
		Title:        "notes",
		Content:      "the same content",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if !created || third.ID == first.ID {
		t.Error("dedup leaked across collections")
	}
}

func TestGetDocumentScoping(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	other := createTestCollection(t, db, user.ID)
	repo := NewDocumentRepo(db)

	doc, _, err := repo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "scoped",
		Content:      "body",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	if _, err := repo.GetDocumentByID(doc.ID, collection.ID); err != nil {
		t.Errorf("in-scope lookup failed: %v", err)
	}
	if _, err := repo.GetDocumentByID(doc.ID, ""); err != nil {
		t.Errorf("unscoped lookup failed: %v", err)
	}
	if _, err := repo.GetDocumentByID(doc.ID, other.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("out-of-scope lookup should be NotFound, got %v", err)
	}
}

func TestUpdateDocumentRecomputesHash(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewDocumentRepo(db)

	doc, _, err := repo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "v1",
		Content:      "first",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	oldHash := doc.ContentHash

	updated, err := repo.UpdateDocument(doc.ID, collection.ID, "v2", "second", "markdown", nil)
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if updated.ContentHash == oldHash {
		t.Error("content hash unchanged after content update")
	}
}

func TestPointIDsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewDocumentRepo(db)

	doc, _, err := repo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "indexed",
		Content:      "body",
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	if got := PointIDs(doc); got != nil {
		t.Errorf("expected no point ids, got %v", got)
	}

	want := []string{"p1", "p2", "p3"}
	if err := repo.UpdatePointIDs(doc.ID, want); err != nil {
		t.Fatalf("UpdatePointIDs failed: %v", err)
	}

	stored, err := repo.GetDocumentByID(doc.ID, "")
	if err != nil {
		t.Fatalf("GetDocumentByID failed: %v", err)
	}
	if got := PointIDs(stored); !reflect.DeepEqual(got, want) {
		t.Errorf("PointIDs = %v, want %v", got, want)
	}
}
