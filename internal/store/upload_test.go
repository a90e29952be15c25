package store

import (
	"testing"

	"github.com/google/uuid"

	"refexcms/internal/models"
)

func TestUploadStoreCreateFindDelete(t *testing.T) {
	db := testDB(t)
	s := NewUploadStore(db)

	key := "pdf/" + uuid.NewString() + ".pdf"
	t.Cleanup(func() { cleanUploadsByKey(t, db, key) })

	created, err := s.Create(&models.Upload{
		Kind:         models.UploadPDF,
		OriginalName: "annual-report.pdf",
		ContentType:  "application/pdf",
		SizeBytes:    2048,
		StorageKey:   key,
		URL:          "/uploads/" + key,
		UploadedBy:   "test@store-test.local",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByID(created.ID)
	if err != nil || found == nil {
		t.Fatalf("FindByID: %v, %v", found, err)
	}
	if found.StorageKey != key || found.Kind != models.UploadPDF {
		t.Errorf("found: %+v", found)
	}

	list, err := s.List(50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var listed bool
	for _, u := range list {
		if u.ID == created.ID {
			listed = true
		}
	}
	if !listed {
		t.Error("created upload missing from List")
	}

	deleted, err := s.Delete(created.ID)
	if err != nil || deleted == nil {
		t.Fatalf("Delete: %v, %v", deleted, err)
	}
	if again, _ := s.FindByID(created.ID); again != nil {
		t.Error("upload still present after Delete")
	}
}
