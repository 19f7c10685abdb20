package main

import (
	"context"
	"strings"
	"testing"

	"github.com/careportal/careportal/internal/platform/auth"
	"github.com/careportal/careportal/internal/platform/upload"
)

func TestUploaderAdapter_ReturnsURL(t *testing.T) {
	store := upload.NewMemoryStore(1 << 20)
	a := &uploaderAdapter{store: store}

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "doc-1", Role: auth.RoleDoctor})
	url, err := a.UploadFile(ctx, "imaging", "scan.png", "image/png", strings.NewReader("pngdata"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "/api/upload/imaging/") {
		t.Errorf("unexpected url %q", url)
	}
}

func TestUploaderAdapter_UnknownKind(t *testing.T) {
	store := upload.NewMemoryStore(1 << 20)
	a := &uploaderAdapter{store: store}

	_, err := a.UploadFile(context.Background(), "screenshots", "x.png", "image/png", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error for unknown upload kind")
	}
}

func TestUploaderAdapter_StampsUploader(t *testing.T) {
	store := upload.NewMemoryStore(1 << 20)
	a := &uploaderAdapter{store: store}

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "doc-9", Role: auth.RoleDoctor})
	url, err := a.UploadFile(ctx, "documents", "note.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := url[strings.LastIndex(url, "/")+1:]
	rc, obj, err := store.Open(context.Background(), id)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rc.Close()
	if obj.UploadedBy != "doc-9" {
		t.Errorf("uploadedBy = %q, want doc-9", obj.UploadedBy)
	}
}
