package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorage(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("SaveFile", func(t *testing.T) {
		content := []byte("fake mp4 bytes")
		info := FileInfo{
			Filename:    "lecture.mp4",
			ContentType: "video/mp4",
			Size:        int64(len(content)),
		}

		name, err := store.SaveFile(bytes.NewReader(content), info)
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if filepath.Ext(name) != ".mp4" {
			t.Errorf("Expected .mp4 extension, got %s", filepath.Ext(name))
		}

		saved, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			t.Fatalf("Saved file unreadable: %v", err)
		}
		if !bytes.Equal(saved, content) {
			t.Error("Saved content does not match upload")
		}
	})

	t.Run("SaveFile default extension", func(t *testing.T) {
		name, err := store.SaveFile(bytes.NewReader([]byte("x")), FileInfo{Filename: "noext"})
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if filepath.Ext(name) != ".mp4" {
			t.Errorf("Expected fallback .mp4 extension, got %s", filepath.Ext(name))
		}
	})

	t.Run("OpenFile", func(t *testing.T) {
		content := []byte("stream me")
		if err := os.WriteFile(filepath.Join(tmpDir, "existing.mp4"), content, 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		file, err := store.OpenFile("existing.mp4")
		if err != nil {
			t.Fatalf("Failed to open file: %v", err)
		}
		defer file.Close()

		buf := make([]byte, len(content))
		if _, err := file.Read(buf); err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if !bytes.Equal(buf, content) {
			t.Error("File content mismatch")
		}
	})

	t.Run("DeleteFile", func(t *testing.T) {
		path := filepath.Join(tmpDir, "doomed.mp4")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		if err := store.DeleteFile("doomed.mp4"); err != nil {
			t.Fatalf("Failed to delete file: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("File was not deleted")
		}
	})

	t.Run("FilePath", func(t *testing.T) {
		if got := store.FilePath("abc.mp4"); got != filepath.Join(tmpDir, "abc.mp4") {
			t.Errorf("Unexpected file path %s", got)
		}
	})

	t.Run("PathTraversalPrevention", func(t *testing.T) {
		if _, err := store.OpenFile("../../../etc/passwd"); err == nil {
			t.Error("Path traversal was not prevented in open")
		}
		if err := store.DeleteFile("../../../etc/passwd"); err == nil {
			t.Error("Path traversal was not prevented in delete")
		}
	})
}
