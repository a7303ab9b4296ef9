package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
}

func TestLoaderRun(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "b.md", "---\ntitle: B\n---\nbody b\n")
	writeDoc(t, root, "a/nested.mdx", "---\ntitle: Nested\nid: nested\n---\n")
	writeDoc(t, root, "notes.txt", "ignored")
	writeDoc(t, root, "c.MD", "# no frontmatter\n")

	docs, err := NewLoader(root).Run()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}

	expectedNames := []string{"nested.mdx", "b.md", "c.MD"}
	for i, name := range expectedNames {
		if docs[i].FileName != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, docs[i].FileName)
		}
	}

	if docs[0].Metadata["id"] != "nested" {
		t.Errorf("Expected id from frontmatter, got %v", docs[0].Metadata["id"])
	}
	if !strings.HasSuffix(docs[0].Path, "/a/nested.mdx") {
		t.Errorf("Expected slash separated path, got %s", docs[0].Path)
	}
	if docs[1].Body != "body b\n" {
		t.Errorf("Expected body, got %q", docs[1].Body)
	}
	if len(docs[2].Metadata) != 0 {
		t.Errorf("Expected empty metadata, got %v", docs[2].Metadata)
	}
}

func TestLoaderRelativeRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	writeDoc(t, ".", "docs/docs/release-notes/feb.md", "---\ntitle: Feb\n---\n")

	docs, err := NewLoader("docs/docs/release-notes").Run()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "docs/docs/release-notes/feb.md" {
		t.Errorf("Expected repo-relative path, got %+v", docs)
	}
}

func TestLoaderMissingRoot(t *testing.T) {
	docs, err := NewLoader(filepath.Join(t.TempDir(), "absent")).Run()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected no documents, got %d", len(docs))
	}
}

func TestLoaderMalformedFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "bad.md", "---\ntitle: [oops\n---\n")

	_, err := NewLoader(root).Run()
	if err == nil {
		t.Fatal("Expected error for malformed frontmatter")
	}
	if !strings.Contains(err.Error(), "bad.md") {
		t.Errorf("Expected error to name the file, got: %v", err)
	}
}
