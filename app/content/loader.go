// Package content discovers Markdown documents under a directory and parses
// their YAML frontmatter.
package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/notes-feed/app/feed"
)

var documentExtensions = map[string]bool{
	".md":  true,
	".mdx": true,
}

type Loader struct {
	root string
}

func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Run returns every document under the root in lexical walk order. A missing
// root yields no documents.
func (l *Loader) Run() ([]feed.RawDocument, error) {
	if _, err := os.Stat(l.root); os.IsNotExist(err) {
		slog.Debug("Content directory not found", "dir", l.root)
		return nil, nil
	}

	var docs []feed.RawDocument
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !documentExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		doc, err := l.loadFile(p)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", p, err)
		}

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk content directory: %w", err)
	}

	slog.Debug("Content loaded", "dir", l.root, "documents", len(docs))
	return docs, nil
}

func (l *Loader) loadFile(p string) (feed.RawDocument, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return feed.RawDocument{}, fmt.Errorf("failed to read file: %w", err)
	}

	header, body, err := splitFrontmatter(data)
	if err != nil {
		return feed.RawDocument{}, err
	}

	metadata, err := parseFrontmatter(header)
	if err != nil {
		return feed.RawDocument{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	slashed := filepath.ToSlash(p)
	return feed.RawDocument{
		Path:     slashed,
		FileName: path.Base(slashed),
		Metadata: metadata,
		Body:     string(body),
	}, nil
}
