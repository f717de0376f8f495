// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source manages registered source documents: the extracted text
// the claims stage analyzes plus the coarse metadata (title, author line,
// DOI candidate) the later stages cite. Implements: prd009-source (R1-R3);
//
//	docs/ARCHITECTURE § Source Register.
//
// Each document is stored as [slug].txt (extracted text) and [slug].yaml
// (metadata) under the sources directory. The slug doubles as the library
// entry id.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/evidence-engine/internal/resolve"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// doiScanWindow bounds how far into the document text Register looks for
// a DOI candidate. DOIs appear on the first page when present at all.
const doiScanWindow = 4000

// maxSlugLen bounds title-derived slugs.
const maxSlugLen = 64

// Document is a registered source: its metadata plus extracted text.
type Document struct {
	Ref  types.SourceRef
	Text string
}

// Register stores source documents under a directory.
type Register struct {
	dir string
}

// NewRegister creates the sources directory if needed.
func NewRegister(cfg types.SourceConfig) (*Register, error) {
	if err := os.MkdirAll(cfg.SourcesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sources directory: %w", err)
	}
	return &Register{dir: cfg.SourcesDir}, nil
}

// Add registers a document: derives its slug, finds a DOI candidate in the
// text, and writes the text and metadata files. If title is empty the
// first non-blank line of the text is used. Returns the stored reference.
func (r *Register) Add(title, authorLine, text string) (types.SourceRef, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.SourceRef{}, fmt.Errorf("source text is empty")
	}
	if title == "" {
		title = firstLine(text)
	}

	ref := types.SourceRef{
		Title:      title,
		AuthorLine: authorLine,
		DOI:        findDOI(text),
	}
	ref.Slug = slugFor(ref)

	if err := os.WriteFile(r.textPath(ref.Slug), []byte(text), 0o644); err != nil {
		return types.SourceRef{}, fmt.Errorf("writing source text: %w", err)
	}
	data, err := yaml.Marshal(ref)
	if err != nil {
		return types.SourceRef{}, fmt.Errorf("marshaling source metadata: %w", err)
	}
	if err := os.WriteFile(r.metaPath(ref.Slug), data, 0o644); err != nil {
		return types.SourceRef{}, fmt.Errorf("writing source metadata: %w", err)
	}
	return ref, nil
}

// Load returns the registered document for slug.
func (r *Register) Load(slug string) (*Document, error) {
	data, err := os.ReadFile(r.metaPath(slug))
	if err != nil {
		return nil, fmt.Errorf("reading source metadata: %w", err)
	}
	var ref types.SourceRef
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("parsing source metadata: %w", err)
	}

	text, err := os.ReadFile(r.textPath(slug))
	if err != nil {
		return nil, fmt.Errorf("reading source text: %w", err)
	}
	return &Document{Ref: ref, Text: string(text)}, nil
}

// List returns the references of all registered documents, sorted by slug.
func (r *Register) List() ([]types.SourceRef, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	var refs []types.SourceRef
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var ref types.SourceRef
		if err := yaml.Unmarshal(data, &ref); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (r *Register) textPath(slug string) string {
	return filepath.Join(r.dir, slug+".txt")
}

func (r *Register) metaPath(slug string) string {
	return filepath.Join(r.dir, slug+".yaml")
}

// slugFor derives a filesystem-safe slug: from the DOI when present
// (separators folded to "-"), else from the title.
func slugFor(ref types.SourceRef) string {
	if ref.DOI != "" {
		return strings.NewReplacer("/", "-", ":", "-", ".", "-").Replace(ref.DOI)
	}
	return titleSlug(ref.Title)
}

func titleSlug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// findDOI scans the head of the document text for a DOI candidate.
func findDOI(text string) string {
	window := text
	if len(window) > doiScanWindow {
		window = window[:doiScanWindow]
	}
	return resolve.NormalizeDOI(window)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return "Untitled"
}
