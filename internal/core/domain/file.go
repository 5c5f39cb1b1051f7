package domain

import (
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"unique"
)

var lastFileID atomic.Uint64

// File is a source file as seen by the cache layer.
type File struct {
	// Path identifies the file. Code fragments and in-memory copies carry synthetic paths.
	Path InternedString

	// Script marks script files.
	Script bool

	// Physical is false for in-memory copies whose content may differ from disk.
	Physical bool

	// Context is set on code fragments: the element the fragment is evaluated against.
	Context *Element

	// Suppressions lists file-level suppressed diagnostic ids.
	Suppressions []string

	id atomic.Uint64
}

// NewFile creates a physical, non-script file.
func NewFile(path string) *File {
	return &File{Path: NewInternedString(path), Physical: true}
}

// NewScriptFile creates a physical script file.
func NewScriptFile(path string) *File {
	return &File{Path: NewInternedString(path), Script: true, Physical: true}
}

// NewCodeFragment creates an in-memory fragment evaluated in the context of an element.
func NewCodeFragment(path string, context *Element) *File {
	return &File{Path: NewInternedString(path), Context: context}
}

// IsCodeFragment reports whether the file is a code fragment.
func (f *File) IsCodeFragment() bool {
	return f.Context != nil
}

// identity returns a process-unique id of this file value, assigned on first use.
// Two values with the same path are different files.
func (f *File) identity() uint64 {
	if id := f.id.Load(); id != 0 {
		return id
	}
	f.id.CompareAndSwap(0, lastFileID.Add(1))
	return f.id.Load()
}

// ContextChain returns the files a fragment depends on, nearest first, ending with
// the root file. For ordinary files it returns nil.
func (f *File) ContextChain() ([]*File, error) {
	var chain []*File
	seen := map[*File]bool{f: true}
	current := f
	for current.IsCodeFragment() {
		next := current.Context.File
		if next == nil || seen[next] {
			return nil, Annotate(ErrMissingContainingFile, "fragment", f.Path.String())
		}
		seen[next] = true
		chain = append(chain, next)
		current = next
	}
	return chain, nil
}

// RootFile follows code-fragment contexts to the first ordinary file.
func (f *File) RootFile() (*File, error) {
	chain, err := f.ContextChain()
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return f, nil
	}
	return chain[len(chain)-1], nil
}

// Element is an analyzable node inside a file.
type Element struct {
	Name         string
	File         *File
	Parent       *Element
	Suppressions []string
}

// NewElement creates a top-level element of a file.
func NewElement(name string, file *File) *Element {
	return &Element{Name: name, File: file}
}

// Child creates a nested element.
func (e *Element) Child(name string) *Element {
	return &Element{Name: name, File: e.File, Parent: e}
}

// ContainingFile returns the element's owning file.
func (e *Element) ContainingFile() (*File, error) {
	if e == nil || e.File == nil {
		name := ""
		if e != nil {
			name = e.Name
		}
		return nil, Annotate(ErrMissingContainingFile, "element", name)
	}
	return e.File, nil
}

// FileSetKey is a comparable identity for an unordered set of file values.
type FileSetKey struct {
	h unique.Handle[string]
}

// FileSet is an immutable, deduplicated and path-ordered set of files.
type FileSet struct {
	files []*File
	key   FileSetKey
}

// NewFileSet builds a set from files, keeping the first file seen for each path.
// The key follows file identity, so a newer copy of a file at the same path
// yields a different set.
func NewFileSet(files []*File) FileSet {
	byPath := make(map[InternedString]*File, len(files))
	ordered := make([]*File, 0, len(files))
	for _, f := range files {
		if _, ok := byPath[f.Path]; ok {
			continue
		}
		byPath[f.Path] = f
		ordered = append(ordered, f)
	}
	slices.SortFunc(ordered, func(a, b *File) int { return a.Path.Compare(b.Path) })

	var b strings.Builder
	for _, f := range ordered {
		b.WriteString(f.Path.String())
		b.WriteByte(0)
		b.WriteString(strconv.FormatUint(f.identity(), 36))
		b.WriteByte(0)
	}
	return FileSet{
		files: ordered,
		key:   FileSetKey{h: unique.Make(b.String())},
	}
}

// Key returns the set identity.
func (s FileSet) Key() FileSetKey { return s.key }

// Files returns the files in path order. The slice must not be modified.
func (s FileSet) Files() []*File { return s.files }

// Len returns the number of files.
func (s FileSet) Len() int { return len(s.files) }

// Paths returns the member paths in order.
func (s FileSet) Paths() []string {
	paths := make([]string, len(s.files))
	for i, f := range s.files {
		paths[i] = f.Path.String()
	}
	return paths
}
