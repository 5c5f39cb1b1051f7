package project

import (
	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
)

// Change summarizes the tracker advances caused by a batch of file events.
type Change struct {
	Edited    []string
	Libraries bool
	Roots     bool
	Scripts   bool
}

// Empty reports whether the batch advanced nothing.
func (c Change) Empty() bool {
	return len(c.Edited) == 0 && !c.Libraries && !c.Roots && !c.Scripts
}

// Apply advances trackers for a batch of file system events. Writes and
// re-creations of known files count as out-of-code-block edits, since file
// contents are not parsed; edits to library files or scripts also advance the
// library or script-dependency trackers. Removing or renaming a known file, or
// creating a new one, changes the project roots.
func (m *Model) Apply(events []ports.WatchEvent) Change {
	var c Change
	seen := make(map[string]bool, len(events))

	for _, ev := range events {
		path := m.normalize(ev.Path)
		if seen[path] {
			continue
		}
		seen[path] = true

		m.mu.RLock()
		e, known := m.files[domain.NewInternedString(path)]
		m.mu.RUnlock()

		if !known {
			if ev.Operation == ports.OpCreate {
				c.Roots = true
			}
			continue
		}

		switch ev.Operation {
		case ports.OpWrite, ports.OpCreate:
			if err := m.Edit(path, true); err != nil {
				continue
			}
			c.Edited = append(c.Edited, path)
			switch {
			case domain.IsLibraryClasses(e.module):
				c.Libraries = true
			case e.file.Script:
				c.Scripts = true
			}
		case ports.OpRemove, ports.OpRename:
			c.Roots = true
		}
	}

	if c.Libraries {
		m.LibrariesChanged()
	}
	if c.Scripts {
		m.ScriptDependenciesChanged()
	}
	if c.Roots {
		m.RootsChanged()
	}
	return c
}
