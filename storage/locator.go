package storage

// Locator classifies paths into typed items. The engine uses it to inspect
// destinations before acting; items never use it to classify themselves.
type Locator struct {
	s *Storage
}

// Locate probes p and returns a *File, a *Folder, or nil when nothing exists
// there. p must already be normalized.
func (l *Locator) Locate(p string) (Item, error) {
	if p == "/" {
		return l.s.Root(), nil
	}

	kind, err := l.s.provider.Kind(p)
	if err != nil {
		return nil, classify(err, "stat failed", p)
	}

	switch kind {
	case ItemTypeFile:
		return newFile(l.s, trimSlash(p)), nil
	case ItemTypeFolder:
		return newFolder(l.s, folderForm(p)), nil
	default:
		return nil, nil
	}
}
