package storage

import (
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmgilman/storage/errors"
)

// Operation names reported in logs and events.
const (
	opCopy    = "copy"
	opMove    = "move"
	opRename  = "rename"
	opReplace = "replace"
	opDelete  = "delete"
	opCreate  = "create"
)

// operation tracks one top-level call through
// validated → collision resolved → committed | failed.
type operation struct {
	id   string
	name string
	log  *slog.Logger
}

func (s *Storage) begin(name string, src Item, dest string, opt NameCollisionOption) *operation {
	id := uuid.NewString()
	return &operation{
		id:   id,
		name: name,
		log: s.logger.With(
			"op", id,
			"operation", name,
			"source", src.Path(),
			"destination", dest,
			"option", opt.String(),
		),
	}
}

func (o *operation) validated() {
	o.log.Debug("validated")
}

func (o *operation) resolved(d decision) {
	o.log.Debug("collision resolved", "action", d.action.String(), "path", d.path)
}

func (o *operation) fail(err error) error {
	o.log.Debug("failed", "error", err)
	return err
}

// commit logs the committed state and notifies the observer.
func (s *Storage) commit(op *operation, ev Event) error {
	op.log.Debug("committed", "path", ev.Destination, "fallback", ev.Fallback)
	if s.observer == nil {
		return nil
	}

	ev.ID = op.id
	ev.Op = op.name
	ev.CommittedAt = time.Now().UTC()
	if err := s.observer.OnCommit(ev); err != nil {
		op.log.Warn("observer rejected committed operation", "error", err)
		return errors.WrapWithContext(err, errors.CodeJournal, "operation committed but not recorded", map[string]interface{}{
			"op": op.id,
		})
	}
	return nil
}

// requireSource fails with SOURCE_NOT_FOUND unless src exists with its
// constructed type.
func (s *Storage) requireSource(src Item) error {
	ok, err := s.kindIs(src.Path(), src.Type())
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithContext(
			errors.Newf(errors.CodeSourceNotFound, "%s does not exist", src.Type()), "path", src.Path())
	}
	return nil
}

// validateName rejects names that cannot form a single path segment.
func (s *Storage) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.CodeInvalidArgument, "name must not be blank")
	}
	if name == "." || name == ".." {
		return errors.WithContext(
			errors.New(errors.CodeInvalidArgument, "name must not be a relative path element"), "name", name)
	}
	if i := strings.IndexAny(name, "/\x00"+s.provider.ReservedChars()); i >= 0 {
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidArgument, "name contains a reserved character"),
			map[string]interface{}{"name": name, "character": string(name[i])})
	}
	return nil
}

// ensureParent creates the folder that will contain p.
func (s *Storage) ensureParent(p string) error {
	parent := parentPath(p)
	if parent == "" || parent == "/" {
		return nil
	}
	if err := s.provider.CreateDirectory(parent); err != nil {
		return classify(err, "create parent folder failed", parent)
	}
	return nil
}

// clear removes the occupant of a deleteThenProceed decision. The deletion
// is not rolled back if the transfer fails afterwards.
func (s *Storage) clear(op *operation, d decision) error {
	if d.action != deleteThenProceed {
		return nil
	}
	op.log.Info("replacing existing item", "path", d.occupant.Path(), "type", d.occupant.Type().String())
	if err := s.provider.Delete(d.occupant.Path()); err != nil {
		return classify(err, "delete of replaced item failed", d.occupant.Path())
	}
	return nil
}

func (s *Storage) copyFile(src *File, dest string, opt NameCollisionOption) (*File, error) {
	op := s.begin(opCopy, src, dest, opt)

	target, err := normalizeFilePath(dest)
	if err != nil {
		return nil, op.fail(err)
	}
	if err := s.requireSource(src); err != nil {
		return nil, op.fail(err)
	}
	op.validated()

	d, err := s.resolve(src, target, opt, false)
	if err != nil {
		return nil, op.fail(err)
	}
	op.resolved(d)
	if d.action == fail {
		return nil, op.fail(d.err)
	}

	if err := s.clear(op, d); err != nil {
		return nil, op.fail(err)
	}
	if err := s.ensureParent(d.path); err != nil {
		return nil, op.fail(err)
	}
	if err := s.provider.CopyBytes(src.path, d.path); err != nil {
		return nil, op.fail(classify(err, "copy failed", d.path))
	}

	copied := newFile(s, d.path)
	return copied, s.commit(op, Event{
		Type:        ItemTypeFile,
		Source:      src.path,
		Destination: d.path,
		Option:      opt,
	})
}

func (s *Storage) copyFolder(src *Folder, dest string, opt NameCollisionOption) (*Folder, error) {
	op := s.begin(opCopy, src, dest, opt)

	target, err := normalizeFolderPath(dest)
	if err != nil {
		return nil, op.fail(err)
	}
	if err := s.requireSource(src); err != nil {
		return nil, op.fail(err)
	}
	if s.contains(src.path, target) {
		return nil, op.fail(errors.WithContextMap(
			errors.New(errors.CodeInvalidArgument, "cannot copy a folder into itself"),
			map[string]interface{}{"source": src.path, "destination": target}))
	}
	op.validated()

	d, err := s.resolve(src, target, opt, false)
	if err != nil {
		return nil, op.fail(err)
	}
	op.resolved(d)
	if d.action == fail {
		return nil, op.fail(d.err)
	}

	if err := s.clear(op, d); err != nil {
		return nil, op.fail(err)
	}
	if err := s.copyTree(src.path, d.path); err != nil {
		return nil, op.fail(err)
	}

	copied := newFolder(s, d.path)
	return copied, s.commit(op, Event{
		Type:        ItemTypeFolder,
		Source:      src.path,
		Destination: d.path,
		Option:      opt,
	})
}

// copyTree creates dst and copies the contents of the folder src into it,
// files first, then subfolders depth-first. Children are copied with
// FailIfExists.
func (s *Storage) copyTree(src, dst string) error {
	if err := s.provider.CreateDirectory(dst); err != nil {
		return classify(err, "create folder failed", dst)
	}

	children, err := s.children(src)
	if err != nil {
		return err
	}

	var folders []string
	for _, child := range children {
		if strings.HasSuffix(child, "/") {
			folders = append(folders, child)
			continue
		}

		target := dst + baseName(child)
		d, err := s.resolve(newFile(s, child), target, FailIfExists, false)
		if err != nil {
			return err
		}
		if d.action == fail {
			return d.err
		}
		if err := s.provider.CopyBytes(child, target); err != nil {
			return classify(err, "copy failed", target)
		}
	}

	for _, child := range folders {
		target := dst + baseName(child) + "/"
		d, err := s.resolve(newFolder(s, child), target, FailIfExists, false)
		if err != nil {
			return err
		}
		if d.action == fail {
			return d.err
		}
		if err := s.copyTree(child, target); err != nil {
			return err
		}
	}

	return nil
}

// move relocates src to dest and updates src to the final path.
func (s *Storage) move(name string, src Item, dest string, opt NameCollisionOption) error {
	return s.moveWith(s.begin(name, src, dest, opt), src, dest, opt)
}

// moveWith runs a move under an operation that has already begun.
func (s *Storage) moveWith(op *operation, src Item, dest string, opt NameCollisionOption) error {
	target, err := s.normalizeFor(src, dest)
	if err != nil {
		return op.fail(err)
	}
	if src.Path() == "/" {
		return op.fail(errors.New(errors.CodeInvalidArgument, "the root folder cannot be moved"))
	}
	if err := s.requireSource(src); err != nil {
		return op.fail(err)
	}
	if src.Type() == ItemTypeFolder && s.contains(src.Path(), target) {
		return op.fail(errors.WithContextMap(
			errors.New(errors.CodeInvalidArgument, "cannot move a folder into itself"),
			map[string]interface{}{"source": src.Path(), "destination": target}))
	}
	op.validated()

	d, err := s.resolve(src, target, opt, true)
	if err != nil {
		return op.fail(err)
	}
	op.resolved(d)
	if d.action == fail {
		return op.fail(d.err)
	}

	if err := s.clear(op, d); err != nil {
		return op.fail(err)
	}
	if err := s.ensureParent(d.path); err != nil {
		return op.fail(err)
	}

	from := src.Path()
	var fallback bool
	if d.action == reroutedRename {
		op.log.Debug("renaming through temporary name", "temp", d.temp)
		first, err := s.renameOrCopy(op, src.Type(), from, d.temp)
		if err != nil {
			return op.fail(err)
		}
		second, err := s.renameOrCopy(op, src.Type(), d.temp, d.path)
		if err != nil {
			return op.fail(err)
		}
		fallback = first || second
	} else {
		fallback, err = s.renameOrCopy(op, src.Type(), from, d.path)
		if err != nil {
			return op.fail(err)
		}
	}

	src.handle().relocate(d.path)
	return s.commit(op, Event{
		Type:        src.Type(),
		Source:      from,
		Destination: d.path,
		Option:      opt,
		Fallback:    fallback,
	})
}

// renameOrCopy renames from to to. When the provider refuses the rename for
// a reason other than a collision or a bad name, whatever the failed rename
// left at to is removed and the item is copied and the source deleted
// instead. It reports whether the fallback ran. Fallback errors keep the
// rename error in their chain. A failure after the copy leaves both copies
// in place.
func (s *Storage) renameOrCopy(op *operation, kind ItemType, from, to string) (bool, error) {
	renameErr := s.provider.Rename(from, to)
	if renameErr == nil {
		return false, nil
	}
	if !fallbackAllowed(renameErr) {
		return false, classify(renameErr, "rename failed", from)
	}

	op.log.Warn("rename failed, falling back to copy and delete", "from", from, "to", to, "error", renameErr)
	if err := s.clearPartial(op, to); err != nil {
		return true, fallbackError(err, renameErr, "removing partial rename failed", to)
	}

	var err error
	if kind == ItemTypeFolder {
		err = s.copyTree(from, to)
	} else {
		err = s.provider.CopyBytes(from, to)
	}
	if err != nil {
		return true, fallbackError(err, renameErr, "fallback copy failed", to)
	}
	if err := s.provider.Delete(from); err != nil {
		return true, fallbackError(err, renameErr, "fallback delete of source failed", from)
	}
	return true, nil
}

// clearPartial deletes anything at to. The resolver already cleared to, so
// whatever is there was written by the failed rename.
func (s *Storage) clearPartial(op *operation, to string) error {
	ok, err := s.provider.Exists(to)
	if err != nil || !ok {
		return err
	}
	op.log.Debug("removing partial rename", "path", to)
	return s.provider.Delete(to)
}

// fallbackError classifies err and joins renameErr into its chain.
func fallbackError(err, renameErr error, message, path string) error {
	cause := classify(err, message, path)
	return errors.WrapWithContext(stderrors.Join(cause, renameErr), errors.GetCode(cause), message,
		map[string]interface{}{
			"path":         path,
			"rename_error": renameErr.Error(),
		})
}

func (s *Storage) normalizeFor(src Item, dest string) (string, error) {
	if src.Type() == ItemTypeFolder {
		return normalizeFolderPath(dest)
	}
	return normalizeFilePath(dest)
}

// renameItem validates name and moves src to name within its parent.
func (s *Storage) renameItem(name string, src Item, newName string, opt NameCollisionOption) error {
	parent := src.Parent()
	dest := newName
	if parent != nil {
		dest = parent.Path() + newName
	}
	op := s.begin(name, src, dest, opt)

	if err := s.validateName(newName); err != nil {
		return op.fail(err)
	}
	if parent == nil {
		return op.fail(errors.New(errors.CodeInvalidArgument, "the root folder cannot be renamed"))
	}
	return s.moveWith(op, src, dest, opt)
}

// destination joins folder and name, defaulting name to fallback.
func (s *Storage) destination(folder *Folder, name, fallback string) (string, error) {
	if folder == nil {
		return "", errors.New(errors.CodeInvalidArgument, "destination folder must not be nil")
	}
	if name == "" {
		name = fallback
	}
	if err := s.validateName(name); err != nil {
		return "", err
	}
	return folder.Path() + name, nil
}

func (s *Storage) deleteItem(it Item) error {
	op := s.begin(opDelete, it, "", FailIfExists)

	if it.Path() == "/" {
		return op.fail(errors.New(errors.CodeInvalidArgument, "the root folder cannot be deleted"))
	}
	if err := s.requireSource(it); err != nil {
		return op.fail(err)
	}
	op.validated()

	if err := s.provider.Delete(it.Path()); err != nil {
		return op.fail(classify(err, "delete failed", it.Path()))
	}
	return s.commit(op, Event{Type: it.Type(), Source: it.Path()})
}

func (s *Storage) createFolder(f *Folder) error {
	op := s.begin(opCreate, f, f.path, FailIfExists)

	kind, err := s.provider.Kind(f.path)
	if err != nil {
		return op.fail(classify(err, "stat failed", f.path))
	}
	switch kind {
	case ItemTypeFolder:
		return nil
	case ItemTypeFile:
		return op.fail(errors.WithContext(
			errors.New(errors.CodeAlreadyExists, "a file occupies the folder path"), "path", f.path))
	}
	op.validated()

	if err := s.provider.CreateDirectory(f.path); err != nil {
		return op.fail(classify(err, "create folder failed", f.path))
	}
	return s.commit(op, Event{Type: ItemTypeFolder, Destination: f.path})
}

func (s *Storage) createFile(p string, data []byte, opt NameCollisionOption) (*File, error) {
	f := newFile(s, p)
	op := s.begin(opCreate, f, p, opt)

	cp, ok := s.provider.(ContentProvider)
	if !ok {
		return nil, op.fail(errors.New(errors.CodeProviderFailure, "provider cannot write file contents"))
	}

	occupant, err := s.locator.Locate(p)
	if err != nil {
		return nil, op.fail(err)
	}
	op.validated()

	target := p
	if occupant != nil {
		switch opt {
		case FailIfExists:
			return nil, op.fail(errors.WithContext(
				errors.New(errors.CodeAlreadyExists, "destination already exists"), "destination", p))
		case ReplaceExisting:
			if err := s.clear(op, decision{action: deleteThenProceed, occupant: occupant}); err != nil {
				return nil, op.fail(err)
			}
		case GenerateUniqueName:
			if target, err = s.uniquePath(f, p); err != nil {
				return nil, op.fail(err)
			}
		default:
			return nil, op.fail(errors.New(errors.CodeInvalidArgument, "unknown name collision option"))
		}
	}
	op.log.Debug("collision resolved", "path", target)

	if err := s.ensureParent(target); err != nil {
		return nil, op.fail(err)
	}
	if err := cp.WriteFile(target, data); err != nil {
		return nil, op.fail(classify(err, "write failed", target))
	}

	f.relocate(target)
	return f, s.commit(op, Event{Type: ItemTypeFile, Destination: target, Option: opt})
}
