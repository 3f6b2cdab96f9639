package storage

import (
	"github.com/jmgilman/storage/errors"
	"github.com/jmgilman/storage/naming"
)

// maxUniqueNameAttempts bounds the search for a free sequenced name.
const maxUniqueNameAttempts = 10000

// action is the outcome of collision resolution.
type action int

const (
	// proceed: nothing occupies the destination.
	proceed action = iota
	// proceedWithPath: commit to decision.path, a free sequenced name.
	proceedWithPath
	// deleteThenProceed: remove decision.occupant, then commit.
	deleteThenProceed
	// reroutedRename: rename through decision.temp, then to decision.path.
	reroutedRename
	// fail: refuse with decision.err.
	fail
)

func (a action) String() string {
	switch a {
	case proceed:
		return "proceed"
	case proceedWithPath:
		return "proceed-with-path"
	case deleteThenProceed:
		return "delete-then-proceed"
	case reroutedRename:
		return "rerouted-rename"
	default:
		return "fail"
	}
}

type decision struct {
	action   action
	path     string
	temp     string
	occupant Item
	err      error
}

// resolve decides how a transfer of src to dest proceeds under opt. It
// probes the provider but never mutates it. The returned error reports a
// failed probe; refusals are carried by a fail decision.
//
// A destination occupied by the source itself always fails with
// SOURCE_EQUALS_DESTINATION, whatever the policy, except for a move that
// only changes the case of the name on a case-insensitive provider. That
// move is rerouted through a temporary name.
func (s *Storage) resolve(src Item, dest string, opt NameCollisionOption, move bool) (decision, error) {
	occupant, err := s.locator.Locate(dest)
	if err != nil {
		return decision{}, err
	}
	if occupant == nil {
		return decision{action: proceed, path: dest}, nil
	}

	if s.samePath(occupant.Path(), src.Path()) {
		if move && trimSlash(dest) != trimSlash(src.Path()) {
			temp, err := s.uniquePath(src, src.Path())
			if err != nil {
				return decision{}, err
			}
			return decision{action: reroutedRename, path: dest, temp: temp}, nil
		}
		return refuse(errors.CodeSourceEqualsDestination, "source and destination are the same item", src, dest), nil
	}

	if occupant.Type() == ItemTypeFolder && s.contains(occupant.Path(), src.Path()) {
		return refuse(errors.CodeInvalidArgument, "destination folder contains the source", src, dest), nil
	}

	switch opt {
	case FailIfExists:
		return refuse(errors.CodeAlreadyExists, "destination already exists", src, dest), nil
	case ReplaceExisting:
		return decision{action: deleteThenProceed, path: dest, occupant: occupant}, nil
	case GenerateUniqueName:
		p, err := s.uniquePath(src, dest)
		if err != nil {
			return decision{}, err
		}
		if s.samePath(p, src.Path()) {
			return refuse(errors.CodeSourceEqualsDestination, "source already holds the generated name", src, p), nil
		}
		return decision{action: proceedWithPath, path: p}, nil
	default:
		return refuse(errors.CodeInvalidArgument, "unknown name collision option", src, dest), nil
	}
}

// uniquePath sequences the name of start until it names a free path in the
// same folder, or the path of src itself, which ends the search. File names
// keep their extension.
func (s *Storage) uniquePath(src Item, start string) (string, error) {
	next := naming.Next
	if src.Type() == ItemTypeFile {
		next = naming.NextFileName
	}

	dir := parentPath(start)
	name := baseName(start)
	for range maxUniqueNameAttempts {
		name = next(name)
		candidate := dir + name
		if src.Type() == ItemTypeFolder {
			candidate += "/"
		}

		occupant, err := s.locator.Locate(candidate)
		if err != nil {
			return "", err
		}
		if occupant == nil || s.samePath(candidate, src.Path()) {
			return candidate, nil
		}
	}

	return "", errors.WithContext(
		errors.Newf(errors.CodeInternal, "no free name after %d attempts", maxUniqueNameAttempts),
		"path", start)
}

func refuse(code errors.ErrorCode, message string, src Item, dest string) decision {
	return decision{
		action: fail,
		path:   dest,
		err: errors.WithContextMap(errors.New(code, message), map[string]interface{}{
			"source":      src.Path(),
			"destination": dest,
		}),
	}
}
