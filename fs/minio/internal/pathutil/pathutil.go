// Package pathutil maps filesystem names onto MinIO/S3 object keys.
//
// A name is slash-separated and relative to the filesystem root. Files map
// to a key without a trailing slash; the directory with the same name maps
// to that key plus "/", which is also the key of its marker object.
package pathutil

import (
	"path"
	"strings"
)

// Normalize cleans name and strips leading and trailing slashes. The root
// is returned as ".".
func Normalize(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Trim(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}

// NormalizePrefix normalizes a key prefix. The root is returned as "".
func NormalizePrefix(prefix string) string {
	p := Normalize(prefix)
	if p == "." {
		return ""
	}
	return p
}

// JoinPath returns the object key for name below prefix. The root maps to
// prefix itself.
func JoinPath(prefix, name string) string {
	name = Normalize(name)
	switch {
	case name == ".":
		return prefix
	case prefix == "":
		return name
	default:
		return prefix + "/" + name
	}
}

// DirKey returns the listing prefix and marker key for the directory key.
// The root directory's prefix is "".
func DirKey(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}

// Base returns the last element of a normalized name.
func Base(name string) string {
	if name == "." {
		return "."
	}
	return path.Base(name)
}
