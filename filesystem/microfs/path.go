package microfs

import (
	"strings"

	"github.com/cstruct/microfs/device"
)

// resolved is the tuple the path resolver hands back to operations: whether
// the final component's parent exists, whether the final component itself
// exists, and its local name for directory-entry manipulation.
type resolved struct {
	Parent    InodeRef
	Child     InodeRef
	LocalName string
}

// findFile resolves path relative to cwd. Per spec §4.5: an absolute path
// starts from the root inode; a relative path first resolves cwd (via a
// fresh tokenizer, never reusing cwd's tokens) and continues from the
// directory that resolution landed on.
func (fs *FileSystem) findFile(cwd, path string) (resolved, error) {
	if strings.HasPrefix(path, "/") {
		return fs.resolveFrom(RootInode, "/", tokenize(path))
	}

	start, err := fs.findFile(cwd, cwd)
	if err != nil {
		return resolved{}, err
	}
	return fs.resolveFrom(start.Child, start.LocalName, tokenize(path))
}

// tokenize splits a path on '/', dropping empty components (leading,
// trailing or doubled slashes never produce an empty token).
func tokenize(path string) []string {
	parts := strings.Split(path, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// resolveFrom walks tokens starting at startInode/startName, applying the
// semantics of spec §4.5: a not-yet-existing component never stops the
// walk - everything after it resolves to UnallocatedInode, so the caller can
// tell from Parent whether the final component's parent exists. Only an
// existing component that is not a directory stops it, with NotADirectoryError.
func (fs *FileSystem) resolveFrom(startInode InodeRef, startName string, tokens []string) (resolved, error) {
	if len(tokens) == 0 {
		return resolved{Parent: UnallocatedInode, Child: startInode, LocalName: startName}, nil
	}

	current := startInode
	var parent InodeRef
	var localName string

	for _, t := range tokens {
		parent = current
		localName = t
		if current == UnallocatedInode {
			// the tail of the path is allowed to traverse through a
			// not-yet-existing component; only the final component's
			// existence matters to the caller.
			continue
		}
		inode, err := fs.readInode(current)
		if err != nil {
			return resolved{}, err
		}
		if inode.Type != TypeDirectory {
			return resolved{}, &NotADirectoryError{Path: localName}
		}
		child, err := findEntry(fs.dev, inode, t)
		if err != nil {
			return resolved{}, err
		}
		current = child
	}

	return resolved{Parent: parent, Child: current, LocalName: localName}, nil
}
