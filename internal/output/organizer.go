// Package output relocates rendered diagram artifacts from the work directory
// into the persistent output tree.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rendis/wfgraph/pkg/schema"
)

// DefaultRoot is the output directory created next to the work directory.
const DefaultRoot = "output"

// maxSuffix bounds the search for a free destination name.
const maxSuffix = 10000

// Organizer moves artifacts into Root, optionally namespaced by client.
type Organizer struct {
	Root   string
	Logger *slog.Logger
}

// CheckPathPart reports whether value can be used as a single file or
// directory name component. Separators, NUL and ".." are rejected.
func CheckPathPart(value string) error {
	switch {
	case strings.ContainsAny(value, "/\\\x00"):
		return fmt.Errorf("%q contains a path separator", value)
	case strings.Contains(value, ".."):
		return fmt.Errorf("%q contains \"..\"", value)
	case value == ".":
		return fmt.Errorf("%q is not a name", value)
	}
	return nil
}

// Relocate creates Root (and Root/client when client is non-empty) and moves
// every artifact there. Existing destination files are never overwritten: a
// free "<stem>-<n><ext>" name is used instead. It returns the destination
// paths in artifact order.
func (o *Organizer) Relocate(artifacts []string, client string) ([]string, error) {
	dir, err := o.ensureDir(client)
	if err != nil {
		return nil, err
	}

	moved := make([]string, 0, len(artifacts))
	for _, src := range artifacts {
		dst, err := freeName(dir, filepath.Base(src))
		if err != nil {
			return moved, err
		}
		if err := moveFile(src, dst); err != nil {
			return moved, schema.NewErrorf(schema.ErrCodeOutput, "move %s to %s", src, dst).WithCause(err)
		}
		o.logger().Debug("artifact relocated", slog.String("src", src), slog.String("dst", dst))
		moved = append(moved, dst)
	}
	return moved, nil
}

func (o *Organizer) ensureDir(client string) (string, error) {
	if client != "" {
		if err := CheckPathPart(client); err != nil {
			return "", schema.NewError(schema.ErrCodeOutput, "invalid client directory").WithCause(err)
		}
	}
	root := o.Root
	if root == "" {
		root = DefaultRoot
	}
	if err := mkdirIfAbsent(root); err != nil {
		return "", err
	}
	if client == "" {
		return root, nil
	}

	dir := filepath.Join(root, client)
	if err := mkdirIfAbsent(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (o *Organizer) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func mkdirIfAbsent(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return schema.NewErrorf(schema.ErrCodeOutput, "%s exists and is not a directory", dir)
	case !errors.Is(err, fs.ErrNotExist):
		return schema.NewErrorf(schema.ErrCodeOutput, "stat %s", dir).WithCause(err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return schema.NewErrorf(schema.ErrCodeOutput, "create %s", dir).WithCause(err)
	}
	return nil
}

// freeName returns dir/name, or dir/<stem>-<n><ext> when that is taken.
func freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if !exists(candidate) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxSuffix; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", schema.NewErrorf(schema.ErrCodeOutput, "no free name for %s in %s", name, dir)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// moveFile renames src to dst, falling back to copy and remove across devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := copyFile(src, dst, info.Mode()); err != nil {
		return fmt.Errorf("copy fallback: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
