package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/gaitprep/internal/domain/model"
)

// NpyStore persists each leaf as <root>/<subject>/<joint>/<label>.npy
// (float64, C order, rows x K).
type NpyStore struct {
	root     string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// NewNpyStore creates a store rooted at root. The root is created lazily.
func NewNpyStore(root string, opts ...Option) *NpyStore {
	s := &NpyStore{
		root:     root,
		dirMode:  defaultDirMode,
		fileMode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the store's top-level directory.
func (s *NpyStore) Root() string { return s.root }

// Path returns the artifact path for key.
func (s *NpyStore) Path(key Key) string {
	return filepath.Join(s.root, key.Subject, string(key.Joint), string(key.Label)+defaultExt)
}

func validateKey(key Key) error {
	for _, part := range []string{key.Subject, string(key.Joint), string(key.Label)} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("%w: %q/%q/%q", ErrInvalidKey, key.Subject, key.Joint, key.Label)
		}
	}
	return nil
}

// Put writes one leaf. Directory creation is idempotent and the array is
// written to a temporary file first, then renamed into place.
func (s *NpyStore) Put(ctx context.Context, key Key, strides *mat.Dense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if strides == nil || strides.IsEmpty() {
		return fmt.Errorf("put %s/%s/%s: empty array", key.Subject, key.Joint, key.Label)
	}

	path := s.Path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+string(key.Label)+"-*.npy")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := npyio.Write(tmp, strides); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// Get reads one leaf.
func (s *NpyStore) Get(ctx context.Context, key Key) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	path := s.Path(key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

// Subjects lists subject directories under the root.
func (s *NpyStore) Subjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listDirs(s.root)
}

// Joints lists joint directories of a subject.
func (s *NpyStore) Joints(ctx context.Context, subject string) ([]model.Joint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := listDirs(filepath.Join(s.root, subject))
	if err != nil {
		return nil, err
	}
	out := make([]model.Joint, len(names))
	for i, n := range names {
		out[i] = model.Joint(n)
	}
	return out, nil
}

// Labels lists the .npy artifacts of a subject and joint.
func (s *NpyStore) Labels(ctx context.Context, subject string, joint model.Joint) ([]model.FinalLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, subject, string(joint))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []model.FinalLabel
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != defaultExt {
			continue
		}
		out = append(out, model.FinalLabel(strings.TrimSuffix(name, defaultExt)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
