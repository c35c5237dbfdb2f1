package repository

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/structure"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-12
	return math.Abs(a-b) < tolerance
}

func denseEqual(t *testing.T, got, want *mat.Dense) {
	t.Helper()
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Fatalf("expected %dx%d, got %dx%d", wr, wc, gr, gc)
	}
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			if !floatEqual(got.At(i, j), want.At(i, j)) {
				t.Fatalf("at (%d,%d): expected %v, got %v", i, j, want.At(i, j), got.At(i, j))
			}
		}
	}
}

func sampleLeaf(rows, cols int, offset float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = offset + float64(i)*0.25
	}
	return mat.NewDense(rows, cols, data)
}

func testStores(t *testing.T) map[string]Store {
	return map[string]Store{
		"npy":    NewNpyStore(filepath.Join(t.TempDir(), "normalized")),
		"memory": NewMemoryStore(),
	}
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			key := Key{Subject: "AB01", Joint: model.RightKnee, Label: "w2w"}
			want := sampleLeaf(3, 50, 1)

			if err := store.Put(ctx, key, want); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			denseEqual(t, got, want)

			// Replacing a leaf keeps only the latest array.
			replacement := sampleLeaf(2, 50, -5)
			if err := store.Put(ctx, key, replacement); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err = store.Get(ctx, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			denseEqual(t, got, replacement)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, Key{Subject: "AB09", Joint: model.LeftHip, Label: "rd2rd"})
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			bad := []Key{
				{Subject: "", Joint: model.RightKnee, Label: "w2w"},
				{Subject: "AB01", Joint: "../etc", Label: "w2w"},
				{Subject: "AB01", Joint: model.RightKnee, Label: ".."},
			}
			for _, key := range bad {
				if err := store.Put(ctx, key, sampleLeaf(1, 4, 0)); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("key %+v: expected ErrInvalidKey, got %v", key, err)
				}
			}

			key := Key{Subject: "AB01", Joint: model.RightKnee, Label: "w2w"}
			if err := store.Put(ctx, key, nil); err == nil {
				t.Error("expected error for nil array")
			}
		})
	}
}

func TestStore_Listing(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			keys := []Key{
				{Subject: "AB02", Joint: model.RightKnee, Label: "w2w"},
				{Subject: "AB01", Joint: model.RightKnee, Label: "w2ra"},
				{Subject: "AB01", Joint: model.RightKnee, Label: "ra2ra"},
				{Subject: "AB01", Joint: model.LeftAnkle, Label: "w2w"},
			}
			for i, k := range keys {
				if err := store.Put(ctx, k, sampleLeaf(1, 8, float64(i))); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			subjects, err := store.Subjects(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(subjects) != 2 || subjects[0] != "AB01" || subjects[1] != "AB02" {
				t.Errorf("expected [AB01 AB02], got %v", subjects)
			}

			joints, err := store.Joints(ctx, "AB01")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(joints) != 2 || joints[0] != model.LeftAnkle || joints[1] != model.RightKnee {
				t.Errorf("expected [Left_Ankle Right_Knee], got %v", joints)
			}

			labels, err := store.Labels(ctx, "AB01", model.RightKnee)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(labels) != 2 || labels[0] != "ra2ra" || labels[1] != "w2ra" {
				t.Errorf("expected [ra2ra w2ra], got %v", labels)
			}
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			key := Key{Subject: "AB01", Joint: model.RightKnee, Label: "w2w"}
			if err := store.Put(ctx, key, sampleLeaf(1, 4, 0)); !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})
	}
}

func TestNpyStore_Layout(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "normalized")
	store := NewNpyStore(root)
	key := Key{Subject: "AB03", Joint: model.LeftHip, Label: "sa2w"}

	// Two writes into the same subject and joint reuse the directories.
	if err := store.Put(ctx, key, sampleLeaf(2, 10, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := Key{Subject: "AB03", Joint: model.LeftHip, Label: "w2w"}
	if err := store.Put(ctx, other, sampleLeaf(4, 10, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(root, "AB03", "Left_Hip", "sa2w.npy")
	if store.Path(key) != want {
		t.Errorf("expected path %s, got %s", want, store.Path(key))
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected artifact at %s: %v", want, err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "AB03", "Left_Hip"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 artifacts and no temp files, got %d", len(entries))
	}

	// Stray files are ignored by listing.
	if err := os.WriteFile(filepath.Join(root, "AB03", "Left_Hip", "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels, err := store.Labels(ctx, "AB03", model.LeftHip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("expected 2 labels, got %v", labels)
	}
}

func TestMemoryStore_Copies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := Key{Subject: "AB01", Joint: model.RightKnee, Label: "w2w"}
	m := sampleLeaf(1, 4, 0)

	if err := store.Put(ctx, key, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Set(0, 0, 99)

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.At(0, 0) != 0 {
		t.Errorf("expected stored copy to be unaffected, got %v", got.At(0, 0))
	}
}

func TestMemoryStore_ConcurrentPut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	subjects := []string{"AB01", "AB02", "AB03", "AB04", "AB05", "AB06", "AB07", "AB08"}

	var wg sync.WaitGroup
	for i, s := range subjects {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			key := Key{Subject: s, Joint: model.RightKnee, Label: "w2w"}
			if err := store.Put(ctx, key, sampleLeaf(1, 4, float64(i))); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i, s)
	}
	wg.Wait()

	if store.Len() != len(subjects) {
		t.Errorf("expected %d leaves, got %d", len(subjects), store.Len())
	}
}

func TestLeaves_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewNpyStore(t.TempDir())
	leaves := []structure.Leaf{
		{Subject: "AB01", Joint: model.RightKnee, Label: "w2w", Strides: sampleLeaf(3, 6, 0)},
		{Subject: "AB01", Joint: model.LeftKnee, Label: "w2w", Strides: sampleLeaf(2, 6, 1)},
		{Subject: "AB02", Joint: model.RightKnee, Label: "ra2ra", Strides: sampleLeaf(1, 6, 2)},
	}

	var written int
	if err := PutLeaves(ctx, store, leaves, func(structure.Leaf) { written++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != len(leaves) {
		t.Errorf("expected %d write callbacks, got %d", len(leaves), written)
	}

	loaded, err := LoadLeaves(ctx, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 leaves, got %d", len(loaded))
	}
	// Lexical order: AB01/Left_Knee, AB01/Right_Knee, AB02/Right_Knee.
	if loaded[0].Joint != model.LeftKnee || loaded[2].Subject != "AB02" {
		t.Errorf("unexpected order: %+v %+v", loaded[0], loaded[2])
	}
	denseEqual(t, loaded[0].Strides, leaves[1].Strides)
	denseEqual(t, loaded[2].Strides, leaves[2].Strides)
}

func TestLoadLeaves_EmptyRoot(t *testing.T) {
	store := NewNpyStore(filepath.Join(t.TempDir(), "missing"))
	if _, err := LoadLeaves(context.Background(), store); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestCorpusParquet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "corpus.parquet")

	var corpus model.Corpus
	corpus.Append(model.CorpusLabel{Subject: "AB01", Joint: model.RightKnee, Label: "w2w"}, []float64{1, 2, 3, 4})
	corpus.Append(model.CorpusLabel{Subject: "AB01", Joint: model.LeftKnee, Label: "w2ra"}, []float64{-1, 0.5, 2.25, 8})
	corpus.Append(model.CorpusLabel{Subject: "AB02", Joint: model.RightHip, Label: "sd2sd"}, []float64{0, 0, 0, 1e-3})

	if err := WriteCorpus(path, corpus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ReadCorpus(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != corpus.Len() {
		t.Fatalf("expected %d rows, got %d", corpus.Len(), got.Len())
	}
	for i := range corpus.Data {
		if got.Labels[i] != corpus.Labels[i] {
			t.Errorf("row %d: expected label %+v, got %+v", i, corpus.Labels[i], got.Labels[i])
		}
		if len(got.Data[i]) != len(corpus.Data[i]) {
			t.Fatalf("row %d: expected %d values, got %d", i, len(corpus.Data[i]), len(got.Data[i]))
		}
		for j := range corpus.Data[i] {
			if !floatEqual(got.Data[i][j], corpus.Data[i][j]) {
				t.Errorf("row %d col %d: expected %v, got %v", i, j, corpus.Data[i][j], got.Data[i][j])
			}
		}
	}
}

func TestCorpusParquet_Mismatch(t *testing.T) {
	corpus := model.Corpus{Data: [][]float64{{1}}}
	if err := WriteCorpus(filepath.Join(t.TempDir(), "c.parquet"), corpus); err == nil {
		t.Error("expected error for mismatched labels")
	}
}
