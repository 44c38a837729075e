package selection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mb = 1024 * 1024

func jpeg(name string, size int64) SelectableFile {
	return SelectableFile{Name: name, Size: size, MimeType: "image/jpeg"}
}

func TestEvaluateAcceptsValidFile(t *testing.T) {
	res := Evaluate(NewState(DefaultLimits()), []SelectableFile{jpeg("photo.jpg", 10*mb)})

	assert.Empty(t, res.Errors)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "photo.jpg", res.Accepted[0].Name)
	assert.NoError(t, res.Err())
}

func TestEvaluatePerFileRules(t *testing.T) {
	tests := []struct {
		name         string
		file         SelectableFile
		wantAccepted bool
		wantErrors   []string
	}{
		{
			name:         "At size limit",
			file:         jpeg("edge.jpg", MaxFileSize),
			wantAccepted: true,
		},
		{
			name:       "Over size limit",
			file:       jpeg("big.jpg", MaxFileSize+1),
			wantErrors: []string{"big.jpg: File size exceeds 500 MB limit"},
		},
		{
			name:       "Unsupported type",
			file:       SelectableFile{Name: "run.exe", Size: 1, MimeType: "application/x-msdownload"},
			wantErrors: []string{"run.exe: File type not supported"},
		},
		{
			name:       "Empty type",
			file:       SelectableFile{Name: "blob", Size: 1},
			wantErrors: []string{"blob: File type not supported"},
		},
		{
			name: "Both rules",
			file: SelectableFile{Name: "huge.iso", Size: MaxFileSize + 1, MimeType: "application/x-iso9660-image"},
			wantErrors: []string{
				"huge.iso: File size exceeds 500 MB limit",
				"huge.iso: File type not supported",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(NewState(DefaultLimits()), []SelectableFile{tt.file})
			assert.Equal(t, tt.wantErrors, res.Errors)
			if tt.wantAccepted {
				assert.Len(t, res.Accepted, 1)
			} else {
				assert.Empty(t, res.Accepted)
			}
		})
	}
}

func TestEvaluateKeepsValidFilesOfMixedBatch(t *testing.T) {
	incoming := []SelectableFile{
		jpeg("a.jpg", 1),
		{Name: "b.exe", Size: 1, MimeType: "application/x-msdownload"},
		{Name: "c.pdf", Size: 1, MimeType: "application/pdf"},
	}

	res := Evaluate(NewState(DefaultLimits()), incoming)

	require.Len(t, res.Accepted, 2)
	assert.Equal(t, "a.jpg", res.Accepted[0].Name)
	assert.Equal(t, "c.pdf", res.Accepted[1].Name)
	assert.Equal(t, []string{"b.exe: File type not supported"}, res.Errors)
}

func TestEvaluateMaxFiles(t *testing.T) {
	state := NewState(DefaultLimits())
	for i := 0; i < 49; i++ {
		require.Empty(t, state.Add([]SelectableFile{jpeg("f.jpg", 1)}).Errors)
	}

	// 49 + 1 stays within the limit
	res := Evaluate(state, []SelectableFile{jpeg("ok.jpg", 1)})
	assert.Empty(t, res.Errors)

	// 49 + 2 does not, even though each file is fine on its own
	res = Evaluate(state, []SelectableFile{jpeg("x.jpg", 1), jpeg("y.jpg", 1)})
	assert.Contains(t, res.Errors, "Maximum 50 files allowed")
	assert.Empty(t, res.Accepted)
}

func TestEvaluateMaxFilesReportedWithInvalidFiles(t *testing.T) {
	incoming := make([]SelectableFile, 51)
	for i := range incoming {
		incoming[i] = SelectableFile{Name: "bad.bin", Size: 1, MimeType: "application/octet-stream"}
	}

	res := Evaluate(nil, incoming)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "Maximum 50 files allowed", res.Errors[0])
	assert.Len(t, res.Errors, 52)
}

func TestEvaluateTotalSize(t *testing.T) {
	state := NewState(DefaultLimits())
	for i := 0; i < 4; i++ {
		require.Empty(t, state.Add([]SelectableFile{jpeg("part.jpg", 500*mb)}).Errors)
	}
	assert.Equal(t, int64(2000*mb), state.TotalBytes())

	// exactly at the 2 GiB boundary is allowed
	res := Evaluate(state, []SelectableFile{jpeg("fill.jpg", 48*mb)})
	assert.Empty(t, res.Errors)

	res = Evaluate(state, []SelectableFile{jpeg("over.jpg", 48*mb+1)})
	assert.Equal(t, []string{"Total size exceeds 2 GB limit"}, res.Errors)
	assert.Empty(t, res.Accepted)
}

func TestAddRejectsWholeBatchOnAggregateFailure(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFiles = 2
	state := NewState(limits)

	res := state.Add([]SelectableFile{jpeg("a.jpg", 1), jpeg("b.jpg", 1), jpeg("c.jpg", 1)})

	assert.Equal(t, []string{"Maximum 2 files allowed"}, res.Errors)
	assert.Zero(t, state.Count())

	var verr *ValidationError
	require.ErrorAs(t, res.Err(), &verr)
	assert.Equal(t, "Maximum 2 files allowed", verr.Error())
}

func TestStateInvariantHoldsAcrossMutations(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFiles = 5
	limits.MaxTotalSize = 10
	state := NewState(limits)

	batches := [][]SelectableFile{
		{jpeg("a.jpg", 3), jpeg("b.jpg", 3)},
		{jpeg("c.jpg", 3), jpeg("d.jpg", 3)},
		{jpeg("e.jpg", 4)},
		{jpeg("f.jpg", 1), jpeg("g.jpg", 1), jpeg("h.jpg", 1), jpeg("i.jpg", 1)},
	}
	for _, b := range batches {
		state.Add(b)
		assert.LessOrEqual(t, state.Count(), limits.MaxFiles)
		assert.LessOrEqual(t, state.TotalBytes(), limits.MaxTotalSize)
	}
	assert.Equal(t, 3, state.Count())
}

func TestStateRemove(t *testing.T) {
	state := NewState(DefaultLimits())
	state.Add([]SelectableFile{jpeg("a.jpg", 1), jpeg("b.jpg", 2), jpeg("c.jpg", 3)})

	before := state.Files()
	state.Remove(1)

	files := state.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.jpg", files[0].Name)
	assert.Equal(t, "c.jpg", files[1].Name)
	assert.Equal(t, int64(4), state.TotalBytes())
	assert.Equal(t, "b.jpg", before[1].Name, "earlier snapshots are not mutated")

	state.Remove(7)
	state.Remove(-1)
	assert.Equal(t, 2, state.Count())

	state.Reset()
	assert.Zero(t, state.Count())
	assert.Zero(t, state.TotalBytes())
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{MaxFileSize, "500 MB"},
		{MaxTotalSize, "2 GB"},
		{10 * mb, "10 MB"},
		{1536, "1.5 KB"},
		{1000, "1000 Bytes"},
		{1, "1 Bytes"},
		{0, "0 Bytes"},
		{-1, "0 Bytes"},
		{1234567, "1.18 MB"},
		{5 << 40, "5 TB"},
		{5 << 50, "5120 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.bytes))
		})
	}
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello there\n"), 0o644))

	f, err := FromPath(textPath)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", f.Name)
	assert.Equal(t, int64(12), f.Size)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.Equal(t, textPath, f.Handle)

	jpegPath := filepath.Join(dir, "photo.JPG")
	header := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	require.NoError(t, os.WriteFile(jpegPath, header, 0o644))

	f, err = FromPath(jpegPath)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.MimeType)

	_, err = FromPath(dir)
	assert.Error(t, err)

	_, err = FromPath(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestAllowedTypesIsACopy(t *testing.T) {
	types := AllowedTypes()
	types[0] = "application/x-evil"
	assert.False(t, strings.HasPrefix(AllowedTypes()[0], "application/x-evil"))
}
