package pdftext

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages []string
	errAt int
}

func (f fakePages) NumPage() int { return len(f.pages) }

func (f fakePages) PageText(i int) (string, error) {
	if i == f.errAt {
		return "", errors.New("bad page")
	}
	return f.pages[i-1], nil
}

func TestCollect_JoinsPagesInOrder(t *testing.T) {
	t.Parallel()

	got, err := collect(fakePages{pages: []string{"Abstract", "Methods", "Results"}})
	require.NoError(t, err)
	assert.Equal(t, "Abstract\nMethods\nResults", got)
}

func TestCollect_SkipsUnreadablePage(t *testing.T) {
	t.Parallel()

	got, err := collect(fakePages{pages: []string{"one", "two", "three"}, errAt: 2})
	require.NoError(t, err)
	assert.Equal(t, "one\nthree", got)
}

func TestCollect_NoPages(t *testing.T) {
	t.Parallel()

	_, err := collect(fakePages{})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestBound_TooShort(t *testing.T) {
	t.Parallel()

	_, err := bound("   short text   ", Options{MinChars: 100, MaxChars: 3500})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestBound_Truncates(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("é", 50) + strings.Repeat("x", 100)
	got, err := bound(text, Options{MinChars: 10, MaxChars: 60})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50)+strings.Repeat("x", 10), got)
}

func TestBound_KeepsShortEnoughText(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("word ", 30)
	got, err := bound(text, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(text), got)
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	t.Parallel()

	_, err := Extract([]byte("this is not a pdf"), DefaultOptions())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoText)
}

func TestExtract_EmptyPayload(t *testing.T) {
	t.Parallel()

	_, err := Extract(nil, Options{})
	assert.Error(t, err)
}

const (
	pageOne = "Abstract. We segment brain tumours with a 3D U-Net trained on the BraTS dataset."
	pageTwo = "Methods. Models were built in PyTorch with MONAI and scored by Dice overlap."
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "two_pages.pdf"))
	require.NoError(t, err)
	return data
}

func TestExtract_PagesInDocumentOrder(t *testing.T) {
	t.Parallel()

	got, err := Extract(readFixture(t), DefaultOptions())
	require.NoError(t, err)

	first := strings.Index(got, pageOne)
	second := strings.Index(got, pageTwo)
	require.GreaterOrEqual(t, first, 0, got)
	require.Greater(t, second, first, got)
	assert.Contains(t, got[first+len(pageOne):second], "\n")
}

func TestExtract_BelowMinimumIsUnreadable(t *testing.T) {
	t.Parallel()

	_, err := Extract(readFixture(t), Options{MinChars: 1000, MaxChars: 3500})
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_TruncatesAfterThreshold(t *testing.T) {
	t.Parallel()

	got, err := Extract(readFixture(t), Options{MinChars: 100, MaxChars: 40})
	require.NoError(t, err)
	assert.Equal(t, pageOne[:40], got)
}
