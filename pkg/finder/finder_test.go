package finder_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/hamlint/pkg/finder"
)

func TestFindTemplates(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"app/views/index.haml",
		"app/views/users/show.haml",
		"app/views/notes.txt",
		"vendor/widget/widget.haml",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("%p"), 0o644))
	}

	f := finder.NewDefaultFinder(fs)
	found, err := f.FindTemplates(context.Background(), "app",
		[]string{"**/*.haml"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"views/index.haml", "views/users/show.haml"}, found)
}

func TestFindTemplates_Exclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"root/index.haml",
		"root/vendor/skip.haml",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("%p"), 0o644))
	}

	f := finder.NewDefaultFinder(fs)
	found, err := f.FindTemplates(context.Background(), "root",
		[]string{"**/*.haml"}, []string{"vendor/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.haml"}, found)
}

func TestFindTemplates_InvalidPattern(t *testing.T) {
	f := finder.NewDefaultFinder(afero.NewMemMapFs())
	_, err := f.FindTemplates(context.Background(), ".", []string{"["}, nil)
	require.Error(t, err)
}
