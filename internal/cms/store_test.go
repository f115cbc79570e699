package cms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpStore(t *testing.T) {
	t.Parallel()

	var st Store = NoOpStore{}
	ctx := context.Background()

	_, err := st.FetchPost(ctx, "any")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.ResolveAuthor(ctx, "Ava Blackwood")
	require.ErrorIs(t, err, ErrNotFound)

	titles, err := st.PostTitles(ctx)
	require.NoError(t, err)
	require.Empty(t, titles)

	exists, err := st.SlugExists(ctx, "any")
	require.NoError(t, err)
	require.False(t, exists)

	asset, err := st.UploadImage(ctx, "card.png", "image/png", []byte{1})
	require.NoError(t, err)
	require.NotEmpty(t, asset.URL)
}
