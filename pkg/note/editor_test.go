package note

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrhq/postnote/pkg/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "thumb.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 16, 9))))
	return path
}

func TestPopulateEditorWithoutThumbnail(t *testing.T) {
	cfg := testConfig()
	sel := cfg.Selectors
	page := newFakePage()
	page.show(sel.TitleInput)
	page.show(sel.AddImageButton)

	p, rec := newTestPublisher(t, cfg)
	uploaded, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "Hello", Body: "World"})
	require.NoError(t, err)

	assert.False(t, uploaded)
	title := sel.TitleInput.String()
	body := sel.BodyEditor.String()
	assert.Equal(t, []string{
		"navigate:" + cfg.Site.NewPostURL,
		"wait:" + title,
		"click:" + title,
		"clear:" + title,
		"type:" + title + ":Hello:50ms",
		"click:" + body,
		"type:" + body + ":World:5ms",
		"click:" + title,
	}, page.events)
	assert.Equal(t, 1, rec.count(cfg.Timings.BodySyncSettle))
	assert.Equal(t, 1, rec.count(cfg.Timings.BlurSettle))
}

func TestPopulateEditorSkipsUnusableThumbnail(t *testing.T) {
	for _, path := range []string{"", "null", "undefined", "/nonexistent/thumb.png"} {
		t.Run(path, func(t *testing.T) {
			cfg := testConfig()
			sel := cfg.Selectors
			page := newFakePage()
			page.show(sel.TitleInput)
			page.show(sel.AddImageButton)
			page.show(sel.SaveImageButton)

			p, rec := newTestPublisher(t, cfg)
			uploaded, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "t", Body: "b", ThumbnailPath: path})
			require.NoError(t, err)

			assert.False(t, uploaded)
			assert.Empty(t, touching(page, sel.AddImageButton, sel.UploadImageText, sel.SaveImageButton))
			assert.Empty(t, page.uploaded)
			assert.Zero(t, rec.count(cfg.Timings.ThumbnailSettle))
		})
	}
}

func TestPopulateEditorUploadsThumbnail(t *testing.T) {
	cfg := testConfig()
	sel := cfg.Selectors
	page := newFakePage()
	page.show(sel.TitleInput)
	page.show(sel.AddImageButton)
	page.show(sel.SaveImageButton)
	thumb := writePNG(t)

	p, rec := newTestPublisher(t, cfg)
	uploaded, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "t", Body: "b", ThumbnailPath: thumb})
	require.NoError(t, err)

	assert.True(t, uploaded)
	assert.Equal(t, []string{thumb}, page.uploaded)
	assert.Equal(t, []string{
		"click:" + sel.AddImageButton.String(),
		"click:" + sel.UploadImageText.String(),
		"upload:" + thumb,
		"wait:" + sel.SaveImageButton.String(),
		"click:" + sel.SaveImageButton.String(),
	}, page.events[2:7])
	assert.Equal(t, 1, rec.count(cfg.Timings.ThumbnailSettle))
}

func TestPopulateEditorNoImageButton(t *testing.T) {
	cfg := testConfig()
	page := newFakePage()
	page.show(cfg.Selectors.TitleInput)

	p, _ := newTestPublisher(t, cfg)
	uploaded, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "t", Body: "b", ThumbnailPath: writePNG(t)})
	require.NoError(t, err)

	assert.False(t, uploaded)
	assert.Empty(t, page.uploaded)
}

func TestPopulateEditorSaveButtonMissing(t *testing.T) {
	cfg := testConfig()
	sel := cfg.Selectors
	page := newFakePage()
	page.show(sel.TitleInput)
	page.show(sel.AddImageButton)

	p, _ := newTestPublisher(t, cfg)
	_, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "t", Body: "b", ThumbnailPath: writePNG(t)})
	require.Error(t, err)

	var thumbErr *ThumbnailError
	require.True(t, errors.As(err, &thumbErr))
	assert.Equal(t, CodeThumbnail, ErrorCode(err))
	assert.Empty(t, touching(page, sel.BodyEditor))
}

func TestPopulateEditorTitleNeverAppears(t *testing.T) {
	cfg := testConfig()
	page := newFakePage()

	p, _ := newTestPublisher(t, cfg)
	_, err := p.PopulateEditor(context.Background(), page, post.Request{Title: "t", Body: "b"})
	require.Error(t, err)

	var loadErr *EditorLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, CodeEditorLoad, ErrorCode(err))
	assert.Empty(t, page.eventsWith("type:"))
}
