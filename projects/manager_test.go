package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/kv"
)

func validDraft(title string) Draft {
	return Draft{
		Title:       title,
		Description: "A site",
		GithubLink:  "https://x.test/a",
		Image:       "/public/uploads/site.jpg",
	}
}

func newTestManager(t *testing.T) (*Manager, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	m := NewManager(store, nil, nil)
	require.NoError(t, m.Load(context.Background()))
	return m, store
}

func TestCreateAndDeleteScenario(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.Empty(t, m.List())

	rec, err := m.Create(ctx, Draft{
		Title:       "Site",
		Description: "A site",
		GithubLink:  "https://x.test/a",
		LiveLink:    "",
		Image:       "/public/uploads/site.jpg",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, DefaultStatus, rec.Status)

	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, rec, list[0])

	require.NoError(t, m.Delete(ctx, rec.ID))
	assert.Empty(t, m.List())
}

func TestCreateAppendsWithUniqueIDs(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	var before []Record
	for i := 0; i < 20; i++ {
		before = m.List()
		rec, err := m.Create(ctx, validDraft(fmt.Sprintf("p%d", i)))
		require.NoError(t, err)

		for _, old := range before {
			assert.NotEqual(t, old.ID, rec.ID)
		}
		after := m.List()
		require.Len(t, after, len(before)+1)
		assert.Equal(t, before, after[:len(before)], "existing records keep their order")
		assert.Equal(t, rec, after[len(after)-1], "new record is appended")
	}
}

func TestCreateWithoutTitleDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_, err := m.Create(ctx, validDraft("keep"))
	require.NoError(t, err)
	snapshot, _, _ := store.Get(ctx, StoreKey)

	d := validDraft("   ")
	assert.Contains(t, Validate(d), FieldTitle)

	_, err = m.Create(ctx, d)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, FieldTitle)
	assert.Len(t, m.List(), 1)

	after, _, _ := store.Get(ctx, StoreKey)
	assert.Equal(t, snapshot, after)
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	v := Validate(Draft{LiveLink: "not a url"})
	assert.Equal(t, Violations{
		FieldTitle:       "Project title is required",
		FieldDescription: "Project description is required",
		FieldGithubLink:  "GitHub link is required",
		FieldLiveLink:    "Must be a valid URL",
		FieldImage:       "Project image is required",
	}, v)
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Draft)
		field string
	}{
		{"malformed github link", func(d *Draft) { d.GithubLink = "github.com/me" }, FieldGithubLink},
		{"malformed live link", func(d *Draft) { d.LiveLink = "::" }, FieldLiveLink},
		{"javascript github link", func(d *Draft) { d.GithubLink = "javascript:alert(1)" }, FieldGithubLink},
		{"mailto github link", func(d *Draft) { d.GithubLink = "mailto:me@x.test" }, FieldGithubLink},
		{"opaque github link", func(d *Draft) { d.GithubLink = "foo:bar" }, FieldGithubLink},
		{"javascript live link", func(d *Draft) { d.LiveLink = "javascript:alert(1)" }, FieldLiveLink},
		{"mailto live link", func(d *Draft) { d.LiveLink = "mailto:me@x.test" }, FieldLiveLink},
		{"opaque live link", func(d *Draft) { d.LiveLink = "foo:bar" }, FieldLiveLink},
		{"hostless live link", func(d *Draft) { d.LiveLink = "https:///path" }, FieldLiveLink},
		{"blob preview image", func(d *Draft) { d.Image = "blob:http://localhost/1234" }, FieldImage},
		{"data uri image", func(d *Draft) { d.Image = "data:image/png;base64,AAAA" }, FieldImage},
		{"relative image path", func(d *Draft) { d.Image = "uploads/a.jpg" }, FieldImage},
		{"missing description", func(d *Draft) { d.Description = "\n" }, FieldDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft("ok")
			tt.edit(&d)
			v := Validate(d)
			assert.Len(t, v, 1)
			assert.Contains(t, v, tt.field)
		})
	}

	ok := validDraft("ok")
	ok.LiveLink = "https://site.test"
	ok.Image = "https://cdn.test/img.png"
	assert.Empty(t, Validate(ok))

	ok.LiveLink = "ftp://files.test/demo.zip"
	assert.Empty(t, Validate(ok))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	a, _ := m.Create(ctx, validDraft("a"))
	_, _ = m.Create(ctx, validDraft("b"))

	require.NoError(t, m.Delete(ctx, a.ID))
	once := m.List()
	require.NoError(t, m.Delete(ctx, a.ID))
	assert.Equal(t, once, m.List())
	require.NoError(t, m.Delete(ctx, "missing"))
	assert.Equal(t, once, m.List())
}

func TestUpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	a, _ := m.Create(ctx, validDraft("a"))
	b, _ := m.Create(ctx, validDraft("b"))
	c, _ := m.Create(ctx, validDraft("c"))

	d := validDraft("b2")
	d.LiveLink = "https://b.test"
	d.Tags = []string{"Go", " ", "HTMX"}
	updated, err := m.Update(ctx, b.ID, d)
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, updated, list[1])
	assert.Equal(t, "b2", list[1].Title)
	assert.Equal(t, "https://b.test", list[1].LiveLink)
	assert.Equal(t, []string{"Go", "HTMX"}, list[1].Tags)
	assert.Equal(t, DefaultStatus, list[1].Status)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	_, err := m.Update(ctx, "nope", validDraft("x"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, m.List(), "update must not create")
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Update(context.Background(), "nope", Draft{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	for _, title := range []string{"one", "two", "three"} {
		d := validDraft(title)
		d.Tags = []string{"go"}
		_, err := m.Create(ctx, d)
		require.NoError(t, err)
	}

	reloaded := NewManager(store, nil, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, m.List(), reloaded.List())
}

func TestLoadToleratesMissingAndCorruptSnapshots(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := NewManager(store, nil, nil)
	require.NoError(t, m.Load(ctx))
	assert.Empty(t, m.List())

	require.NoError(t, store.Set(ctx, StoreKey, "{not json"))
	require.NoError(t, m.Load(ctx))
	assert.Empty(t, m.List())
}

func TestLoadAcceptsNumericIDs(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, StoreKey,
		`[{"id":1712345678901,"title":"Old","description":"d","image":"/i.jpg","githubLink":"https://g.test","liveLink":"","status":"Live"}]`))

	m := NewManager(store, nil, nil)
	require.NoError(t, m.Load(ctx))
	list := m.List()
	require.Len(t, list, 1)
	assert.Equal(t, "1712345678901", list[0].ID)

	require.NoError(t, m.Delete(ctx, "1712345678901"))
	assert.Empty(t, m.List())
}

func TestPersistenceFailureKeepsMemoryAndRetries(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	store.FailWrites(true)

	rec, err := m.Create(ctx, validDraft("offline"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotEmpty(t, rec.ID)
	assert.Len(t, m.List(), 1)
	_, ok, _ := store.Get(ctx, StoreKey)
	assert.False(t, ok)

	store.FailWrites(false)
	_, err = m.Create(ctx, validDraft("online"))
	require.NoError(t, err)

	reloaded := NewManager(store, nil, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), 2, "next mutation writes the full list")
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	d := validDraft("a")
	d.Tags = []string{"go"}
	_, err := m.Create(ctx, d)
	require.NoError(t, err)

	list := m.List()
	list[0].Title = "mutated"
	list[0].Tags[0] = "mutated"
	assert.Equal(t, "a", m.List()[0].Title)
	assert.Equal(t, "go", m.List()[0].Tags[0])
}

type fakeImages struct {
	names   []string
	deleted []string
	err     error
}

func (f *fakeImages) Put(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	return "https://cdn.test/" + name, nil
}

func (f *fakeImages) Delete(_ context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func pngReader(t *testing.T) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return &buf
}

func TestAttachImageProducesDurableReference(t *testing.T) {
	ctx := context.Background()
	images := &fakeImages{}
	m := NewManager(kv.NewMemory(), images, nil)

	d := validDraft("with image")
	d.Image = ""
	require.NoError(t, m.AttachImage(ctx, &d, "Shot.png", pngReader(t)))
	assert.Equal(t, "https://cdn.test/shot.jpg", d.Image)
	assert.Empty(t, Validate(d))

	_, err := m.Create(ctx, d)
	require.NoError(t, err)
}

func TestAttachImageErrors(t *testing.T) {
	ctx := context.Background()
	d := Draft{Image: "/keep.jpg"}

	noStore := NewManager(kv.NewMemory(), nil, nil)
	assert.ErrorIs(t, noStore.AttachImage(ctx, &d, "a.png", pngReader(t)), ErrNoImageStore)

	broken := NewManager(kv.NewMemory(), &fakeImages{err: errors.New("disk full")}, nil)
	assert.Error(t, broken.AttachImage(ctx, &d, "a.png", pngReader(t)))

	bad := NewManager(kv.NewMemory(), &fakeImages{}, nil)
	assert.Error(t, bad.AttachImage(ctx, &d, "a.png", strings.NewReader("nope")))

	assert.Equal(t, "/keep.jpg", d.Image)
}

func TestReplacedAndDeletedImagesAreReleased(t *testing.T) {
	ctx := context.Background()
	images := &fakeImages{}
	m := NewManager(kv.NewMemory(), images, nil)

	a, err := m.Create(ctx, validDraft("a"))
	require.NoError(t, err)
	b, err := m.Create(ctx, validDraft("b"))
	require.NoError(t, err)

	d := validDraft("a")
	d.Image = "https://cdn.test/new.jpg"
	_, err = m.Update(ctx, a.ID, d)
	require.NoError(t, err)
	assert.Empty(t, images.deleted, "old image is still used by b")

	require.NoError(t, m.Delete(ctx, b.ID))
	assert.Equal(t, []string{"/public/uploads/site.jpg"}, images.deleted)

	require.NoError(t, m.Delete(ctx, a.ID))
	assert.Equal(t, []string{"/public/uploads/site.jpg", "https://cdn.test/new.jpg"}, images.deleted)
}

func TestImagesKeptWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	images := &fakeImages{}
	m := NewManager(store, images, nil)

	a, err := m.Create(ctx, validDraft("a"))
	require.NoError(t, err)
	b, err := m.Create(ctx, validDraft("b"))
	require.NoError(t, err)
	d := validDraft("b")
	d.Image = "https://cdn.test/b.jpg"
	_, err = m.Update(ctx, b.ID, d)
	require.NoError(t, err)

	store.FailWrites(true)
	d.Image = "https://cdn.test/b2.jpg"
	_, err = m.Update(ctx, b.ID, d)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, m.Delete(ctx, a.ID), ErrPersistence)
	assert.Empty(t, images.deleted)

	raw, ok, err := store.Get(ctx, StoreKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "/public/uploads/site.jpg")
	assert.Contains(t, raw, "https://cdn.test/b.jpg")

	reloaded := NewManager(store, images, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.List(), 2)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "HTMX"}, ParseTags(" Go, ,HTMX,"))
	assert.Nil(t, ParseTags(""))
}
