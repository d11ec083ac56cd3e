package devotional

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New()
	require.NoError(t, err)
	return g
}

func TestGenerate_ByBook(t *testing.T) {
	g := testGenerator(t)

	d := g.Generate("Proverbs 3:5 - Trust in Yahweh with all your heart.")
	assert.Equal(t, "Walking in Wisdom", d.Title)
	assert.Contains(t, d.Content, "**Proverbs 3:5**")
	assert.Contains(t, d.Content, "> Trust in Yahweh with all your heart.")

	d = g.Generate("1 John 4:8 - He who doesn't love doesn't know God, for God is love.")
	assert.Equal(t, "Rooted in Love", d.Title)
}

func TestGenerate_ByKeyword(t *testing.T) {
	g := testGenerator(t)
	d := g.Generate("John 14:27 - Peace I leave with you.")
	assert.Equal(t, "The Peace That Guards Your Heart", d.Title)
}

func TestGenerate_Default(t *testing.T) {
	g := testGenerator(t)
	d := g.Generate("Jonah 2:9 - Salvation belongs to Yahweh.")
	assert.Equal(t, "Reflecting on Jonah 2:9", d.Title)
}

func TestGenerate_IsDeterministic(t *testing.T) {
	g := testGenerator(t)
	text := "Romans 8:28 - We know that all things work together for good."
	assert.Equal(t, g.Generate(text), g.Generate(text))

	other, err := New()
	require.NoError(t, err)
	assert.Equal(t, g.Generate(text), other.Generate(text))
}

func TestGenerate_EndsWithPrayerFocus(t *testing.T) {
	g := testGenerator(t)
	d := g.Generate("no separator here")
	assert.True(t, strings.HasSuffix(d.Content, prayerFocus))
	assert.Equal(t, "Reflecting on no separator here", d.Title)
}

func TestNewFromFS_RequiresOneDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("---\ntitle: A\n---\nbody")},
	}
	_, err := NewFromFS(fsys, "*.md")
	assert.Error(t, err)

	fsys["b.md"] = &fstest.MapFile{Data: []byte("---\ntitle: B\ndefault: true\n---\nbody")}
	fsys["c.md"] = &fstest.MapFile{Data: []byte("---\ntitle: C\ndefault: true\n---\nbody")}
	_, err = NewFromFS(fsys, "*.md")
	assert.Error(t, err)
}

func TestSplitFrontmatter(t *testing.T) {
	m, body, err := splitFrontmatter([]byte("---\ntitle: Hello\nbooks: [Psalm]\n---\nBody text.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", m.Title)
	assert.Equal(t, []string{"Psalm"}, m.Books)
	assert.Equal(t, "Body text.\n", body)

	for _, bad := range []string{"no frontmatter", "---\ntitle: x\n", "---\nbooks: [a]\n---\nbody", "---\n: {{{\n---\n"} {
		_, _, err := splitFrontmatter([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestBookOf(t *testing.T) {
	assert.Equal(t, "1 John", bookOf("1 John 4:8"))
	assert.Equal(t, "Song of Solomon", bookOf("Song of Solomon 2:4"))
	assert.Equal(t, "Psalm", bookOf("Psalm 23"))
	assert.Equal(t, "Obadiah", bookOf("Obadiah"))
}
