// Package devotional turns a verse into a short Markdown devotional. Output
// depends only on the verse text.
package devotional

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"github.com/starford/verseclock/internal/verses"
)

//go:embed templates/*.md
var templateFS embed.FS

// prayerFocus closes every devotional.
const prayerFocus = "## Prayer Focus\n\nTake a moment to pray about how you can apply this verse in your life today.\n"

// Devotional is generated reading material for one verse.
type Devotional struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type devTemplate struct {
	name     string
	books    []string
	keywords []string
	isDef    bool
	title    *template.Template
	body     *template.Template
}

type fill struct {
	Reference string
	Body      string
}

// Generator selects and fills devotional templates.
type Generator struct {
	templates []devTemplate
	fallback  *devTemplate
}

// New loads the built-in templates.
func New() (*Generator, error) {
	return NewFromFS(templateFS, "templates/*.md")
}

// NewFromFS loads templates matching pattern from fsys. Exactly one template
// must be marked default.
func NewFromFS(fsys fs.FS, pattern string) (*Generator, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("devotional: glob: %w", err)
	}
	g := &Generator{}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("devotional: read %s: %w", name, err)
		}
		t, err := parseTemplate(name, data)
		if err != nil {
			return nil, fmt.Errorf("devotional: %s: %w", name, err)
		}
		g.templates = append(g.templates, t)
	}
	for i := range g.templates {
		if !g.templates[i].isDef {
			continue
		}
		if g.fallback != nil {
			return nil, fmt.Errorf("devotional: more than one default template")
		}
		g.fallback = &g.templates[i]
	}
	if g.fallback == nil {
		return nil, fmt.Errorf("devotional: no default template")
	}
	return g, nil
}

func parseTemplate(name string, data []byte) (devTemplate, error) {
	m, body, err := splitFrontmatter(data)
	if err != nil {
		return devTemplate{}, err
	}
	title, err := template.New(name + ":title").Parse(m.Title)
	if err != nil {
		return devTemplate{}, err
	}
	bodyTmpl, err := template.New(name).Parse(body)
	if err != nil {
		return devTemplate{}, err
	}
	kw := make([]string, len(m.Keywords))
	for i, k := range m.Keywords {
		kw[i] = strings.ToLower(k)
	}
	return devTemplate{
		name:     name,
		books:    m.Books,
		keywords: kw,
		isDef:    m.Default,
		title:    title,
		body:     bodyTmpl,
	}, nil
}

// Generate builds the devotional for a "<Reference> - <Body>" verse text.
// Templates are tried by book of the reference, then by keywords in the
// body, then the default one.
func (g *Generator) Generate(verseText string) Devotional {
	e := verses.Entry{Text: verseText}
	f := fill{Reference: e.Reference(), Body: e.Body()}
	t := g.pick(f)

	var title, body bytes.Buffer
	if err := t.title.Execute(&title, f); err != nil {
		title.Reset()
		title.WriteString(f.Reference)
	}
	if err := t.body.Execute(&body, f); err != nil {
		body.Reset()
		fmt.Fprintf(&body, "> %s\n", f.Body)
	}
	content := strings.TrimRight(body.String(), "\n") + "\n\n" + prayerFocus
	return Devotional{Title: title.String(), Content: content}
}

func (g *Generator) pick(f fill) *devTemplate {
	book := bookOf(f.Reference)
	for i := range g.templates {
		if slices.Contains(g.templates[i].books, book) {
			return &g.templates[i]
		}
	}
	words := wordSet(f.Body)
	for i := range g.templates {
		for _, k := range g.templates[i].keywords {
			if _, ok := words[k]; ok {
				return &g.templates[i]
			}
		}
	}
	return g.fallback
}

// bookOf strips the trailing "chapter:verse" from a reference:
// "1 John 4:8" -> "1 John".
func bookOf(ref string) string {
	i := strings.LastIndex(ref, " ")
	if i > 0 && strings.ContainsAny(ref[i+1:], "0123456789") {
		return ref[:i]
	}
	return ref
}

func wordSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
