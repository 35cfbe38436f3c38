package view

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diewo77/go-cms/auth"
	"github.com/diewo77/go-cms/i18n"
	"github.com/diewo77/go-cms/internal/models"
)

// Context key for theme
type themeKey struct{}

// WithTheme returns a new context with the given theme.
func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey{}, theme)
}

// ThemeFromContext retrieves the theme from context, defaulting to "light".
func ThemeFromContext(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey{}).(string); ok {
		return theme
	}
	return "light"
}

var (
	baseDir  string
	baseMu   sync.Mutex
	devMode  atomic.Bool
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetManifest     map[string]string
	assetManifestOnce sync.Once

	langResolver  = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	themeResolver = func(r *http.Request) string { return ThemeFromContext(r.Context()) }
)

// SetDevMode disables the template cache and reloads the asset manifest on each render.
func SetDevMode(dev bool) { devMode.Store(dev) }

// layoutBase walks upward from a template path to find the directory that contains layout.html.
// If none is found, it returns the template's own directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d { // reached filesystem root
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

// SetLangResolver allows the host app to provide a custom language resolver (e.g., reading from context).
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetThemeResolver allows the host app to provide a custom theme resolver.
func SetThemeResolver(f func(*http.Request) string) {
	if f != nil {
		themeResolver = f
	}
}

func templatesRoot() string {
	baseMu.Lock()
	defer baseMu.Unlock()
	if baseDir != "" {
		return baseDir
	}
	baseDir = "templates"
	for _, c := range []string{"templates", "../templates", "../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			break
		}
	}
	return baseDir
}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	theme := themeResolver(r)
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"theme": func() string { return theme },
		"add":   func(a, b int) int { return a + b },
		"year":  func() int { return time.Now().Year() },
		"asset": func(path string) string { return resolveAsset(path) },
		// html marks stored article markup as trusted.
		"html":    func(s string) template.HTML { return template.HTML(s) },
		"excerpt": func(s string, n int) string { return models.Truncate(models.StripHTML(s), n) },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"datetimeLocal": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02T15:04")
		},
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	// If absolute URL or starts with http, return as-is
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	p := filepath.Join("static", rel)
	b, err := os.ReadFile(p)
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from manifest.json then falls back to query param versioning.
func resolveAsset(rel string) string {
	if devMode.Load() {
		parseManifest() // reload each request in dev
	} else {
		assetManifestOnce.Do(parseManifest)
	}
	if assetManifest != nil {
		if h, ok := assetManifest[rel]; ok {
			return "/static/" + h
		}
	}
	return versionedAsset(rel)
}

func parseManifest() {
	mf := filepath.Join("static", "manifest.json")
	b, err := os.ReadFile(mf)
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseMu.Lock()
	baseDir = filepath.Clean(path)
	baseMu.Unlock()
	ResetCache()
}

// ResetCache drops parsed templates.
func ResetCache() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

func partialFiles(root, layoutDir string) []string {
	var files []string
	seen := map[string]bool{}
	for _, dir := range []string{filepath.Join(root, "partials"), filepath.Join(layoutDir, "partials")} {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.html"))
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files
}

func parse(r *http.Request, layout, name string) (*template.Template, error) {
	root := templatesRoot()
	mainPath := filepath.Join(root, name)
	if _, err := os.Stat(mainPath); err != nil {
		return nil, err
	}
	funcMap := Funcs(r)
	contentBytes, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(bytes.ToLower(contentBytes), []byte("<!doctype")) {
		// Full document provided; skip layout wrapping.
		return template.New(filepath.Base(name)).Funcs(funcMap).ParseFiles(mainPath)
	}
	layoutDir := layoutBase(mainPath)
	if layout != "" {
		layoutDir = filepath.Join(root, layout)
	}
	layoutPath := filepath.Join(layoutDir, "layout.html")
	if fi, err := os.Stat(layoutPath); err != nil || fi.IsDir() {
		return template.New(filepath.Base(name)).Funcs(funcMap).ParseFiles(mainPath)
	}
	files := append([]string{layoutPath, mainPath}, partialFiles(root, layoutDir)...)
	return template.New("layout.html").Funcs(funcMap).ParseFiles(files...)
}

// Render parses and executes a template with shared funcs. name is relative
// to the templates root (e.g., "admin/dashboard.html"); the closest
// layout.html above it wraps the page.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderIn(w, r, "", name, data)
}

// RenderIn is Render with the layout taken from the layout directory
// (relative to the templates root) instead of the page's own directory.
func RenderIn(w http.ResponseWriter, r *http.Request, layout, name string, data map[string]any) error {
	// Ensure data map exists and inject common defaults to avoid template errors.
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["Path"]; !exists {
		data["Path"] = r.URL.Path
	}

	// Funcs close over the request language, so the cache is keyed by it.
	key := layout + "|" + name + "|" + langResolver(r) + "|" + themeResolver(r)
	dev := devMode.Load()
	var t *template.Template
	if !dev {
		tplCache.RLock()
		t = tplCache.m[key]
		tplCache.RUnlock()
	}
	if t == nil {
		var err error
		t, err = parse(r, layout, name)
		if err != nil {
			return err
		}
		if !dev {
			tplCache.Lock()
			tplCache.m[key] = t
			tplCache.Unlock()
		}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
