// Package demosite renders static demo websites for leads that have none,
// used as the hook in outreach conversations.
package demosite

import (
	"context"
	"embed"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

//go:embed templates
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// templateKeywords maps category keywords onto template names. First match
// wins; anything unmatched falls back to the generic service template.
var templateKeywords = []struct {
	name     string
	keywords []string
}{
	{"restaurant", []string{"restaurant", "cafe", "coffee", "bakery", "bar", "food", "pizzeria", "tasca"}},
	{"tech_repair", []string{"repair", "phone", "computer", "tech", "electronics", "mobile"}},
}

const fallbackTemplate = "service"

// SelectTemplate picks a template name for a business category.
func SelectTemplate(category string) string {
	lower := strings.ToLower(category)
	for _, t := range templateKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.name
			}
		}
	}
	return fallbackTemplate
}

// Generator renders demo sites and records them against the lead.
type Generator struct {
	store     store.Store
	outputDir string
}

// NewGenerator creates a Generator writing under outputDir.
func NewGenerator(st store.Store, outputDir string) *Generator {
	return &Generator{store: st, outputDir: outputDir}
}

type pageData struct {
	Name        string
	Category    string
	Location    string
	Address     string
	Phone       string
	Rating      string
	ReviewCount int
	HasRating   bool
	Year        int
}

// Generate renders a demo site for the business and records it. The site
// lands in outputDir/<slug>/ as index.html plus a stylesheet.
func (g *Generator) Generate(ctx context.Context, businessID string) (*model.Demo, error) {
	b, err := g.store.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	tmplName := SelectTemplate(b.Category)
	siteDir := filepath.Join(g.outputDir, Slug(b.Name))
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "demosite: create %s", siteDir)
	}

	data := pageData{
		Name:        b.Name,
		Category:    b.Category,
		Location:    b.Location,
		Address:     b.Address,
		Phone:       b.Phone,
		ReviewCount: b.ReviewCountValue(),
		HasRating:   b.HasRating(),
		Year:        time.Now().Year(),
	}
	if b.HasRating() {
		data.Rating = strconv.FormatFloat(b.RatingValue(), 'f', 1, 64)
	}

	indexPath := filepath.Join(siteDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return nil, eris.Wrapf(err, "demosite: create %s", indexPath)
	}
	defer f.Close() //nolint:errcheck

	if err := templates.ExecuteTemplate(f, tmplName+".html.tmpl", data); err != nil {
		return nil, eris.Wrapf(err, "demosite: render %s", tmplName)
	}

	styles, err := templateFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, eris.Wrap(err, "demosite: read stylesheet")
	}
	if err := os.WriteFile(filepath.Join(siteDir, "styles.css"), styles, 0o644); err != nil {
		return nil, eris.Wrap(err, "demosite: write stylesheet")
	}

	demo := &model.Demo{
		BusinessID: b.ID,
		Template:   tmplName,
		LocalPath:  indexPath,
	}
	if err := g.store.RecordDemo(ctx, demo); err != nil {
		return nil, err
	}

	zap.L().Info("demo site generated",
		zap.String("business_id", b.ID),
		zap.String("template", tmplName),
		zap.String("path", indexPath),
	)
	return demo, nil
}

// Slug converts a business name into a filesystem-safe directory name.
func Slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
