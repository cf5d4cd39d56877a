package webview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/sharext-labs/sharext/internal/viewer"
)

//go:embed assets/page.html.tmpl assets/closed.html
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/page.html.tmpl"))

// closedPage is served when no panel is open.
var closedPage = mustReadAsset("assets/closed.html")

func mustReadAsset(name string) []byte {
	data, err := assets.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("webview: missing embedded asset %s: %v", name, err))
	}
	return data
}

type row struct {
	ID          string
	Name        string
	Author      string
	Description string
	IconSource  template.URL
	Installed   bool
	Downloads   int64
}

type pageData struct {
	Title    string
	Source   string
	Problems []string
	Rows     []row
}

// renderPage executes the list template for page.
func renderPage(page viewer.Page) ([]byte, error) {
	data := pageData{
		Title:    page.Title,
		Source:   page.Source,
		Problems: page.Problems,
		Rows:     make([]row, 0, len(page.Records)),
	}
	for _, r := range page.Records {
		installed, _ := r.IsInstalled()
		data.Rows = append(data.Rows, row{
			ID:          r.ID,
			Name:        r.Name,
			Author:      r.Author,
			Description: r.Description,
			IconSource:  iconURL(r.IconSource),
			Installed:   installed,
			Downloads:   r.Downloads,
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return buf.Bytes(), nil
}

// iconURL passes through http(s) icon sources and drops anything else.
func iconURL(src string) template.URL {
	if strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://") {
		return template.URL(src)
	}
	return ""
}
