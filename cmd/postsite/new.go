package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/eringen/postsite/scaffold"
)

func runNew(dir string) error {
	name := filepath.Base(filepath.Clean(dir))
	data := scaffold.Data{
		ProjectName: name,
		SiteName:    toTitle(name),
	}

	fmt.Printf("Creating new site: %s\n\n", dir)
	created, err := scaffold.Create(dir, data, time.Now())
	for _, f := range created {
		fmt.Printf("  created %s\n", filepath.Join(dir, filepath.FromSlash(f)))
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Done! Next steps:")
	fmt.Println()
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  postsite serve")
	fmt.Println()
	fmt.Println("Edit _config.yml to set the site title and url, then run 'postsite build'.")
	fmt.Println("Set ADMIN_PASSWORD and SESSION_SECRET to enable the admin area.")
	return nil
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
