package model

import (
	"fmt"
	"strings"
)

// DefaultBrowsers approximates "last 9 versions" as esbuild engine targets.
var DefaultBrowsers = []string{
	"chrome49", "edge14", "firefox52", "ios9", "opera36", "safari9",
}

// ParseVariant accepts the variant names and their single-letter aliases.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a", string(VariantTemplated):
		return VariantTemplated, nil
	case "b", string(VariantBundled):
		return VariantBundled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Preset returns the default project layout for v:
//
//	app/            source tree, served by the dev server
//	app/scss/       stylesheet sources
//	app/css/        compiled stylesheets
//	app/js/main.js  script entry, bundled into app/js/main.min.js
//	app/images/     images, optimized into dist/images/
//	app/fonts/      fonts
//	dist/           build output
func Preset(v Variant) (*Project, error) {
	v, err := ParseVariant(string(v))
	if err != nil {
		return nil, err
	}

	prj := &Project{
		Variant: v,
		App:     "app",
		Dist:    "dist",
		Templates: Templates{
			Pages:      "app/*.njk",
			Dest:       "app",
			SearchPath: []string{"app"},
		},
		Styles: Styles{
			Sources:     "app/scss/*.scss",
			Dest:        "app/css",
			OutputStyle: "compressed",
			Browsers:    append([]string(nil), DefaultBrowsers...),
		},
		Scripts: Scripts{
			Vendor: []string{"node_modules/jquery/dist/jquery.js"},
			Entry:  "app/js/main.js",
			Output: "main.min.js",
			Dest:   "app/js",
		},
		Images: Images{
			Sources:     "app/images/**/*.*",
			Dest:        "dist/images",
			JPEGQuality: 75,
		},
		Copy: Copy{
			Sources: []string{
				"app/*.html",
				"app/css/*.css",
				"app/js/main.min.js",
				"app/fonts/*.*",
			},
			Base: "app",
		},
		Server: Server{
			Host:    "localhost",
			Port:    3000,
			BaseDir: "app",
		},
		Definitions: map[string]any{},
	}

	switch v {
	case VariantTemplated:
		prj.Templates.Enabled = true
		prj.Styles.Suffix = ".min"
		prj.Watch = []*WatchRule{
			{Paths: []string{"app/*.html"}, Reload: true},
			{Paths: []string{"app/*.njk"}, Task: "templates"},
			{Paths: []string{"app/modules/**/*.html"}, Task: "templates"},
			{Paths: []string{"app/modules/**/*.scss"}, Task: "styles"},
			{Paths: []string{"app/scss/**/*.scss"}, Task: "styles"},
			{Paths: []string{"app/js/**/*.js", "!app/js/main.min.js"}, Task: "scripts"},
		}
	case VariantBundled:
		prj.Styles.Concat = "style.min.css"
		prj.Watch = []*WatchRule{
			{Paths: []string{"app/*.html"}, Reload: true},
			{Paths: []string{"app/scss/**/*.scss"}, Task: "styles"},
			{Paths: []string{"app/js/**/*.js", "!app/js/main.min.js"}, Task: "scripts"},
		}
	}
	return prj, nil
}
