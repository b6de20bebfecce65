package model

// Variant selects one of the two pipeline flavours.
type Variant string

const (
	// VariantTemplated renders template pages and writes one stylesheet per source.
	VariantTemplated Variant = "templated"
	// VariantBundled skips templating and concatenates all stylesheets into one file.
	VariantBundled Variant = "bundled"
)

// Project is the path mapping and per-task settings of a front-end project.
// Relative paths resolve against Root.
type Project struct {
	Variant Variant `yaml:"variant"`
	App     string  `yaml:"app"`
	Dist    string  `yaml:"dist"`

	Templates Templates    `yaml:"templates"`
	Styles    Styles       `yaml:"styles"`
	Scripts   Scripts      `yaml:"scripts"`
	Images    Images       `yaml:"images"`
	Copy      Copy         `yaml:"copy"`
	Server    Server       `yaml:"server"`
	Watch     []*WatchRule `yaml:"watch"`

	Definitions map[string]any `yaml:"definitions"`

	// runtime helpers
	Root string `yaml:"-"`
}

type Templates struct {
	Enabled    bool     `yaml:"enabled"`
	Pages      string   `yaml:"pages"`
	Dest       string   `yaml:"dest"`
	SearchPath []string `yaml:"search-path"`
}

type Styles struct {
	Sources      string   `yaml:"src"`
	Dest         string   `yaml:"dest"`
	OutputStyle  string   `yaml:"output-style"`
	Suffix       string   `yaml:"suffix"`
	Concat       string   `yaml:"concat"` // single output file name, empty for one file per source
	Browsers     []string `yaml:"browsers"`
	IncludePaths []string `yaml:"include-paths"`
}

type Scripts struct {
	Vendor []string `yaml:"vendor"`
	Entry  string   `yaml:"entry"`
	Output string   `yaml:"output"`
	Dest   string   `yaml:"dest"`
}

type Images struct {
	Sources      string `yaml:"src"`
	Dest         string `yaml:"dest"`
	JPEGQuality  int    `yaml:"jpeg-quality"`
	SVGPrecision int    `yaml:"svg-precision"`
}

// Copy lists what the copy task transfers from Base into the output directory.
type Copy struct {
	Sources []string `yaml:"src"`
	Base    string   `yaml:"base"`
}

type Server struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseDir string `yaml:"base-dir"`
}

// WatchRule maps changes on Paths to a task, or to a plain reload when Reload is set.
// Paths starting with "!" exclude.
type WatchRule struct {
	Paths  []string `yaml:"paths"`
	Task   string   `yaml:"task"`
	Reload bool     `yaml:"reload"`
}
