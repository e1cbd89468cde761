package config

import (
	"flag"
	"time"
)

// Flags holds the command line. Only flags that were set override the loaded config.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath string
	Format     string
	Out        string
	Debug      bool
	Version    bool
	NoBanner   bool
	Examples   bool
	ListRuns   int

	terms        string
	headHunter   bool
	hhArea       int
	superJob     bool
	sjTown       int
	areaLabel    string
	pageCap      int
	pageDelay    time.Duration
	workers      int
	timeout      time.Duration
	proxy        string
	cacheBackend string
	historyPath  string
	metricsFile  string
	locale       string
}

func NewFlags(name string) *Flags {
	f := &Flags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	d := Default()

	f.fs.StringVar(&f.ConfigPath, "config", "", "Path to the YAML config file (default "+DefaultPath+" if present)")
	f.fs.StringVar(&f.Format, "format", "table", "Output format: table, json or html")
	f.fs.StringVar(&f.Out, "out", "", "Write the report to this file instead of stdout")
	f.fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	f.fs.BoolVar(&f.Version, "version", false, "Print the version and exit")
	f.fs.BoolVar(&f.NoBanner, "no-banner", false, "Do not print the banner")
	f.fs.BoolVar(&f.Examples, "examples", false, "Show usage examples")
	f.fs.IntVar(&f.ListRuns, "list-runs", 0, "Print the last N stored runs per source and exit")

	f.fs.StringVar(&f.terms, "terms", "", "Comma separated search terms")
	f.fs.BoolVar(&f.headHunter, "hh", d.HeadHunter.Enabled, "Query HeadHunter")
	f.fs.IntVar(&f.hhArea, "hh-area", d.HeadHunter.Area, "HeadHunter area id")
	f.fs.BoolVar(&f.superJob, "sj", d.SuperJob.Enabled, "Query SuperJob")
	f.fs.IntVar(&f.sjTown, "sj-town", d.SuperJob.Town, "SuperJob town id")
	f.fs.StringVar(&f.areaLabel, "area-label", d.AreaLabel, "Region name shown in table titles")
	f.fs.IntVar(&f.pageCap, "pages", d.PageCap, "Maximum pages fetched per term")
	f.fs.DurationVar(&f.pageDelay, "delay", d.PageDelay, "Pause between page requests (minimum 500ms)")
	f.fs.IntVar(&f.workers, "workers", d.Workers, "Number of terms fetched concurrently per source")
	f.fs.DurationVar(&f.timeout, "timeout", d.RequestTimeout, "Per-request timeout")
	f.fs.StringVar(&f.proxy, "proxy", "", "Proxy URL for outgoing requests")
	f.fs.StringVar(&f.cacheBackend, "cache", d.Cache.Backend, "Page cache backend: none, memory or redis")
	f.fs.StringVar(&f.historyPath, "history", "", "Path to the sqlite history database")
	f.fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	f.fs.StringVar(&f.locale, "locale", d.Locale, "Salary digit grouping: en or ru")

	return f
}

func (f *Flags) Parse(args []string) error {
	return f.fs.Parse(args)
}

// FlagSet exposes the underlying set, mostly for usage output
func (f *Flags) FlagSet() *flag.FlagSet {
	return f.fs
}

// Apply copies every explicitly set flag into cfg
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "terms":
			cfg.Terms = SplitTerms(f.terms)
		case "hh":
			cfg.HeadHunter.Enabled = f.headHunter
		case "hh-area":
			cfg.HeadHunter.Area = f.hhArea
		case "sj":
			cfg.SuperJob.Enabled = f.superJob
		case "sj-town":
			cfg.SuperJob.Town = f.sjTown
		case "area-label":
			cfg.AreaLabel = f.areaLabel
		case "pages":
			cfg.PageCap = f.pageCap
		case "delay":
			cfg.PageDelay = f.pageDelay
		case "workers":
			cfg.Workers = f.workers
		case "timeout":
			cfg.RequestTimeout = f.timeout
		case "proxy":
			cfg.Proxy = f.proxy
		case "cache":
			cfg.Cache.Backend = f.cacheBackend
		case "history":
			cfg.HistoryPath = f.historyPath
		case "metrics-file":
			cfg.MetricsTextfile = f.metricsFile
		case "locale":
			cfg.Locale = f.locale
		}
	})
}
