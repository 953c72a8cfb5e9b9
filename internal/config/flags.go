package config

import "github.com/spf13/pflag"

// Flags are the command-line overrides of a Config. Only flags that were
// set on the command line override the file.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath  string
	Debug       bool
	LogFile     string
	Workers     int
	SlotLimit   int
	Charset     string
	HiddenTypes []string
	ShowHidden  bool
	Width       int
	Height      int
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
	fs.IntVarP(&f.Workers, "workers", "j", 1, "Mesh preparation workers")
	fs.IntVar(&f.SlotLimit, "slot-limit", 24, "Material editor slots to fill")
	fs.StringVar(&f.Charset, "charset", "", "Encoding of the element stream (IANA name)")
	fs.StringSliceVar(&f.HiddenTypes, "hidden-types", nil, "Element types imported hidden")
	fs.BoolVar(&f.ShowHidden, "show-hidden", false, "Show hidden nodes in the viewer")
	fs.IntVar(&f.Width, "width", 0, "Viewer window width")
	fs.IntVar(&f.Height, "height", 0, "Viewer window height")
}

func (f *Flags) changed(name string) bool {
	if f.fs == nil {
		return false
	}
	fl := f.fs.Lookup(name)
	return fl != nil && fl.Changed
}

// applyFlags applies CLI flag overrides to the config.
func (f *Flags) applyFlags(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.changed("workers") {
		cfg.Import.Workers = f.Workers
	}
	if f.changed("slot-limit") {
		cfg.Import.SlotLimit = f.SlotLimit
	}
	if f.changed("charset") {
		cfg.Import.Charset = f.Charset
	}
	if f.changed("hidden-types") {
		cfg.Import.HiddenTypes = f.HiddenTypes
	}
	if f.ShowHidden {
		cfg.Viewer.ShowHidden = true
	}
	if f.Width > 0 {
		cfg.Viewer.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewer.Height = f.Height
	}
}
