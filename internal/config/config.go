package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up by DetectPath.
const FileName = "lambdaconstruct.json"

// Config holds the material generation settings and the settings of the
// external tools. It is read once per run and not modified afterwards.
type Config struct {
	// Paths
	MaterialsRoot string   `json:"materials_root,omitempty" yaml:"materials_root,omitempty" toml:"materials_root,omitempty"`
	Inputs        []string `json:"inputs,omitempty" yaml:"inputs,omitempty" toml:"inputs,omitempty"`

	// Templates
	TemplatePath            string            `json:"template_path" yaml:"template_path" toml:"template_path"`
	MaterialSuffixTemplates map[string]string `json:"material_suffix_templates,omitempty" yaml:"material_suffix_templates,omitempty" toml:"material_suffix_templates,omitempty"`
	OutputExtension         string            `json:"output_extension,omitempty" yaml:"output_extension,omitempty" toml:"output_extension,omitempty"`

	// Matching
	SuffixMappings    map[string][]string `json:"suffix_mappings" yaml:"suffix_mappings" toml:"suffix_mappings"`
	FuzzyCutoff       float64             `json:"fuzzy_cutoff,omitempty" yaml:"fuzzy_cutoff,omitempty" toml:"fuzzy_cutoff,omitempty"`
	Similarity        string              `json:"similarity,omitempty" yaml:"similarity,omitempty" toml:"similarity,omitempty"`
	TextureExtensions []string            `json:"texture_extensions,omitempty" yaml:"texture_extensions,omitempty" toml:"texture_extensions,omitempty"`
	ModelExtensions   []string            `json:"model_extensions,omitempty" yaml:"model_extensions,omitempty" toml:"model_extensions,omitempty"`

	// Run settings
	Workers  int    `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`

	Converter Converter `json:"converter" yaml:"converter" toml:"converter"`
	Compiler  Compiler  `json:"compiler" yaml:"compiler" toml:"compiler"`

	dir string // directory of the loaded file
}

// ConvertRule holds the VTFCmd format flags for one texture suffix.
type ConvertRule struct {
	Format      string   `json:"format" yaml:"format" toml:"format"`
	AlphaFormat string   `json:"alphaformat,omitempty" yaml:"alphaformat,omitempty" toml:"alphaformat,omitempty"`
	ExtraFlags  []string `json:"extra_flags,omitempty" yaml:"extra_flags,omitempty" toml:"extra_flags,omitempty"`
}

// Converter configures the external texture converter.
type Converter struct {
	VTFCmdPath string                 `json:"vtfcmd_path,omitempty" yaml:"vtfcmd_path,omitempty" toml:"vtfcmd_path,omitempty"`
	Rules      map[string]ConvertRule `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"` // suffix -> rule; "default" is the fallback
	Extensions []string               `json:"extensions,omitempty" yaml:"extensions,omitempty" toml:"extensions,omitempty"`
}

// Compiler configures the external model compiler.
type Compiler struct {
	StudiomdlPath string `json:"studiomdl_path,omitempty" yaml:"studiomdl_path,omitempty" toml:"studiomdl_path,omitempty"`
	GameDir       string `json:"game_dir,omitempty" yaml:"game_dir,omitempty" toml:"game_dir,omitempty"`
	Quiet         bool   `json:"quiet,omitempty" yaml:"quiet,omitempty" toml:"quiet,omitempty"`    // omit -verbose
	UseP4         bool   `json:"use_p4,omitempty" yaml:"use_p4,omitempty" toml:"use_p4,omitempty"` // omit -nop4
	LogDir        string `json:"log_dir,omitempty" yaml:"log_dir,omitempty" toml:"log_dir,omitempty"`
	ExtraArgs     string `json:"extra_args,omitempty" yaml:"extra_args,omitempty" toml:"extra_args,omitempty"` // shell-quoted
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TemplatePath: filepath.Join("templates", "default.vmt"),
		SuffixMappings: map[string][]string{
			"basetexture":          {"_color", "_albedo", "_basecolor", "_diffuse"},
			"bumpmap":              {"_normal"},
			"phongexponenttexture": {"_exponent"},
			"envmapmask":           {"_mask"},
			"selfillummask":        {"_emissive"},
		},
		FuzzyCutoff:       0.6,
		Similarity:        "ratio",
		OutputExtension:   ".vmt",
		TextureExtensions: []string{".vtf"},
		ModelExtensions:   []string{".qc"},
		LogLevel:          "info",
		Converter: Converter{
			VTFCmdPath: "VTFCmd",
			Rules:      DefaultConvertRules(),
			Extensions: []string{".tga", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".dds"},
		},
		Compiler: Compiler{
			LogDir: "logs",
		},
	}
}

// DefaultConvertRules returns the stock VTFCmd rules.
func DefaultConvertRules() map[string]ConvertRule {
	return map[string]ConvertRule{
		"_normal": {Format: "RGBA8888", AlphaFormat: "RGBA8888", ExtraFlags: []string{"-nomipmaps"}},
		"_alpha":  {Format: "DXT5", AlphaFormat: "DXT5", ExtraFlags: []string{"-nomipmaps"}},
		"_color":  {Format: "DXT1", ExtraFlags: []string{"-nomipmaps"}},
		"default": {Format: "DXT1", ExtraFlags: []string{"-nomipmaps"}},
	}
}

// Load reads a config file. The format follows the extension: .yaml/.yml,
// .toml, anything else is JSON. Fields not set in the file keep their zero
// values until Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		cfg.dir = filepath.Dir(abs)
	}
	return cfg, nil
}

// Save writes the config in the format implied by the path's extension.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "    ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Dir returns the directory of the file the config was loaded from, or "".
func (c *Config) Dir() string {
	return c.dir
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	MaterialsRoot string
	Inputs        []string
	Workers       int
	Cutoff        float64
	Similarity    string
	LogLevel      string
	VTFCmdPath    string
	StudiomdlPath string
	GameDir       string
}

// Resolve applies flag overrides, expands "~" in paths, makes template paths
// relative to the config file's directory absolute, and fills defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.MaterialsRoot != "" {
		c.MaterialsRoot = flags.MaterialsRoot
	}
	if len(flags.Inputs) > 0 {
		c.Inputs = append(append([]string(nil), c.Inputs...), flags.Inputs...)
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Cutoff > 0 {
		c.FuzzyCutoff = flags.Cutoff
	}
	if flags.Similarity != "" {
		c.Similarity = flags.Similarity
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.VTFCmdPath != "" {
		c.Converter.VTFCmdPath = flags.VTFCmdPath
	}
	if flags.StudiomdlPath != "" {
		c.Compiler.StudiomdlPath = flags.StudiomdlPath
	}
	if flags.GameDir != "" {
		c.Compiler.GameDir = flags.GameDir
	}

	def := Default()

	// Defaults for anything left empty
	if c.TemplatePath == "" {
		c.TemplatePath = def.TemplatePath
	}
	if c.SuffixMappings == nil {
		c.SuffixMappings = def.SuffixMappings
	}
	if c.FuzzyCutoff <= 0 {
		c.FuzzyCutoff = def.FuzzyCutoff
	}
	if c.Similarity == "" {
		c.Similarity = def.Similarity
	}
	if c.OutputExtension == "" {
		c.OutputExtension = def.OutputExtension
	}
	if len(c.TextureExtensions) == 0 {
		c.TextureExtensions = def.TextureExtensions
	}
	if len(c.ModelExtensions) == 0 {
		c.ModelExtensions = def.ModelExtensions
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Converter.VTFCmdPath == "" {
		c.Converter.VTFCmdPath = def.Converter.VTFCmdPath
	}
	if c.Converter.Rules == nil {
		c.Converter.Rules = def.Converter.Rules
	}
	if len(c.Converter.Extensions) == 0 {
		c.Converter.Extensions = def.Converter.Extensions
	}
	if c.Compiler.LogDir == "" {
		c.Compiler.LogDir = def.Compiler.LogDir
	}

	// Expand home directories
	c.MaterialsRoot = expand(c.MaterialsRoot)
	for i, in := range c.Inputs {
		c.Inputs[i] = expand(in)
	}
	c.Converter.VTFCmdPath = expand(c.Converter.VTFCmdPath)
	c.Compiler.StudiomdlPath = expand(c.Compiler.StudiomdlPath)
	c.Compiler.GameDir = expand(c.Compiler.GameDir)
	c.Compiler.LogDir = expand(c.Compiler.LogDir)

	// Templates live next to the config file unless given absolutely
	c.TemplatePath = c.relative(expand(c.TemplatePath))
	if len(c.MaterialSuffixTemplates) > 0 {
		table := make(map[string]string, len(c.MaterialSuffixTemplates))
		for suffix, p := range c.MaterialSuffixTemplates {
			table[suffix] = c.relative(expand(p))
		}
		c.MaterialSuffixTemplates = table
	}
}

func (c *Config) relative(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func expand(p string) string {
	if p == "" {
		return p
	}
	out, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return out
}

// DetectPath looks for FileName next to the executable, then in the current
// working directory (and a config/ subdirectory of each). It returns "" if
// no file is found.
func DetectPath() string {
	var bases []string
	if exe, _ := os.Executable(); exe != "" {
		bases = append(bases, filepath.Dir(exe))
	}
	if cwd, _ := os.Getwd(); cwd != "" {
		bases = append(bases, cwd)
	}

	for _, base := range bases {
		for _, dir := range []string{base, filepath.Join(base, "config")} {
			p := filepath.Join(dir, FileName)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}
