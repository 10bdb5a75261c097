package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	SourcePath    string `mapstructure:"path"`
	Output        string `mapstructure:"output"`
	OutputDir     string `mapstructure:"output_dir"`
	Include       string `mapstructure:"include"`
	Exclude       string `mapstructure:"exclude"`
	Plaster       string `mapstructure:"plaster"`
	LineNumbers   bool   `mapstructure:"line_numbers"`
	Editor        string `mapstructure:"editor"`
	ColorName     string `mapstructure:"color_name"`
	ColorCode     string `mapstructure:"color_code"`
	ColorPath     string `mapstructure:"color_path"`
	ColorBorder   string `mapstructure:"color_border"`
	ColorCursor   string `mapstructure:"color_cursor"`
	ColorSelected string `mapstructure:"color_selected"`
	ColorDim      string `mapstructure:"color_dim"`
	ColumnGap     int    `mapstructure:"column_gap"`
	ColumnName    int    `mapstructure:"column_name"`
	ColumnPath    int    `mapstructure:"column_path"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("path", ".")
	viper.SetDefault("output", "print")
	viper.SetDefault("output_dir", "excerpts")
	viper.SetDefault("include", "**")
	viper.SetDefault("exclude", "")
	viper.SetDefault("plaster", "")
	viper.SetDefault("line_numbers", false)
	viper.SetDefault("editor", "")
	viper.SetDefault("color_name", "36") // Cyan
	viper.SetDefault("color_code", "32") // Green
	viper.SetDefault("color_path", "90") // Gray
	viper.SetDefault("color_border", "240")
	viper.SetDefault("color_cursor", "212")
	viper.SetDefault("color_selected", "236")
	viper.SetDefault("color_dim", "241")
	viper.SetDefault("column_gap", 4)   // Spaces between columns
	viper.SetDefault("column_name", 30) // Max excerpt name width
	viper.SetDefault("column_path", 40) // Max source path width

	viper.SetConfigName("excerpter")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "excerpter"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("EXCERPTER")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetPath returns the source path with tilde expansion
func GetPath() string {
	return expandTilde(viper.GetString("path"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetOutputDir returns the fragment output directory
func GetOutputDir() string {
	return expandTilde(viper.GetString("output_dir"))
}

// GetInclude returns the include glob patterns
func GetInclude() []string {
	return splitPatterns(viper.GetString("include"))
}

// GetExclude returns the exclude glob patterns
func GetExclude() []string {
	return splitPatterns(viper.GetString("exclude"))
}

// splitPatterns splits a comma-separated pattern list
func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetPlaster returns the elision marker inserted between ranges
func GetPlaster() string {
	return viper.GetString("plaster")
}

// GetLineNumbers returns whether rendered excerpts carry line numbers
func GetLineNumbers() bool {
	return viper.GetBool("line_numbers")
}

// GetEditor returns the configured editor command
func GetEditor() string {
	return viper.GetString("editor")
}

// GetColorName returns ANSI color code for excerpt names
func GetColorName() string {
	return viper.GetString("color_name")
}

// GetColorCode returns ANSI color code for excerpt content
func GetColorCode() string {
	return viper.GetString("color_code")
}

// GetColorPath returns ANSI color code for source paths
func GetColorPath() string {
	return viper.GetString("color_path")
}

// GetColorBorder returns the border color
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorCursor returns the cursor color
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the selection background color
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorDim returns the dim text color
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColumnGap returns spacing between columns
func GetColumnGap() int {
	return viper.GetInt("column_gap")
}

// GetColumnName returns max excerpt name column width
func GetColumnName() int {
	return viper.GetInt("column_name")
}

// GetColumnPath returns max source path column width
func GetColumnPath() int {
	return viper.GetInt("column_path")
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetPath sets the source path at runtime
func SetPath(path string) {
	viper.Set("path", path)
	C.SourcePath = path
}

// SetOutputDir sets the fragment output directory at runtime
func SetOutputDir(dir string) {
	viper.Set("output_dir", dir)
	C.OutputDir = dir
}
