package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/segue/internal/config"
	segueerrors "github.com/tessro/segue/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing segue configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and SEGUE_* overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Annotations: map[string]string{annotationConfig: configUnchecked},
	RunE:        runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize configuration",
	Long:        `Create a new configuration file with default values.`,
	Annotations: map[string]string{annotationConfig: configUnchecked},
	RunE:        runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:         "validate",
	Short:       "Check the configuration file for errors",
	Annotations: map[string]string{annotationConfig: configUnchecked},
	RunE:        runConfigValidate,
}

var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit configuration file",
	Long:        `Open the configuration file in your default editor.`,
	Annotations: map[string]string{annotationConfig: configUnchecked},
	RunE:        runConfigEdit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. The result is validated before it is written.

Examples:
  segue config set api.base_url http://music.local:8000/api/v1/
  segue config set recommend.similarity 0.8
  segue config set player.video true`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationConfig: configUnchecked},
	RunE:        runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

// getConfigPath returns the file the config commands operate on: --config,
// else the first existing file, else where init would create one.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := config.FindConfigFile(); path != "" {
		return path
	}
	return config.DefaultPath()
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil

	if JSONOutput() {
		return printJSON(map[string]any{"path": path, "exists": exists})
	}

	fmt.Println(path)
	if !exists && Verbose() {
		fmt.Fprintln(os.Stderr, "(file does not exist; run 'segue config init')")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point api.base_url at your catalog server, or set SEGUE_API_BASE_URL")
	fmt.Println("  2. Make sure mpv is installed, then run 'segue ui'")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := getConfigPath()

	loaded, err := config.LoadFrom(path)
	if err != nil {
		return segueerrors.WithSuggestion(err, "Run 'segue config init' to create a config file")
	}

	verr := loaded.Validate()
	if JSONOutput() {
		out := map[string]any{"path": path, "valid": verr == nil}
		if verr != nil {
			out["errors"] = strings.Split(verr.Error(), "\n")
		}
		if err := printJSON(out); err != nil {
			return err
		}
		if verr != nil {
			return segueerrors.ErrInvalidConfig
		}
		return nil
	}

	if verr != nil {
		return fmt.Errorf("%w: %s:\n%w", segueerrors.ErrInvalidConfig, path, verr)
	}
	fmt.Printf("%s is valid\n", path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'segue config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

// configKeyKinds lists the settable keys with a non-string type.
var configKeyKinds = map[string]string{
	"api.timeout":               "int",
	"api.max_retries":           "int",
	"api.rate_limit":            "float",
	"player.start_timeout":      "int",
	"player.video":              "bool",
	"recommend.limit":           "int",
	"recommend.same_genre":      "bool",
	"recommend.same_decade":     "bool",
	"recommend.similarity":      "float",
	"tail.emoji":                "bool",
	"tail.timestamps":           "bool",
	"tui.refresh_interval":      "int",
	"recommend.exclude_artists": "list",
	"player.extra_args":         "list",
}

func parseConfigValue(key, value string) (any, error) {
	switch configKeyKinds[key] {
	case "int":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	case "list":
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'segue config init' first", configPath)
	}

	var rawConfig map[string]any
	if _, err := toml.DecodeFile(configPath, &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	section, field, ok := strings.Cut(key, ".")
	if !ok || field == "" || strings.Contains(field, ".") {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., api.base_url)")
	}

	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	sectionMap[field] = typedValue

	// Round-trip through the schema so unknown keys and bad values are caught
	// before the file is touched.
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(rawConfig); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var updated config.Config
	md, err := toml.Decode(buf.String(), &updated)
	if err != nil {
		return fmt.Errorf("%w: %w", segueerrors.ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown key %s", segueerrors.ErrInvalidConfig, undecoded[0])
	}
	updated.ApplyDefaults()
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("%w: %w", segueerrors.ErrInvalidConfig, err)
	}

	if err := writeConfigFile(configPath, rawConfig); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func writeConfigFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Segue Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
