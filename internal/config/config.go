// Package config loads run configuration from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables
// 3. Project config (.review/config.yaml in cwd)
// 4. Home config (~/.review/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the orchestrator and driver read.
type Config struct {
	Model          string `yaml:"model" json:"model"`
	APIBaseURL     string `yaml:"api_base_url" json:"api_base_url"`
	APITimeout     int    `yaml:"api_timeout" json:"api_timeout"`
	CtxTurns       int    `yaml:"ctx_turns" json:"ctx_turns"`
	LogTailChars   int    `yaml:"log_tail_chars" json:"log_tail_chars"`
	MaxPromptBytes int    `yaml:"max_prompt_bytes" json:"max_prompt_bytes"`
	HeadTailBytes  int    `yaml:"head_tail_bytes" json:"head_tail_bytes"`
	MaxErrorRounds int    `yaml:"max_error_rounds" json:"max_error_rounds"`
	BranchPrefix   string `yaml:"branch_prefix" json:"branch_prefix"`
	Remote         string `yaml:"remote" json:"remote"`
	CreatePR       bool   `yaml:"create_pr" json:"create_pr"`

	// CreatePRSet distinguishes "not set" from "explicitly set to false",
	// the same way the teacher's SearchConfig tracks UseSmartConnectionsSet.
	CreatePRSet bool `yaml:"-" json:"-"`
}

// Default returns the baseline configuration, matching the original
// implementation's documented env-var defaults.
func Default() *Config {
	return &Config{
		Model:          "claude-3-5-sonnet-20241022",
		APIBaseURL:     "",
		APITimeout:     120,
		CtxTurns:       6,
		LogTailChars:   20000,
		MaxPromptBytes: 200000,
		HeadTailBytes:  60000,
		MaxErrorRounds: 6,
		BranchPrefix:   "iteration",
		Remote:         "origin",
		CreatePR:       false,
	}
}

// Load resolves configuration through the full precedence chain, applying
// flagOverrides (non-zero fields only) last.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if home, _ := loadFromPath(homeConfigPath()); home != nil {
		cfg = merge(cfg, home)
	}
	if project, _ := loadFromPath(projectConfigPath()); project != nil {
		cfg = merge(cfg, project)
	}
	cfg = applyEnv(cfg)
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}
	return cfg, nil
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".review", "config.yaml")
}

func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("REVIEW_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".review", "config.yaml")
}

func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := getEnvInt("API_TIMEOUT"); v != 0 {
		cfg.APITimeout = v
	}
	if v := getEnvInt("CTX_TURNS"); v != 0 {
		cfg.CtxTurns = v
	}
	if v := getEnvInt("LOG_TAIL_CHARS"); v != 0 {
		cfg.LogTailChars = v
	}
	if v := getEnvInt("MAX_PROMPT_BYTES"); v != 0 {
		cfg.MaxPromptBytes = v
	}
	if v := getEnvInt("HEAD_TAIL_BYTES"); v != 0 {
		cfg.HeadTailBytes = v
	}
	if v := getEnvInt("MAX_ERROR_ROUNDS"); v != 0 {
		cfg.MaxErrorRounds = v
	}
	if v := os.Getenv("BRANCH_PREFIX"); v != "" {
		cfg.BranchPrefix = v
	}
	if v := os.Getenv("REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CREATE_PR"))); v != "" {
		cfg.CreatePR = v == "1" || v == "true" || v == "yes" || v == "on"
		cfg.CreatePRSet = true
	}
	return cfg
}

func getEnvInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// merge overlays non-zero fields of src onto dst, src taking precedence.
func merge(dst, src *Config) *Config {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.APIBaseURL != "" {
		dst.APIBaseURL = src.APIBaseURL
	}
	if src.APITimeout != 0 {
		dst.APITimeout = src.APITimeout
	}
	if src.CtxTurns != 0 {
		dst.CtxTurns = src.CtxTurns
	}
	if src.LogTailChars != 0 {
		dst.LogTailChars = src.LogTailChars
	}
	if src.MaxPromptBytes != 0 {
		dst.MaxPromptBytes = src.MaxPromptBytes
	}
	if src.HeadTailBytes != 0 {
		dst.HeadTailBytes = src.HeadTailBytes
	}
	if src.MaxErrorRounds != 0 {
		dst.MaxErrorRounds = src.MaxErrorRounds
	}
	if src.BranchPrefix != "" {
		dst.BranchPrefix = src.BranchPrefix
	}
	if src.Remote != "" {
		dst.Remote = src.Remote
	}
	if src.CreatePRSet {
		dst.CreatePR = src.CreatePR
		dst.CreatePRSet = true
	}
	return dst
}
