// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/expert-survey/models"
)

// Sheet backends
const (
	BackendSheets = "sheets"
	BackendXLSX   = "xlsx"
	BackendMemory = "memory"
)

// Session database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

const defaultOrigin = "http://localhost:5173"

type Config struct {
	Port int

	Backend         string
	SheetID         string
	SheetTab        string
	SubmissionsTab  string
	XLSXPath        string
	MemorySeedCSV   string
	CredentialsJSON string
	CredentialsFile string

	ClaimMode          string
	Policy             string
	ClaimTTL           time.Duration
	ClaimSweepInterval time.Duration

	SessionSecret      string
	SessionDatabaseURL string
	DatabaseType       string

	AllowedOrigins []string
	CookieSameSite http.SameSite
	CookieSecure   bool

	ConfigFile string
}

// FileConfig is the optional YAML config file. Its values sit beneath
// environment variables and flags.
type FileConfig struct {
	Port               int      `yaml:"port"`
	Backend            string   `yaml:"sheet_backend"`
	SheetID            string   `yaml:"sheet_id"`
	SheetTab           string   `yaml:"sheet_tab"`
	SubmissionsTab     string   `yaml:"submissions_tab"`
	XLSXPath           string   `yaml:"xlsx_path"`
	MemorySeedCSV      string   `yaml:"memory_seed_csv"`
	CredentialsFile    string   `yaml:"gcp_service_account_file"`
	ClaimMode          string   `yaml:"claim_mode"`
	Policy             string   `yaml:"submission_policy"`
	ClaimTTLMinutes    int      `yaml:"claim_ttl_minutes"`
	ClaimSweepInterval string   `yaml:"claim_sweep_interval"`
	SessionDatabaseURL string   `yaml:"session_database_url"`
	DatabaseType       string   `yaml:"database_type"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	CookieSameSite     string   `yaml:"cookie_samesite"`
	CookieSecure       *bool    `yaml:"cookie_secure"`
}

// LoadFile reads a YAML config file
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

// ParseFlags builds the configuration from flags, environment variables
// (including a .env file), an optional YAML file and defaults, in that order
// of precedence.
func ParseFlags(args []string) (Config, error) {
	// Existing environment wins over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var (
		port, ttl                           int
		backend, sheetID, sheetTab, subsTab string
		xlsxPath, seedCSV, credsFile        string
		claimMode, policy, sweep            string
		secret, dbURL, dbType               string
		origins, sameSite, configFile       string
		secure                              bool
	)

	fs := flag.NewFlagSet("expert-survey", flag.ContinueOnError)

	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&configFile, "c", "", "YAML config file")

	// Spreadsheet
	fs.StringVar(&backend, "backend", "", "Sheet backend (sheets, xlsx or memory)")
	fs.StringVar(&sheetID, "sheet-id", "", "Google spreadsheet id")
	fs.StringVar(&sheetTab, "sheet-tab", "", "Patients worksheet")
	fs.StringVar(&subsTab, "submissions-tab", "", "Submissions worksheet")
	fs.StringVar(&xlsxPath, "xlsx", "", "Workbook path for the xlsx backend")
	fs.StringVar(&seedCSV, "seed-csv", "", "CSV loaded into the memory backend")
	fs.StringVar(&credsFile, "credentials", "", "Service account key file")

	// Claims and submissions
	fs.StringVar(&claimMode, "claim-mode", "", "Claim mode (lock or open)")
	fs.StringVar(&policy, "policy", "", "Submission policy (ledger or row)")
	fs.IntVar(&ttl, "claim-ttl", 0, "Claim TTL in minutes")
	fs.StringVar(&sweep, "sweep-interval", "", "Stale claim sweep interval, 0 disables")

	// Sessions (prefer env for the secret, but allow CLI for dev)
	fs.StringVar(&secret, "session-secret", "", "Session cookie secret (prefer env)")
	fs.StringVar(&dbURL, "d", "", "Session database URL")
	fs.StringVar(&dbType, "t", "", "Session database type (sqlite, postgres or memory)")

	// Browser
	fs.StringVar(&origins, "origins", "", "Comma separated allowed CORS origins")
	fs.StringVar(&sameSite, "samesite", "", "Session cookie SameSite (Lax, Strict or None)")
	fs.BoolVar(&secure, "secure-cookie", false, "Mark the session cookie Secure")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := Config{ConfigFile: first(configFile, os.Getenv("CONFIG_FILE"))}
	var file FileConfig
	if cfg.ConfigFile != "" {
		var err error
		if file, err = LoadFile(cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	// Network
	portStr := first(flagInt(set["p"], port), os.Getenv("PORT"), fileInt(file.Port), "5001")
	p, err := strconv.Atoi(portStr)
	if err != nil {
		return Config{}, errors.New("invalid PORT env variable")
	}
	cfg.Port = p

	// Spreadsheet
	cfg.Backend = first(backend, os.Getenv("SHEET_BACKEND"), file.Backend, BackendSheets)
	cfg.SheetID = first(sheetID, os.Getenv("SHEET_ID"), file.SheetID)
	cfg.SheetTab = first(sheetTab, os.Getenv("SHEET_TAB"), file.SheetTab, "Sheet1")
	cfg.SubmissionsTab = first(subsTab, os.Getenv("SUBMISSIONS_TAB"), file.SubmissionsTab, "submissions")
	cfg.XLSXPath = first(xlsxPath, os.Getenv("XLSX_PATH"), file.XLSXPath)
	cfg.MemorySeedCSV = first(seedCSV, os.Getenv("MEMORY_SEED_CSV"), file.MemorySeedCSV)
	cfg.CredentialsJSON = os.Getenv("GCP_SERVICE_ACCOUNT_JSON")
	cfg.CredentialsFile = first(credsFile, os.Getenv("GCP_SERVICE_ACCOUNT_FILE"), file.CredentialsFile, "service_account.json")

	switch cfg.Backend {
	case BackendSheets:
		if cfg.SheetID == "" {
			return Config{}, errors.New("SHEET_ID required for the sheets backend")
		}
	case BackendXLSX:
		if cfg.XLSXPath == "" {
			return Config{}, errors.New("XLSX_PATH required for the xlsx backend")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown SHEET_BACKEND %q", cfg.Backend)
	}

	// Claims and submissions
	cfg.ClaimMode = strings.ToLower(first(claimMode, os.Getenv("CLAIM_MODE"), file.ClaimMode, models.ClaimModeOpen))
	if cfg.ClaimMode != models.ClaimModeLock && cfg.ClaimMode != models.ClaimModeOpen {
		return Config{}, fmt.Errorf("unknown CLAIM_MODE %q", cfg.ClaimMode)
	}
	cfg.Policy = strings.ToLower(first(policy, os.Getenv("SUBMISSION_POLICY"), file.Policy, models.PolicyLedger))
	if cfg.Policy != models.PolicyLedger && cfg.Policy != models.PolicyRow {
		return Config{}, fmt.Errorf("unknown SUBMISSION_POLICY %q", cfg.Policy)
	}

	ttlStr := first(flagInt(set["claim-ttl"], ttl), os.Getenv("CLAIM_TTL_MINUTES"), fileInt(file.ClaimTTLMinutes), "30")
	minutes, err := strconv.Atoi(ttlStr)
	if err != nil || minutes <= 0 {
		return Config{}, errors.New("CLAIM_TTL_MINUTES must be a positive integer")
	}
	cfg.ClaimTTL = time.Duration(minutes) * time.Minute

	sweepStr := first(sweep, os.Getenv("CLAIM_SWEEP_INTERVAL"), file.ClaimSweepInterval, "0")
	cfg.ClaimSweepInterval, err = time.ParseDuration(sweepStr)
	if err != nil || cfg.ClaimSweepInterval < 0 {
		return Config{}, fmt.Errorf("invalid CLAIM_SWEEP_INTERVAL %q", sweepStr)
	}

	// Sessions - secret MUST be provided
	cfg.SessionSecret = first(secret, os.Getenv("SESSION_SECRET"))
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	cfg.SessionDatabaseURL = first(dbURL, os.Getenv("SESSION_DATABASE_URL"), file.SessionDatabaseURL)
	defaultType := DatabaseMemory
	if cfg.SessionDatabaseURL != "" {
		defaultType = DatabaseSQLite
	}
	cfg.DatabaseType = first(dbType, os.Getenv("DATABASE_TYPE"), file.DatabaseType, defaultType)
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres:
		if cfg.SessionDatabaseURL == "" {
			return Config{}, errors.New("session database URL required (use -d or SESSION_DATABASE_URL env)")
		}
	case DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unknown DATABASE_TYPE %q", cfg.DatabaseType)
	}

	// Browser
	originStr := first(origins, os.Getenv("ALLOWED_ORIGINS"), os.Getenv("ALLOW_ORIGIN"), strings.Join(file.AllowedOrigins, ","), defaultOrigin)
	cfg.AllowedOrigins = splitList(originStr)

	cfg.CookieSameSite, err = ParseSameSite(first(sameSite, os.Getenv("COOKIE_SAMESITE"), file.CookieSameSite, "Lax"))
	if err != nil {
		return Config{}, err
	}

	secureStr := first(flagBool(set["secure-cookie"], secure), os.Getenv("COOKIE_SECURE"), fileBool(file.CookieSecure), "false")
	cfg.CookieSecure, err = strconv.ParseBool(secureStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid COOKIE_SECURE %q", secureStr)
	}

	return cfg, nil
}

// ParseSameSite maps Lax, Strict or None (any case) to its cookie mode
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("invalid COOKIE_SAMESITE %q", s)
}

// first returns the first non-empty value
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func flagInt(set bool, v int) string {
	if !set {
		return ""
	}
	return strconv.Itoa(v)
}

func flagBool(set bool, v bool) string {
	if !set {
		return ""
	}
	return strconv.FormatBool(v)
}

func fileInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func fileBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
