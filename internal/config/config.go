package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterhellberg/duration"
	"github.com/pkg/errors"
)

const (
	defaultDriver        = "sqlite3"
	defaultTimeLimit     = 10 * time.Second
	defaultRevealDelay   = 1500 * time.Millisecond
	defaultFetchTimeout  = 10 * time.Second
	defaultImportWorkers = 4
)

type Config struct {
	DBPath        string
	DBDriver      string
	TimeLimit     time.Duration
	RevealDelay   time.Duration
	FetchTimeout  time.Duration
	ImportWorkers int
	DeckFile      string
}

// TimeLimitSeconds rounds the time limit up to whole seconds.
func (c Config) TimeLimitSeconds() int {
	return int((c.TimeLimit + time.Second - 1) / time.Second)
}

// LoadDotEnv reads environment defaults from files (".env" when none are given).
// Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			present = append(present, file)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ParseFlags registers the CLI flags on fs, parses args and fills anything left unset
// from QUIZ_* environment variables.
func ParseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		cfg           Config
		timeLimit     string
		revealDelay   string
		fetchTimeout  string
		importWorkers int
	)

	fs.StringVar(&cfg.DBPath, "db", "", "Workspace database file (in memory when empty)")
	fs.StringVar(&cfg.DBDriver, "db-driver", "", "SQLite driver: sqlite3 (cgo) or sqlite (pure Go)")
	fs.StringVar(&timeLimit, "time-limit", "", "Seconds per question, e.g. 10, 10s or PT10S")
	fs.StringVar(&revealDelay, "reveal", "", "Pause after each answer, e.g. 1.5s")
	fs.StringVar(&fetchTimeout, "fetch-timeout", "", "Timeout for fetching tierlist images")
	fs.IntVar(&importWorkers, "import-workers", 0, "Concurrent image fetches during tierlist import")
	fs.StringVar(&cfg.DeckFile, "deck", "", "Deck file to import on startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DBPath = envOr(cfg.DBPath, "QUIZ_DB", "")
	cfg.DBDriver = envOr(cfg.DBDriver, "QUIZ_DB_DRIVER", defaultDriver)
	cfg.DeckFile = envOr(cfg.DeckFile, "QUIZ_DECK", "")

	var err error
	if cfg.TimeLimit, err = parseDuration(envOr(timeLimit, "QUIZ_TIME_LIMIT", ""), defaultTimeLimit); err != nil {
		return Config{}, errors.Wrap(err, "time limit")
	}
	if cfg.RevealDelay, err = parseDuration(envOr(revealDelay, "QUIZ_REVEAL_DELAY", ""), defaultRevealDelay); err != nil {
		return Config{}, errors.Wrap(err, "reveal delay")
	}
	if cfg.FetchTimeout, err = parseDuration(envOr(fetchTimeout, "QUIZ_FETCH_TIMEOUT", ""), defaultFetchTimeout); err != nil {
		return Config{}, errors.Wrap(err, "fetch timeout")
	}

	cfg.ImportWorkers = importWorkers
	if cfg.ImportWorkers == 0 {
		if raw := os.Getenv("QUIZ_IMPORT_WORKERS"); raw != "" {
			workers, err := strconv.Atoi(raw)
			if err != nil {
				return Config{}, errors.New("invalid QUIZ_IMPORT_WORKERS env variable")
			}
			cfg.ImportWorkers = workers
		}
	}
	if cfg.ImportWorkers <= 0 {
		cfg.ImportWorkers = defaultImportWorkers
	}

	switch cfg.DBDriver {
	case "sqlite3", "sqlite":
	default:
		return Config{}, errors.Errorf("unsupported db driver %q (use sqlite3 or sqlite)", cfg.DBDriver)
	}

	return cfg, nil
}

// parseDuration accepts bare seconds ("10"), Go durations ("1.5s") and ISO 8601
// durations ("PT10S"). Empty input yields def.
func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	var (
		d   time.Duration
		err error
	)
	switch {
	case strings.HasPrefix(strings.ToUpper(raw), "P"):
		d, err = duration.Parse(strings.ToUpper(raw))
	default:
		if seconds, convErr := strconv.ParseFloat(raw, 64); convErr == nil {
			d = time.Duration(seconds * float64(time.Second))
		} else {
			d, err = time.ParseDuration(raw)
		}
	}
	if err != nil {
		return 0, errors.Wrapf(err, "parse %q", raw)
	}
	if d <= 0 {
		return 0, errors.Errorf("%q must be positive", raw)
	}
	return d, nil
}

func envOr(value, key, def string) string {
	if value != "" {
		return value
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
