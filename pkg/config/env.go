package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bichil/orgchart/pkg/errors"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "ORGCHART_"

// LoadEnv loads the given dotenv files that exist, leaving variables that
// are already set untouched. It returns how many files were read.
func LoadEnv(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []string
	num := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, EnvPrefix+name)
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, EnvPrefix+name)
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, EnvPrefix+name)
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, EnvPrefix+name)
				return
			}
			*dst = d
		}
	}

	str("SLOT", &c.Slot)

	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_DIR", &c.Storage.Dir)
	str("SQLITE_PATH", &c.Storage.SQLite)
	str("REDIS_ADDR", &c.Storage.Redis.Addr)
	str("REDIS_PASSWORD", &c.Storage.Redis.Password)
	integer("REDIS_DB", &c.Storage.Redis.DB)
	str("MONGO_URI", &c.Storage.Mongo.URI)
	str("MONGO_DATABASE", &c.Storage.Mongo.Database)

	num("LEVEL_HEIGHT", &c.Layout.LevelHeight)
	num("SIBLING_GAP", &c.Layout.SiblingGap)

	num("EXPORT_SCALE", &c.Export.Scale)
	str("EXPORT_BACKGROUND", &c.Export.Background)
	str("RSVG_PATH", &c.Export.RSVGPath)
	boolean("NO_CACHE", &c.Export.NoCache)
	duration("EXPORT_TIMEOUT", &c.Export.Timeout)

	str("SERVER_ADDR", &c.Server.Addr)
	integer("SERVER_CACHE_SIZE", &c.Server.CacheSize)
	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	str("UPLOAD_ENDPOINT", &c.Upload.Endpoint)
	str("UPLOAD_REGION", &c.Upload.Region)
	str("UPLOAD_ACCESS_KEY", &c.Upload.AccessKey)
	str("UPLOAD_SECRET_KEY", &c.Upload.SecretKey)
	str("UPLOAD_BUCKET", &c.Upload.Bucket)
	str("UPLOAD_PUBLIC_URL", &c.Upload.PublicURL)
	boolean("UPLOAD_USE_SSL", &c.Upload.UseSSL)

	str("LANG", &c.UI.Lang)

	if len(errs) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid value for %s", strings.Join(errs, ", "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
