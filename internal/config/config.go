package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RegionAll is the wildcard sub-region entry meaning "keep every region".
const RegionAll = "ALL"

// Config holds the full application configuration. It is built once at
// process start and passed into the core read-only; nothing mutates it
// during a run.
type Config struct {
	// BaseMinimums maps a program code to the minimum accumulated sales
	// per display slot per month (VND).
	BaseMinimums map[string]float64 `yaml:"base_minimums" mapstructure:"base_minimums"`
	// ProgramNames maps a program code to its display name on the
	// summary sheets.
	ProgramNames map[string]string `yaml:"program_names" mapstructure:"program_names"`
	// RegionMap maps a report region to the "Miền" codes it covers.
	// The single entry RegionAll keeps every row.
	RegionMap map[string][]string `yaml:"region_map" mapstructure:"region_map"`
	// Aliases maps regional product-line variant codes (the Xe Bánh Mì
	// levels) to their canonical program code.
	Aliases map[string]string `yaml:"aliases" mapstructure:"aliases"`
	Log     LogConfig          `yaml:"log" mapstructure:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ResolveProgram maps a raw registration-level code to its canonical
// program code via the alias table, falling back to the code itself.
func (c *Config) ResolveProgram(level string) string {
	level = strings.TrimSpace(level)
	if canonical, ok := c.Aliases[level]; ok {
		return canonical
	}
	return level
}

// BaseMinimum returns the per-slot minimum for a registration-level
// code, after alias resolution. Unknown codes yield 0.
func (c *Config) BaseMinimum(level string) float64 {
	return c.BaseMinimums[c.ResolveProgram(level)]
}

// KnownProgram reports whether the (alias-resolved) code has a
// configured base minimum.
func (c *Config) KnownProgram(level string) bool {
	_, ok := c.BaseMinimums[c.ResolveProgram(level)]
	return ok
}

// SubRegions returns the "Miền" codes a report region covers and
// whether the region is the keep-everything wildcard.
func (c *Config) SubRegions(region string) (codes []string, wildcard bool, ok bool) {
	codes, ok = c.RegionMap[region]
	if !ok {
		return nil, false, false
	}
	if len(codes) == 1 && codes[0] == RegionAll {
		return nil, true, true
	}
	return codes, false, true
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// setDefaults seeds the production program table. A config file or
// DISPLAY_* environment variables override any of it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("base_minimums", map[string]float64{
		"NMCD":        150000,
		"DHLM":        100000,
		"KOS_XXTG":    300000,
		"LTLKC":       80000,
		"GVIG":        300000,
		"GVIG_BMTR":   300000,
		"KOS_XXTG_BS": 200000,
		"CAKOS":       50000,
		"XBM_MN":      36000,
		"XBM_MB":      36000,
	})

	v.SetDefault("program_names", map[string]string{
		"NMCD":        "Trưng bày Nước mắm Cholimex 30, 35, 40 độ đạm 500ml + 750ml",
		"DHLM":        "Trưng bày Dầu hào 820g, Nước tương Lên men 700ml",
		"LTLKC":       "Trưng bày Xốt Lẩu thái 280g & Xốt Lẩu kim chi 280g",
		"KOS_XXTG":    "Trưng bày cá KOS và Xúc xích - Miền Nam",
		"KOS_XXTG_BS": "Trưng bày cá KOS và Xúc xích - Miền Bắc & Bắc Miền Trung",
		"XBM_MN":      "Trưng bày Xe Bánh Mì - Miền Nam",
		"XBM_MB":      "Trưng bày Xe Bánh Mì - Miền Bắc",
		"CAKOS":       "Trưng bày cá KOS",
		"GVIG":        "Trưng bày Gia vị gói - Miền Bắc",
		"GVIG_BMTR":   "Trưng bày Gia vị gói - Bắc Miền Trung",
	})

	v.SetDefault("region_map", map[string][]string{
		"HCME":      {"HCM", "MD"},
		"MTRUNG":    {"MTR", "MB_MT3"},
		"MTAY":      {"MTA"},
		"MBAC":      {"MB"},
		"TOAN_QUOC": {RegionAll},
	})

	v.SetDefault("aliases", map[string]string{
		"M70":  "XBM_MN",
		"M110": "XBM_MN",
		"M80":  "XBM_MB",
		"M120": "XBM_MB",
	})
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
