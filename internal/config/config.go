package config

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config - settings for rendering and publishing the energy chart
type Config struct {
	Input      InputConfig      `mapstructure:"input"`
	Output     OutputConfig     `mapstructure:"output"`
	Chart      ChartConfig      `mapstructure:"chart"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	App        AppConfig        `mapstructure:"app"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
}

type InputConfig struct {
	Path            string `mapstructure:"path"`
	GenerateCommand string `mapstructure:"generate_command"` // runs before loading when set
	GenerateTimeout int    `mapstructure:"generate_timeout"` // seconds
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}

type ChartConfig struct {
	FontPath string `mapstructure:"font_path"` // DejaVuSans.ttf, searched when empty
}

// SimulationConfig drives the built-in orbit simulation that writes the
// energy table. Disabled, or without a conditions file, the table is used as is.
type SimulationConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ConditionsPath string  `mapstructure:"conditions_path"`
	SIUnits        bool    `mapstructure:"si_units"` // conditions in kg, m, m/s
	Step           float64 `mapstructure:"step"`
	Steps          int     `mapstructure:"steps"`
	SampleEvery    int     `mapstructure:"sample_every"`
	TrajectoryPath string  `mapstructure:"trajectory_path"` // empty disables
}

type AppConfig struct {
	LogDir string `mapstructure:"log_dir"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	ChatID      string `mapstructure:"chat_id"`
	APIEndpoint string `mapstructure:"api_endpoint"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

// GenerateTimeoutDuration returns the data generation timeout.
func (c InputConfig) GenerateTimeoutDuration() time.Duration {
	return time.Duration(c.GenerateTimeout) * time.Second
}

// ParsedChatID returns the chat id as a number.
func (c TelegramConfig) ParsedChatID() (int64, error) {
	id, err := strconv.ParseInt(c.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram.chat_id %q: %w", c.ChatID, err)
	}
	return id, nil
}

// LoadConfig merges, from lowest to highest priority:
// 1. defaults
// 2. config.yaml
// 3. .env file
// 4. environment
// 5. flags that were set on the command line
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()
	setupEnvAliases(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setupEnvAliases(v *viper.Viper) {
	v.BindEnv("input.path", "ENERGY_INPUT_PATH")
	v.BindEnv("input.generate_command", "ENERGY_GENERATE_COMMAND")
	v.BindEnv("input.generate_timeout", "ENERGY_GENERATE_TIMEOUT")
	v.BindEnv("output.path", "ENERGY_OUTPUT_PATH")
	v.BindEnv("chart.font_path", "ENERGY_FONT_PATH")
	v.BindEnv("simulation.enabled", "ENERGY_SIMULATION_ENABLED")
	v.BindEnv("simulation.conditions_path", "ENERGY_CONDITIONS_PATH")
	v.BindEnv("simulation.si_units", "ENERGY_SIMULATION_SI_UNITS")
	v.BindEnv("simulation.step", "ENERGY_SIMULATION_STEP")
	v.BindEnv("simulation.steps", "ENERGY_SIMULATION_STEPS")
	v.BindEnv("simulation.sample_every", "ENERGY_SIMULATION_SAMPLE_EVERY")
	v.BindEnv("simulation.trajectory_path", "ENERGY_TRAJECTORY_PATH")
	v.BindEnv("app.log_dir", "ENERGY_LOG_DIR")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("telegram.api_endpoint", "TELEGRAM_API_ENDPOINT")
	v.BindEnv("telegram.max_retries", "TELEGRAM_MAX_RETRIES")
}

// setDefaults uses the file names the simulator workflow expects.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "energias_planetas.dat")
	v.SetDefault("input.generate_command", "")
	v.SetDefault("input.generate_timeout", 300)

	v.SetDefault("output.path", "grafica_energia.png")

	v.SetDefault("chart.font_path", "")

	v.SetDefault("simulation.enabled", true)
	v.SetDefault("simulation.conditions_path", "Condiniciales.txt")
	v.SetDefault("simulation.si_units", false)
	v.SetDefault("simulation.step", 1e-4)
	v.SetDefault("simulation.steps", 10000000)
	v.SetDefault("simulation.sample_every", 100)
	v.SetDefault("simulation.trajectory_path", "")

	v.SetDefault("app.log_dir", "logs")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.api_endpoint", tgbotapi.APIEndpoint)
	v.SetDefault("telegram.max_retries", 3)
}

// RegisterFlags adds the config flags to fs. Flag names match config keys.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("input.path", "energias_planetas.dat", "Data file with time and energy columns (env: ENERGY_INPUT_PATH)")
	fs.String("input.generate_command", "", "Command that regenerates the data file before plotting (env: ENERGY_GENERATE_COMMAND)")
	fs.Int("input.generate_timeout", 300, "Timeout in seconds for the generate command (env: ENERGY_GENERATE_TIMEOUT)")
	fs.String("output.path", "grafica_energia.png", "Output PNG path (env: ENERGY_OUTPUT_PATH)")
	fs.String("chart.font_path", "", "Path to DejaVuSans.ttf (env: ENERGY_FONT_PATH)")
	fs.String("app.log_dir", "logs", "Log directory (env: ENERGY_LOG_DIR)")

	fs.Bool("simulation.enabled", true, "Regenerate the data file from the initial conditions when they are newer (env: ENERGY_SIMULATION_ENABLED)")
	fs.String("simulation.conditions_path", "Condiniciales.txt", "Initial conditions: mass, x and vy per body (env: ENERGY_CONDITIONS_PATH)")
	fs.Bool("simulation.si_units", false, "Initial conditions are in kg, m and m/s (env: ENERGY_SIMULATION_SI_UNITS)")
	fs.Float64("simulation.step", 1e-4, "Integration step in rescaled time units (env: ENERGY_SIMULATION_STEP)")
	fs.Int("simulation.steps", 10000000, "Number of integration steps (env: ENERGY_SIMULATION_STEPS)")
	fs.Int("simulation.sample_every", 100, "Write one row every this many steps (env: ENERGY_SIMULATION_SAMPLE_EVERY)")
	fs.String("simulation.trajectory_path", "", "Optional file for body positions (env: ENERGY_TRAJECTORY_PATH)")
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Input.GenerateTimeout < 0 {
		return fmt.Errorf("input.generate_timeout must not be negative")
	}
	if c.Simulation.Enabled {
		if err := c.Simulation.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the integration settings.
func (c SimulationConfig) Validate() error {
	if c.ConditionsPath == "" {
		return fmt.Errorf("simulation.conditions_path is required")
	}
	if !(c.Step > 0) {
		return fmt.Errorf("simulation.step must be positive")
	}
	if c.Steps < 0 {
		return fmt.Errorf("simulation.steps must not be negative")
	}
	if c.SampleEvery <= 0 {
		return fmt.Errorf("simulation.sample_every must be positive")
	}
	return nil
}

// ValidateTelegram checks the settings the publish command needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (env: TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required (env: TELEGRAM_CHAT_ID)")
	}
	if _, err := c.Telegram.ParsedChatID(); err != nil {
		return err
	}
	return nil
}
