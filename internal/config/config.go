package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Queue    QueueConfig    `mapstructure:"queue"    validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"     validate:"required"`
	Image    ImageConfig    `mapstructure:"image"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"omitempty,gte=4,lte=31"`
}

// QueueConfig selects and configures the delivery queue backend.
// Backend "memory" runs the email worker inside the API process;
// "rabbitmq" publishes to a broker consumed by a separate worker.
type QueueConfig struct {
	Backend    string `mapstructure:"backend"     validate:"required,oneof=memory rabbitmq"`
	URL        string `mapstructure:"url"         validate:"required_if=Backend rabbitmq"`
	Name       string `mapstructure:"name"        validate:"required"`
	BufferSize int    `mapstructure:"buffer_size" validate:"required_if=Backend memory,omitempty,gt=0"`
	Workers    int    `mapstructure:"workers"     validate:"omitempty,gt=0"`
}

// SMTPConfig contains the outbound mail relay settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int    `mapstructure:"port"     validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"required,email"`
}

// ImageConfig contains image optimization settings.
type ImageConfig struct {
	Quality int `mapstructure:"quality" validate:"omitempty,gte=1,lte=100"`
}
