package models

// ConnectionConfig represents a PostgreSQL connection used as an attribute catalog
type ConnectionConfig struct {
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Database string `yaml:"database" mapstructure:"database"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	SSLMode  string `yaml:"ssl_mode" mapstructure:"ssl_mode"`
}

// ColumnInfo holds metadata about a column
type ColumnInfo struct {
	Name     string
	DataType string
	UDTName  string
	IsArray  bool
	IsJsonb  bool
}
