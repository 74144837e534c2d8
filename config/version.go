package config

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
