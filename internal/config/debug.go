package config

import "os"

func IsDebug() bool {
	return os.Getenv("TRUNK_DEBUG") == "1"
}
