package config

import "os"

// ExpandEnv replaces ${VAR} / $VAR references in raw YAML bytes with
// environment values before the document is unmarshaled, so deployment
// secrets (DB passwords, API keys) never have to live in the checked-in
// YAML files.
func ExpandEnv(data []byte) []byte {
	return []byte(os.Expand(string(data), os.Getenv))
}
