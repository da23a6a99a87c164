package config

import "time"

// Config holds runtime settings for the vaultkeeper CLI.
//
// Fields:
//   - VaultPath: location of the encrypted vault file.
//   - S3Region, S3Bucket, S3BaseEndpoint, S3AccessKey, S3SecretKey: remote
//     backup target. BaseEndpoint is optional and points at MinIO or another
//     S3-compatible server; empty credentials fall back to the default AWS
//     chain.
//   - BackupTimestampFirst: object keys lead with the timestamp token.
//   - BackupRetainLatest: how many backups a prune keeps.
//   - RequestTimeout: bound on each remote operation.
type Config struct {
	VaultPath string

	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	BackupTimestampFirst bool
	BackupRetainLatest   int
	RequestTimeout       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.VaultPath = "vault.txt"
	c.S3Region = "us-east-1"
	c.S3Bucket = "vaultkeeper-backups"
	c.BackupRetainLatest = 10
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
