package config

import (
	"encoding/json"
	"os"
	"time"

	"vaultkeeper/internal/flagx"
	"vaultkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the request timeout either as a string
// like "30s" or as integer nanoseconds. Pointer fields distinguish "absent"
// from "zero" so partial JSON files only override what they mention.
type JsonConfig struct {
	VaultPath            *string         `json:"vault_path"`
	S3Region             *string         `json:"s3_region"`
	S3Bucket             *string         `json:"s3_bucket"`
	S3BaseEndpoint       *string         `json:"s3_base_endpoint"`
	S3AccessKey          *string         `json:"s3_access_key"`
	S3SecretKey          *string         `json:"s3_secret_key"`
	BackupTimestampFirst *bool           `json:"backup_timestamp_first"`
	BackupRetainLatest   *int            `json:"backup_retain_latest"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags via flagx.JsonConfigFlags(); with no such
// flag, nothing is loaded. Read or unmarshal errors panic, matching the
// fail-fast startup of the rest of the loader.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.VaultPath != nil {
		cfg.VaultPath = *jc.VaultPath
	}
	if jc.S3Region != nil {
		cfg.S3Region = *jc.S3Region
	}
	if jc.S3Bucket != nil {
		cfg.S3Bucket = *jc.S3Bucket
	}
	if jc.S3BaseEndpoint != nil {
		cfg.S3BaseEndpoint = *jc.S3BaseEndpoint
	}
	if jc.S3AccessKey != nil {
		cfg.S3AccessKey = *jc.S3AccessKey
	}
	if jc.S3SecretKey != nil {
		cfg.S3SecretKey = *jc.S3SecretKey
	}
	if jc.BackupTimestampFirst != nil {
		cfg.BackupTimestampFirst = *jc.BackupTimestampFirst
	}
	if jc.BackupRetainLatest != nil {
		cfg.BackupRetainLatest = *jc.BackupRetainLatest
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
