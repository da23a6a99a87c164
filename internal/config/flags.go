package config

import (
	"flag"
	"os"
	"time"

	"vaultkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-v string   path to the vault file
//	-b string   backup bucket name
//	-e string   S3-compatible base endpoint (MinIO etc.)
//	-r string   S3 region
//	-n int      number of backups retained after pruning
//	-t int      remote request timeout in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-v", "-b", "-e", "-r", "-n", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultPath, "v", cfg.VaultPath, "path to the vault file")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "backup bucket name")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3-compatible base endpoint")
	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "S3 region")
	fs.IntVar(&cfg.BackupRetainLatest, "n", cfg.BackupRetainLatest, "backups retained after pruning")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "remote request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
