// Command configdump prints the configuration the server would start with,
// as YAML and with secrets masked. It reads the same environment variables
// as the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tripsplit/tripsplit-backend/config"
	"github.com/tripsplit/tripsplit-backend/logger"
)

func main() {
	output := flag.String("o", "", "write to this file instead of stdout")
	flag.Parse()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	out, err := config.DumpYAML(cfg)
	if err != nil {
		log.Fatalf("Failed to render config: %v", err)
	}

	if *output == "" {
		fmt.Print(string(out))
		return
	}
	if err := os.WriteFile(*output, out, 0o600); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	log.Infow("Configuration written", "file", *output)
}
