// Package main writes a self-signed server certificate and key for local
// HTTPS. Point TLS_CERT and TLS_KEY at the generated files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/SRAS2024/About-Me/internal/certgen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	hosts := fs.String("host", "localhost,127.0.0.1", "comma-separated hostnames and IPs")
	certPath := fs.String("cert", "certs/server.crt", "certificate output path")
	keyPath := fs.String("key", "certs/server.key", "key output path")
	validFor := fs.Duration("valid", 365*24*time.Hour, "certificate lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var list []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			list = append(list, h)
		}
	}

	certPEM, keyPEM, err := certgen.GenerateSelfSigned(list, *validFor)
	if err != nil {
		return err
	}
	if err := certgen.WriteKeyPair(*certPath, *keyPath, certPEM, keyPEM); err != nil {
		return err
	}
	fmt.Printf("Certificate written to %s and %s\n", *certPath, *keyPath)
	return nil
}
