package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// Prints fresh values for the secret environment variables the server
// needs. Run once per environment and copy the output into your secrets
// store.
func main() {
	token := make([]byte, 32)
	marker := make([]byte, 32)
	key := make([]byte, 32)
	for _, b := range [][]byte{token, marker, key} {
		if _, err := rand.Read(b); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("AUTH_TOKEN_SECRET=%s\n", base64.RawStdEncoding.EncodeToString(token))
	fmt.Printf("PORTAL_MARKER_SECRET=%s\n", base64.RawStdEncoding.EncodeToString(marker))
	fmt.Printf("CREDENTIAL_ENCRYPTION_KEY=%s\n", hex.EncodeToString(key))
}
