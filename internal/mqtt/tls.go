package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// caCertFile is the broker CA certificate name under CERT_PATH
const caCertFile = "ca.cert.pem"

// fixPath joins the certificate directory and file name, tolerating a
// trailing slash in the configured path
func fixPath(certPath, fileName string) string {
	if strings.HasSuffix(certPath, "/") {
		return certPath + fileName
	}
	return certPath + "/" + fileName
}

// newTLSConfig builds the client TLS configuration from the CA bundle.
// Certificate verification stays enabled; the historical deployments use
// a private CA for the broker.
func newTLSConfig(certPath string) (*tls.Config, error) {
	caFile := fixPath(certPath, caCertFile)
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read broker CA certificate %s: %w", caFile, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no usable certificates in %s", caFile)
	}

	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
