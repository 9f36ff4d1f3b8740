// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode is the resolved way the server terminates TLS.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

const (
	selfSignedValidity = 365 * 24 * time.Hour
	renewBefore        = 30 * 24 * time.Hour
)

// TLSSetup is the outcome of SetupTLS. Redirect is set in ACME mode and
// answers HTTP-01 challenges on :80 while redirecting everything else.
type TLSSetup struct {
	Config   *tls.Config
	Redirect http.Handler
	Mode     TLSMode
}

// SetupTLS resolves the TLS mode and prepares certificates for it.
func SetupTLS(cfg *config.Config) (*TLSSetup, error) {
	mode := resolveTLSMode(cfg, portFree)
	slog.Info("tls configured", "mode", mode, "host", cfg.Server.Host)

	switch mode {
	case TLSModeOff:
		return &TLSSetup{Mode: TLSModeOff}, nil
	case TLSModeACME:
		return setupACME(cfg)
	case TLSModeManual:
		return setupManual(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	default:
		return setupSelfSigned(cfg.Server.Host, filepath.Join(cfg.TLS.CertDir, "selfsigned"))
	}
}

// resolveTLSMode applies an explicit mode or picks one for "auto":
// localhost runs plain HTTP, given cert files mean manual, a public host
// name with an ACME email and free ports 80/443 means ACME, anything else
// falls back to a self-signed certificate.
func resolveTLSMode(cfg *config.Config, free func(port int) bool) TLSMode {
	switch mode := TLSMode(strings.ToLower(cfg.TLS.Mode)); mode {
	case TLSModeOff, TLSModeACME, TLSModeManual, TLSModeSelfSigned:
		return mode
	case "auto", "":
	default:
		slog.Warn("unknown tls mode, using auto", "mode", mode)
	}

	host := cfg.Server.Host
	switch {
	case config.IsLocalhost(host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	case net.ParseIP(host) == nil && cfg.TLS.Email != "" && free(80) && free(443):
		return TLSModeACME
	default:
		return TLSModeSelfSigned
	}
}

func portFree(port int) bool {
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func setupACME(cfg *config.Config) (*TLSSetup, error) {
	if cfg.TLS.Email == "" {
		return nil, errors.New("acme mode requires tls-email")
	}
	if cfg.Server.Port != 443 {
		slog.Warn("acme mode listens on :443, ignoring configured port", "port", cfg.Server.Port)
	}

	dir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create acme cache: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(dir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	return &TLSSetup{
		Mode:     TLSModeACME,
		Config:   tlsConfig,
		Redirect: manager.HTTPHandler(nil),
	}, nil
}

func setupManual(certFile, keyFile string) (*TLSSetup, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("manual tls mode requires tls-cert-file and tls-key-file")
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	logFingerprint(&cert)
	return &TLSSetup{Mode: TLSModeManual, Config: tlsConfigFor(&cert)}, nil
}

// setupSelfSigned reuses the certificate in dir unless it is unreadable
// or about to expire.
func setupSelfSigned(host, dir string) (*TLSSetup, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create certificate directory: %w", err)
	}
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil || expiresWithin(&cert, renewBefore) {
		slog.Info("generating self-signed certificate", "host", host)
		if err := writeSelfSigned(host, certFile, keyFile); err != nil {
			return nil, err
		}
		if cert, err = tls.LoadX509KeyPair(certFile, keyFile); err != nil {
			return nil, fmt.Errorf("failed to load generated certificate: %w", err)
		}
	}

	logFingerprint(&cert)
	slog.Warn("serving a self-signed certificate, browsers will ask to accept it")
	return &TLSSetup{Mode: TLSModeSelfSigned, Config: tlsConfigFor(&cert)}, nil
}

func writeSelfSigned(host, certFile, keyFile string) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial: %w", err)
	}

	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: host, Organization: []string{"Teaching Award"}},
		NotBefore:             now,
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
	} else if host != "" {
		tmpl.DNSNames = append(tmpl.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	if err := writePEM(certFile, "CERTIFICATE", der); err != nil {
		return err
	}
	return writePEM(keyFile, "EC PRIVATE KEY", keyDER)
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func expiresWithin(cert *tls.Certificate, d time.Duration) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return time.Until(leaf.NotAfter) < d
}

func logFingerprint(cert *tls.Certificate) {
	if len(cert.Certificate) == 0 {
		return
	}
	sum := sha256.Sum256(cert.Certificate[0])
	slog.Info("certificate fingerprint", "sha256", strings.ToUpper(hex.EncodeToString(sum[:])))
}

func tlsConfigFor(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}
