// Package qr renders verification links as embeddable PNG data URIs.
package qr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrEncoding is returned when a URL cannot be rendered as a QR code.
var ErrEncoding = errors.New("qr: encoding failed")

const dataURIPrefix = "data:image/png;base64,"

// Config holds the static rendering parameters
type Config struct {
	Size       int    `mapstructure:"size"`
	Foreground string `mapstructure:"foreground"`
	Background string `mapstructure:"background"`
	Border     bool   `mapstructure:"border"`
	Recovery   string `mapstructure:"recovery"` // low, medium, high, highest
}

// DefaultConfig returns the certificate rendering defaults
func DefaultConfig() Config {
	return Config{
		Size:       256,
		Foreground: "#0a0a0a",
		Background: "#ffffff",
		Border:     true,
		Recovery:   "medium",
	}
}

// Encoder turns URLs into QR data URIs
type Encoder struct {
	size   int
	fg     color.Color
	bg     color.Color
	level  qrcode.RecoveryLevel
	border bool
}

// NewEncoder validates cfg and returns an Encoder
func NewEncoder(cfg Config) (*Encoder, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("qr: invalid size %d", cfg.Size)
	}

	fg, err := parseHexColor(cfg.Foreground)
	if err != nil {
		return nil, fmt.Errorf("qr: foreground: %w", err)
	}
	bg, err := parseHexColor(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("qr: background: %w", err)
	}

	level, err := parseRecovery(cfg.Recovery)
	if err != nil {
		return nil, err
	}

	return &Encoder{size: cfg.Size, fg: fg, bg: bg, level: level, border: cfg.Border}, nil
}

// Encode renders url and returns it as a base64 PNG data URI
func (e *Encoder) Encode(url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: empty url", ErrEncoding)
	}

	code, err := qrcode.New(url, e.level)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	code.ForegroundColor = e.fg
	code.BackgroundColor = e.bg
	code.DisableBorder = !e.border

	png, err := code.PNG(e.size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

func parseRecovery(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return qrcode.Low, nil
	case "", "medium":
		return qrcode.Medium, nil
	case "high":
		return qrcode.High, nil
	case "highest":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("qr: unknown recovery level %q", s)
	}
}

// parseHexColor accepts #rgb and #rrggbb
func parseHexColor(s string) (color.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
