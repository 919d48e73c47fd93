// Package id generates receipt numbers, request ids and receipt file names.
package id

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	receiptPrefix   = "RB-"
	receiptAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	receiptLength   = 10

	fileStampLayout = "20060102150405"
)

var receiptFilePattern = regexp.MustCompile(`^receipt-(.+)-(\d{14})\.([a-z0-9]+)$`)

// ReceiptNumberGenerator returns a function producing numbers like
// "RB-7K2P9QXM4D".
func ReceiptNumberGenerator() (func() string, error) {
	gen, err := nanoid.CustomASCII(receiptAlphabet, receiptLength)
	if err != nil {
		return nil, fmt.Errorf("creating receipt number generator: %w", err)
	}
	return func() string { return receiptPrefix + gen() }, nil
}

// IsReceiptNumber reports whether s looks like a generated receipt number.
func IsReceiptNumber(s string) bool {
	body, ok := strings.CutPrefix(s, receiptPrefix)
	if !ok || len(body) != receiptLength {
		return false
	}
	for _, r := range body {
		if !strings.ContainsRune(receiptAlphabet, r) {
			return false
		}
	}
	return true
}

// NewRequestID returns a random request id for API logs.
func NewRequestID() string {
	return uuid.New().String()
}

// FormatReceiptFile returns "receipt-<ref>-<yyyymmddhhmmss>.<ext>".
func FormatReceiptFile(refID string, at time.Time, ext string) string {
	return fmt.Sprintf("receipt-%s-%s.%s", refID, at.Format(fileStampLayout), ext)
}

// ParseReceiptFile splits a name produced by FormatReceiptFile.
func ParseReceiptFile(name string) (refID string, at time.Time, ext string, err error) {
	m := receiptFilePattern.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, "", fmt.Errorf("invalid receipt file name: %q", name)
	}

	at, err = time.Parse(fileStampLayout, m[2])
	if err != nil {
		return "", time.Time{}, "", fmt.Errorf("invalid timestamp in receipt file name %q: %w", name, err)
	}
	return m[1], at, m[3], nil
}
