// Package metadata signs run reports with a hash-bearing metadata block so
// a report can later be checked for tampering or truncation.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- REPORT_META_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "REPORT_META_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes a signed report.
type Metadata struct {
	GeneratedAt time.Time
	Tool        string
	Hash        string
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)<!--\s*REPORT_META_START\s*\n(.*?)\n\s*REPORT_META_END\s*-->`)

// Extract removes the metadata block from content and returns both the
// metadata and the cleaned content. The cleaned content is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	cleanContent := metadataRegex.ReplaceAllString(content, "")
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	meta := &Metadata{}

	for _, line := range strings.Split(match[1], "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "GENERATED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.GeneratedAt = t
			}
		case "TOOL":
			meta.Tool = val
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content excluding any
// metadata block.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign appends or replaces the metadata block with a fresh hash and
// timestamp.
func Sign(content, tool string) string {
	_, clean := Extract(content)

	hash := CalculateHash(clean)
	now := time.Now().UTC().Format(time.RFC3339)

	block := fmt.Sprintf("\n\n%s\nTOOL: %s\nGENERATED_AT: %s\nHASH: %s\n%s",
		TagStart, tool, now, hash, TagEnd)

	return clean + block
}

// Verify checks that the content matches the hash in its metadata block.
func Verify(content string) error {
	meta, clean := Extract(content)
	if meta == nil {
		return ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return nil
}
