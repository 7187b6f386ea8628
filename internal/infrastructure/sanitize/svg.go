// Package sanitize strips scripting and unsafe markup from SVG
// documents before they are stored and served back to browsers.
package sanitize

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hikari-systems/image-service/pkg/tmpfile"
)

var blockedElements = map[string]bool{
	"script":        true,
	"foreignObject": true,
	"iframe":        true,
	"object":        true,
	"embed":         true,
	"audio":         true,
	"video":         true,
}

type Sanitizer struct{}

func New() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize writes a cleaned copy of the SVG at sourcePath to a fresh
// temp file and returns its path. Blocked elements are dropped with
// their entire subtree; event-handler and script-URL attributes are
// removed. Failure produces no destination file.
func (s *Sanitizer) Sanitize(ctx context.Context, sourcePath string) (string, error) {
	in, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("Sanitizer - Sanitize - os.Open: %w", err)
	}
	defer in.Close()

	var buf bytes.Buffer
	if err := filterTokens(in, &buf); err != nil {
		return "", fmt.Errorf("Sanitizer - Sanitize - filterTokens: %w", err)
	}

	destPath := tmpfile.Name(".svg")
	if err := os.WriteFile(destPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("Sanitizer - Sanitize - os.WriteFile: %w", err)
	}

	return destPath, nil
}

func filterTokens(in io.Reader, out io.Writer) error {
	dec := xml.NewDecoder(in)
	dec.Strict = false

	enc := xml.NewEncoder(out)

	// depth inside a blocked subtree; everything below it is dropped
	skipDepth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if blockedElements[t.Name.Local] {
				skipDepth = 1
				continue
			}
			t.Attr = filterAttrs(t.Attr)
			if err := enc.EncodeToken(t); err != nil {
				return err
			}
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if err := enc.EncodeToken(t); err != nil {
				return err
			}
		case xml.CharData:
			if skipDepth > 0 {
				continue
			}
			if err := enc.EncodeToken(t); err != nil {
				return err
			}
		case xml.ProcInst:
			if skipDepth == 0 && t.Target == "xml" {
				if err := enc.EncodeToken(t); err != nil {
					return err
				}
			}
		default:
			// comments and directives (DOCTYPE, entities) are dropped
		}
	}

	return enc.Flush()
}

func filterAttrs(attrs []xml.Attr) []xml.Attr {
	kept := attrs[:0]
	for _, a := range attrs {
		name := strings.ToLower(a.Name.Local)
		if strings.HasPrefix(name, "on") {
			continue
		}
		if (name == "href" || name == "src") && unsafeURL(a.Value) {
			continue
		}
		kept = append(kept, a)
	}

	return kept
}

func unsafeURL(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))

	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "data:text/html")
}
