// Package cvtext turns an uploaded CV into plain text for the analyzer.
package cvtext

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nguyenthenguyen/docx"
)

// MaxTextLength caps the extracted text, in runes
const MaxTextLength = 20000

// ErrUnsupportedFormat is returned for documents we cannot read as text
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extract returns the text content of a CV, chosen by filename extension
func Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".docx":
		text, err = extractDocx(data)
	case ".txt":
		text = strings.ToValidUTF8(string(data), "�")
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	return truncate(strings.TrimSpace(text), MaxTextLength), nil
}

// Placeholder is the text analyzed when the CV itself cannot be read
func Placeholder(applicationID string) string {
	return "Simulated CV content for application " + applicationID
}

func extractDocx(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer r.Close()

	return wordXMLToText(r.Editable().GetContent())
}

// wordXMLToText keeps the character data of a WordprocessingML body,
// breaking lines at paragraphs and tabs at <w:tab/>.
func wordXMLToText(content string) (string, error) {
	var sb strings.Builder
	dec := xml.NewDecoder(strings.NewReader(content))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
