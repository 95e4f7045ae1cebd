package cvtext

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t></w:r><w:r><w:tab/><w:t>Go, PostgreSQL</w:t></w:r></w:p>
<w:p><w:r><w:t>Experience: 5 years</w:t></w:r></w:p>
</w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	})

	text, err := Extract("cv.DOCX", data)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Skills:\tGo, PostgreSQL")
	assert.Contains(t, text, "Experience: 5 years")
}

func TestExtract_DocxCorrupt(t *testing.T) {
	_, err := Extract("cv.docx", []byte("PK not really a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open docx")

	missingBody := buildDocx(t, map[string]string{"word/_rels/document.xml.rels": relsXML})
	_, err = Extract("cv.docx", missingBody)
	require.Error(t, err)
}

func TestExtract_Text(t *testing.T) {
	text, err := Extract("cv.txt", []byte("  Go developer\xff with SQL  \n"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer� with SQL", text)
}

func TestExtract_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxTextLength+50)

	text, err := Extract("cv.txt", []byte(long))
	require.NoError(t, err)
	assert.Equal(t, MaxTextLength, len([]rune(text)))
}

func TestExtract_Unsupported(t *testing.T) {
	for _, name := range []string{"cv.pdf", "cv.doc", "cv"} {
		_, err := Extract(name, []byte("%PDF-1.4"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "Simulated CV content for application abc", Placeholder("abc"))
}
