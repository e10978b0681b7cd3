package transport

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/vdobler/rq/httpspec"
)

// quoteEscaper mirrors the teacher's own escaper for Content-Disposition
// field/file names (ht/ht.go).
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// encodeMultipart renders parts into a multipart/form-data body,
// generalizing the teacher's multipartBody (ht/ht.go) to the richer
// MultipartPart shape httpspec builds from the AST.
func encodeMultipart(parts []httpspec.MultipartPart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, p := range parts {
		if !p.IsFile {
			if err := w.WriteField(p.Name, p.Value); err != nil {
				return nil, "", err
			}
			continue
		}
		fw, err := w.CreatePart(filePartHeader(p))
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write([]byte(p.Value)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, "multipart/form-data; boundary=" + w.Boundary(), nil
}

func filePartHeader(p httpspec.MultipartPart) textproto.MIMEHeader {
	h := textproto.MIMEHeader{
		"Content-Disposition": {
			`form-data; name="` + escapeQuotes(p.Name) + `"; filename="` + escapeQuotes(p.FileName) + `"`,
		},
	}
	if p.ContentType != "" {
		h.Set("Content-Type", p.ContentType)
	}
	return h
}
