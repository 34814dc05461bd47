package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

type Body interface {
	Encode() (io.Reader, string, error)
}

type jsonBody struct {
	v any
}

func JSON(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is a form-data body. Fields keep their insertion order.
type Multipart struct {
	fields [][2]string
	files  []File
}

func (m *Multipart) Set(name, value string) *Multipart {
	m.fields = append(m.fields, [2]string{name, value})
	return m
}

func (m *Multipart) Attach(f File) *Multipart {
	m.files = append(m.files, f)
	return m
}

func (m *Multipart) Has(name string) bool {
	for _, f := range m.fields {
		if f[0] == name {
			return true
		}
	}
	return false
}

func (m *Multipart) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
