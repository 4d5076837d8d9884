package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"

	"github.com/kbukum/fetchkit/errors"
)

// File is one part of a multipart/form-data upload.
type File struct {
	// FieldName is the form field name (e.g., "file", "audio").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type. If empty, uses application/octet-stream.
	ContentType string
	// Data is the file content.
	Data []byte
}

// encodePayload renders the request payload and the default headers that
// describe it. A request without a payload returns a nil body and nil defaults.
func (r *Request) encodePayload() ([]byte, *Headers, error) {
	switch {
	case len(r.files) > 0:
		fields, err := formFields(r.data)
		if err != nil {
			return nil, nil, err
		}
		body, contentType, err := encodeMultipart(fields, r.files)
		if err != nil {
			return nil, nil, errors.Construction("encode multipart body").WithCause(err)
		}
		return body, NewHeaders(HeaderContentType, contentType), nil

	case len(r.body) > 0:
		return r.body, nil, nil

	case r.json != nil:
		body, err := json.Marshal(r.json)
		if err != nil {
			return nil, nil, errors.Construction("encode json body").WithCause(err)
		}
		return body, DefaultJSONHeaders(), nil

	case r.data != nil:
		return encodeData(r.data)
	}
	return nil, nil, nil
}

// encodeData renders a data payload: text and bytes are sent raw, maps and
// params are form-encoded, anything else is sent as its default format.
func encodeData(data any) ([]byte, *Headers, error) {
	switch v := data.(type) {
	case string:
		return []byte(v), DefaultDataHeaders(), nil
	case []byte:
		return v, DefaultDataHeaders(), nil
	case map[string]string, Params, url.Values:
		fields, _ := formFields(v)
		return []byte(EncodeParams(fields)), DefaultFormHeaders(), nil
	default:
		return []byte(fmt.Sprint(v)), DefaultDataHeaders(), nil
	}
}

// formFields returns the form fields carried by a data payload.
func formFields(data any) (Params, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return ParamsFromMap(v), nil
	case Params:
		return v, nil
	case url.Values:
		return ParamsFromValues(v), nil
	default:
		return nil, errors.Construction(fmt.Sprintf("data of type %T cannot be sent with files", data))
	}
}

// encodeMultipart builds the multipart body and returns it with its content type.
func encodeMultipart(fields Params, files []File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return nil, "", err
		}
	}

	for _, f := range files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set(HeaderContentType, f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
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
	return buf.Bytes(), w.FormDataContentType(), nil
}

// escapeQuotes backslash-escapes quotes and backslashes in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
