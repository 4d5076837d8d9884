package httpclient

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"testing"
)

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name        string
		opts        []RequestOption
		wantBody    string
		wantType    string
		wantDefault bool
	}{
		{"none", nil, "", "", false},
		{"raw body", []RequestOption{WithBody([]byte("raw"))}, "raw", "", false},
		{"string data", []RequestOption{WithData("hello")}, "hello", ContentTypeText, true},
		{"bytes data", []RequestOption{WithData([]byte("bin"))}, "bin", ContentTypeText, true},
		{"map data", []RequestOption{WithData(map[string]string{"b": "2", "a": "x y"})}, "a=x%20y&b=2", ContentTypeForm, true},
		{"params data", []RequestOption{WithData(Params{{"z", "1"}, {"a", "2"}})}, "z=1&a=2", ContentTypeForm, true},
		{"values data", []RequestOption{WithData(url.Values{"k": {"v"}})}, "k=v", ContentTypeForm, true},
		{"other data", []RequestOption{WithData(42)}, "42", ContentTypeText, true},
		{"json", []RequestOption{WithJSON(map[string]string{"name": "ada"})}, `{"name":"ada"}`, ContentTypeJSON, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest("POST", "http://example.com", tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			body, headers, err := req.encodePayload()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, body)
			}
			if got := headers.Value(HeaderContentType); got != tt.wantType {
				t.Errorf("expected content type %q, got %q", tt.wantType, got)
			}
			if (headers != nil) != tt.wantDefault {
				t.Errorf("expected defaults=%v, got %v", tt.wantDefault, headers)
			}
		})
	}
}

func TestEncodePayload_ExplicitContentTypeWins(t *testing.T) {
	req, _ := NewRequest("POST", "http://example.com",
		WithData("<a/>"),
		WithHeader("content-type", "application/xml"),
	)
	h, err := req.EffectiveHeaders()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Value("Content-Type") != "application/xml" {
		t.Errorf("expected explicit content type, got %q", h.Value("Content-Type"))
	}
}

func TestEncodePayload_MultipartFieldsAndFiles(t *testing.T) {
	req, err := NewRequest("POST", "http://example.com",
		WithData(map[string]string{"name": "test", "value": "hello"}),
		WithFiles(
			File{FieldName: "file", FileName: "test.txt", Data: []byte("file content")},
			File{FieldName: "audio", FileName: `we"ird.wav`, ContentType: "audio/wav", Data: []byte("RIFF")},
		),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, headers, err := req.encodePayload()
	if err != nil {
		t.Fatalf("encodePayload() error: %v", err)
	}
	mediaType, params, err := mime.ParseMediaType(headers.Value(HeaderContentType))
	if err != nil {
		t.Fatalf("ParseMediaType error: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Errorf("media type = %q, want multipart/form-data", mediaType)
	}

	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := map[string]string{}
	files := map[string]*multipart.Part{}
	contents := map[string]string{}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart error: %v", err)
		}
		data, _ := io.ReadAll(part)
		if part.FileName() == "" {
			fields[part.FormName()] = string(data)
			continue
		}
		files[part.FormName()] = part
		contents[part.FormName()] = string(data)
	}

	if fields["name"] != "test" || fields["value"] != "hello" {
		t.Errorf("unexpected fields %v", fields)
	}
	if contents["file"] != "file content" {
		t.Errorf("unexpected file content %q", contents["file"])
	}
	if ct := files["file"].Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("expected default file content type, got %q", ct)
	}
	if ct := files["audio"].Header.Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("expected audio/wav, got %q", ct)
	}
	if fn := files["audio"].FileName(); fn != `we"ird.wav` {
		t.Errorf("expected escaped file name to round trip, got %q", fn)
	}
}

func TestEncodePayload_FilesWithTextData(t *testing.T) {
	req, err := NewRequest("POST", "http://example.com",
		WithData("plain"),
		WithFiles(File{FieldName: "f", FileName: "f.txt"}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := req.encodePayload(); err == nil {
		t.Error("expected error for text data combined with files")
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("unexpected escape result %q", got)
	}
}
