package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// uploadField is the multipart form field carrying the CSV file.
const uploadField = "file"

var (
	errUnsupportedType = errors.New("unsupported content type")
	errNoFile          = errors.New("no file uploaded")
)

// allowedUploadTypes are the client-declared types accepted for a CSV upload.
var allowedUploadTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// allowedDetectedTypes are the sniffed types consistent with CSV text.
var allowedDetectedTypes = map[string]bool{
	"text/plain":               true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/octet-stream": true,
}

// upload is a validated CSV payload.
type upload struct {
	Name string
	Data []byte
}

// readUpload extracts the CSV from either a multipart form (field "file") or
// a raw body. maxBytes bounds the decoded file.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*upload, error) {
	if r.Body == nil {
		return nil, errNoFile
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<16))

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return nil, fmt.Errorf("%w: %v", errUnsupportedType, err)
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, badRequest(err)
		}
		file, header, err := r.FormFile(uploadField)
		if err != nil {
			return nil, errNoFile
		}
		defer file.Close()

		if err := validateClientType(header.Header.Get("Content-Type")); err != nil {
			return nil, err
		}
		data, err := readLimited(file, maxBytes)
		if err != nil {
			return nil, err
		}
		if err := validateContent(data); err != nil {
			return nil, err
		}
		return &upload{Name: header.Filename, Data: data}, nil
	}

	if err := validateClientType(mediaType); err != nil {
		return nil, err
	}
	data, err := readLimited(r.Body, maxBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoFile
	}
	if err := validateContent(data); err != nil {
		return nil, err
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.csv"
	}
	return &upload{Name: name, Data: data}, nil
}

// validateClientType checks the declared type. An absent type is treated as
// application/octet-stream.
func validateClientType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" {
		return nil
	}
	if !allowedUploadTypes[ct] {
		return fmt.Errorf("%w: %s", errUnsupportedType, ct)
	}
	return nil
}

// validateContent sniffs the first 512 bytes and rejects binary payloads.
func validateContent(data []byte) error {
	detected := http.DetectContentType(data)
	detected = strings.ToLower(strings.Split(detected, ";")[0])
	if !allowedDetectedTypes[detected] {
		return fmt.Errorf("%w: content looks like %s", errUnsupportedType, detected)
	}
	return nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, &http.MaxBytesError{Limit: maxBytes}
	}
	return data, nil
}
