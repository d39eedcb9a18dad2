package router

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"coursemarket/internal/models"
	"coursemarket/internal/qerrors"
)

// Multipart bodies up to this size are kept in memory, the rest spills to temporary files.
const multipartMemory = 10 << 20

// parseBody reads a JSON or multipart/form-data body into a map of fields. For multipart bodies
// the "thumbnail" file, if any, is returned as an Upload. The returned cleanup func releases
// the upload and must be called once the request is handled.
func parseBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]interface{}, *models.Upload, func(), error) {
	fields := map[string]interface{}{}
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, noop, qerrors.NewBadRequest("invalid form body: %v", err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}

		var file multipart.File
		cleanup := func() {
			if file != nil {
				_ = file.Close()
			}
			_ = r.MultipartForm.RemoveAll()
		}

		f, header, err := r.FormFile("thumbnail")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return fields, nil, cleanup, nil
			}
			return nil, nil, cleanup, qerrors.NewBadRequest("invalid thumbnail: %v", err)
		}
		file = f
		return fields, &models.Upload{Filename: header.Filename, Content: f}, cleanup, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, noop, qerrors.NewBadRequest("invalid JSON body: %v", err)
	}
	return fields, nil, noop, nil
}

// stringField returns fields[key] as a string, or "" if it is absent or not a string.
func stringField(fields map[string]interface{}, key string) string {
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}
