package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/manalab/backend/pkg/errorx"
	"github.com/mitchellh/mapstructure"
)

// bindQuery fills the request from the query string. Fields are matched by their json tags
// so GET and POST requests share the same models.
func bindQuery[Request any](r *http.Request) (*Request, error) {
	values := map[string]any{}
	for key, value := range r.URL.Query() {
		if len(value) == 1 {
			values[key] = value[0]
		} else {
			values[key] = value
		}
	}

	req := new(Request)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(timeLayout),
		Result:           req,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(values); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid query: %v", err)
	}

	return req, nil
}

// bindJSON decodes the body. An empty body leaves the request zero.
func bindJSON[Request any](r *http.Request) (*Request, error) {
	req := new(Request)
	if r.Body == nil {
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, errorx.New(errorx.BadRequest, "Invalid body: %v", err)
	}

	return req, nil
}
