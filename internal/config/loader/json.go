package loader

import (
	"bytes"
	"encoding/json"
	"errors"
)

func decodeJSON(source string, data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			perr.Line = 1 + bytes.Count(data[:syntaxErr.Offset], []byte("\n"))
		}
		return nil, perr
	}
	return v, nil
}
