package content

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// splitFrontmatter separates a `---` delimited YAML header from the body.
// Documents without a header return nil frontmatter and the full content.
func splitFrontmatter(data []byte) ([]byte, []byte, error) {
	nl := detectNewline(data)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(data, open) {
		return nil, data, nil
	}

	start := len(open)
	if bytes.HasPrefix(data[start:], open) {
		return []byte{}, data[start+len(open):], nil
	}

	closeSeq := []byte(nl + "---")
	idx := bytes.Index(data[start:], closeSeq)
	if idx < 0 {
		return nil, nil, ErrMissingClosingDelimiter
	}

	header := data[start : start+idx+len(nl)]
	body := data[start+idx+len(closeSeq):]
	body = bytes.TrimPrefix(body, []byte(nl))

	return header, body, nil
}

func parseFrontmatter(header []byte) (map[string]any, error) {
	if len(header) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
