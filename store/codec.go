package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"jiahe-site/models"
)

// VersionHeader carries the store version on reads and the base version on writes.
const VersionHeader = "X-Content-Version"

var ErrMalformedDocument = errors.New("store document is not site content")

// DecodeSiteData parses a store read. A body carrying an "error" field or
// lacking "news" is rejected; nothing else is checked.
func DecodeSiteData(raw []byte) (*models.SiteData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if msg, ok := fields["error"]; ok {
		return nil, fmt.Errorf("%w: store reported error %s", ErrMalformedDocument, string(msg))
	}
	if _, ok := fields["news"]; !ok {
		return nil, fmt.Errorf("%w: missing news", ErrMalformedDocument)
	}

	var data models.SiteData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &data, nil
}

func parseVersion(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}
