package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resource types.
const (
	ResourceImage        = "image"
	ResourceImageLink    = "image-link"
	ResourceAudio        = "audio"
	ResourceAudioLink    = "audio-link"
	ResourceVideo        = "video"
	ResourceVideoLink    = "video-link"
	ResourceArticle      = "article"
	ResourceArticleLink  = "article-link"
	ResourceDocument     = "document"
	ResourceDocumentLink = "document-link"
	ResourceApp          = "app"
	ResourceAppLink      = "app-link"
	ResourceWebsiteLink  = "website-link"
)

// Resource is an attached media reference. Type selects the variant; the
// remaining fields are the variant's data.
type Resource struct {
	Type string `json:"-"`

	Format    string `json:"format,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Src       string `json:"src,omitempty"`
	URL       string `json:"url,omitempty"`
	Body      string `json:"body,omitempty"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Duration  string `json:"duration,omitempty"`
	License   string `json:"license,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

// IsLink reports whether the resource is one of the "-link" variants, whose
// location is a URL rather than a source.
func (r *Resource) IsLink() bool {
	return strings.HasSuffix(r.Type, "-link") || r.Type == ResourceApp
}

// Location returns the source, URL or body of the resource, whichever its
// variant uses.
func (r *Resource) Location() string {
	switch {
	case r.Type == ResourceArticle:
		return r.Body
	case r.IsLink():
		return r.URL
	default:
		return r.Src
	}
}

// SetLocation stores value in the field the resource variant uses.
func (r *Resource) SetLocation(value string) {
	switch {
	case r.Type == ResourceArticle:
		r.Body = value
	case r.IsLink():
		r.URL = value
	default:
		r.Src = value
	}
}

// dataKey is the JSON key holding the variant data: "image-link" becomes
// "imageLink".
func dataKey(typ string) string {
	parts := strings.Split(typ, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

type resourceData Resource

func (r Resource) MarshalJSON() ([]byte, error) {
	if r.Type == "" {
		return nil, fmt.Errorf("resource has no type")
	}
	typ, err := json.Marshal(r.Type)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(dataKey(r.Type))
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(resourceData(r))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(typ)+len(key)+len(data)+12)
	out = append(out, `{"type":`...)
	out = append(out, typ...)
	out = append(out, ',')
	out = append(out, key...)
	out = append(out, ':')
	out = append(out, data...)
	out = append(out, '}')
	return out, nil
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	rawType, ok := envelope["type"]
	if !ok {
		return fmt.Errorf("resource has no type")
	}
	var typ string
	if err := json.Unmarshal(rawType, &typ); err != nil {
		return fmt.Errorf("resource type: %w", err)
	}

	var rd resourceData
	if payload, ok := envelope[dataKey(typ)]; ok {
		if err := json.Unmarshal(payload, &rd); err != nil {
			return fmt.Errorf("resource %q: %w", typ, err)
		}
	}
	*r = Resource(rd)
	r.Type = typ
	return nil
}
