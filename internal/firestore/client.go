// Package firestore stores and reads Firestore documents over the REST API.
//
// Documents are exchanged as plain maps. Values are converted to and from
// the typed Firestore representation: strings, booleans, integers, doubles,
// nulls, arrays and nested maps. Timestamps read back as RFC 3339 strings.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

// DefaultDatabase is the database id used when none is configured.
const DefaultDatabase = "(default)"

// Document is a stored document.
type Document struct {
	// Path is the document path relative to the database, e.g. "executions/job-1".
	Path       string                 `json:"path"`
	Fields     map[string]interface{} `json:"fields"`
	CreateTime string                 `json:"createTime,omitempty"`
	UpdateTime string                 `json:"updateTime,omitempty"`
}

// Client is a Firestore client bound to one database of a project.
//
// Writes go through the generated API. Reads decode the response body
// directly: the generated Value type cannot tell a stored false, 0 or ""
// apart from an unset field.
type Client struct {
	service *firestore.Service
	http    *http.Client
	base    string
	root    string
}

// wireDocument is a document as returned by the REST API.
type wireDocument struct {
	Name       string                            `json:"name"`
	Fields     map[string]map[string]interface{} `json:"fields"`
	CreateTime string                            `json:"createTime"`
	UpdateTime string                            `json:"updateTime"`
}

type wireList struct {
	Documents     []wireDocument `json:"documents"`
	NextPageToken string         `json:"nextPageToken"`
}

// NewClient creates a Firestore client for the default database of projectID.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	httpClient, _, err := htransport.NewClient(ctx, append([]option.ClientOption{option.WithScopes(firestore.DatastoreScope)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("unable to create firestore transport: %w", err)
	}
	srv, err := firestore.NewService(ctx, append(opts, option.WithHTTPClient(httpClient))...)
	if err != nil {
		return nil, fmt.Errorf("unable to create firestore service: %w", err)
	}
	base := srv.BasePath
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{
		service: srv,
		http:    httpClient,
		base:    base,
		root:    fmt.Sprintf("projects/%s/databases/%s/documents", projectID, DefaultDatabase),
	}, nil
}

func (c *Client) name(collection, id string) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("collection is required")
	}
	if id == "" {
		return "", fmt.Errorf("document id is required")
	}
	return c.root + "/" + collection + "/" + id, nil
}

func (c *Client) get(ctx context.Context, resource string, query url.Values, out interface{}) error {
	u := c.base + "v1/" + resource
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(res)
	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Set creates or replaces the document collection/id with fields.
func (c *Client) Set(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error) {
	name, err := c.name(collection, id)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	doc, err := c.service.Projects.Databases.Documents.Patch(name, &firestore.Document{Fields: encoded}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}
	// The response repeats the written fields; decode what was sent so zero
	// values survive.
	sent, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document fields: %w", err)
	}
	wire := wireDocument{Name: doc.Name, CreateTime: doc.CreateTime, UpdateTime: doc.UpdateTime}
	if err := json.Unmarshal(sent, &wire.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode document fields: %w", err)
	}
	return c.convert(wire), nil
}

// Get returns the document collection/id.
func (c *Client) Get(ctx context.Context, collection, id string) (*Document, error) {
	name, err := c.name(collection, id)
	if err != nil {
		return nil, err
	}
	var doc wireDocument
	if err := c.get(ctx, name, nil, &doc); err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return c.convert(doc), nil
}

// List returns up to limit documents of a collection. A limit of zero or
// less returns every document.
func (c *Client) List(ctx context.Context, collection string, limit int) ([]*Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}

	var docs []*Document
	query := url.Values{}
	if limit > 0 {
		query.Set("pageSize", strconv.Itoa(limit))
	}
	for {
		var page wireList
		if err := c.get(ctx, c.root+"/"+collection, query, &page); err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		for _, d := range page.Documents {
			docs = append(docs, c.convert(d))
			if limit > 0 && len(docs) >= limit {
				return docs, nil
			}
		}
		if page.NextPageToken == "" {
			return docs, nil
		}
		query.Set("pageToken", page.NextPageToken)
	}
}

// Delete removes the document collection/id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	name, err := c.name(collection, id)
	if err != nil {
		return err
	}
	if _, err := c.service.Projects.Databases.Documents.Delete(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) convert(doc wireDocument) *Document {
	fields := make(map[string]interface{}, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = decodeValue(v)
	}
	return &Document{
		Path:       strings.TrimPrefix(doc.Name, c.root+"/"),
		Fields:     fields,
		CreateTime: doc.CreateTime,
		UpdateTime: doc.UpdateTime,
	}
}

func encodeFields(fields map[string]interface{}) (map[string]firestore.Value, error) {
	out := make(map[string]firestore.Value, len(fields))
	for k, v := range fields {
		value, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = *value
	}
	return out, nil
}

// encodeValue converts a plain value into a Firestore value. Scalars are
// force-sent so false, 0 and "" keep their type on the wire.
func encodeValue(v interface{}) (*firestore.Value, error) {
	switch x := v.(type) {
	case nil:
		return &firestore.Value{NullValue: "NULL_VALUE"}, nil
	case string:
		return &firestore.Value{StringValue: x, ForceSendFields: []string{"StringValue"}}, nil
	case bool:
		return &firestore.Value{BooleanValue: x, ForceSendFields: []string{"BooleanValue"}}, nil
	case int:
		return integerValue(int64(x)), nil
	case int64:
		return integerValue(x), nil
	case float64:
		// JSON numbers arrive as float64; whole numbers are stored as integers.
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return integerValue(int64(x)), nil
		}
		return &firestore.Value{DoubleValue: x, ForceSendFields: []string{"DoubleValue"}}, nil
	case []interface{}:
		values := make([]*firestore.Value, len(x))
		for i, item := range x {
			enc, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			values[i] = enc
		}
		return &firestore.Value{ArrayValue: &firestore.ArrayValue{Values: values}}, nil
	case map[string]interface{}:
		fields, err := encodeFields(x)
		if err != nil {
			return nil, err
		}
		return &firestore.Value{MapValue: &firestore.MapValue{Fields: fields}}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func integerValue(n int64) *firestore.Value {
	return &firestore.Value{IntegerValue: n, ForceSendFields: []string{"IntegerValue"}}
}

func decodeValue(v map[string]interface{}) interface{} {
	for kind, x := range v {
		switch kind {
		case "stringValue", "timestampValue", "referenceValue", "bytesValue":
			return x
		case "booleanValue", "doubleValue", "geoPointValue":
			return x
		case "nullValue":
			return nil
		case "integerValue":
			if s, ok := x.(string); ok {
				if n, err := strconv.ParseInt(s, 10, 64); err == nil {
					return n
				}
			}
			return x
		case "arrayValue":
			arr, _ := x.(map[string]interface{})
			items, _ := arr["values"].([]interface{})
			out := make([]interface{}, 0, len(items))
			for _, item := range items {
				m, _ := item.(map[string]interface{})
				out = append(out, decodeValue(m))
			}
			return out
		case "mapValue":
			m, _ := x.(map[string]interface{})
			fields, _ := m["fields"].(map[string]interface{})
			out := make(map[string]interface{}, len(fields))
			for k, item := range fields {
				im, _ := item.(map[string]interface{})
				out[k] = decodeValue(im)
			}
			return out
		}
	}
	return nil
}
