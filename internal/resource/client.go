package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/models"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

// File is one attachment to be uploaded with a record.
type File struct {
	Filename string
	Content  []byte
}

// Client provides the typed access functions for one registry. Every screen
// talks to its registry through one of these; errors from the gateway
// propagate unchanged.
type Client struct {
	desc Descriptor
	gw   *gateway.Client
}

// NewClient binds a descriptor to the shared gateway client.
func NewClient(desc Descriptor, gw *gateway.Client) *Client {
	return &Client{desc: desc, gw: gw}
}

// Descriptor returns the registry descriptor behind this client.
func (c *Client) Descriptor() Descriptor {
	return c.desc
}

// List fetches one page of records. Unpaginated registries return their whole
// array normalised into a single page so callers see one shape.
func (c *Client) List(ctx context.Context, page, size int, filters url.Values) (models.Page, error) {
	query := url.Values{}
	if c.desc.Paginated {
		query.Set("page", strconv.Itoa(page))
		query.Set("size", strconv.Itoa(size))
	}
	if c.desc.Filterable {
		for key, values := range filters {
			for _, value := range values {
				if value != "" {
					query.Add(key, value)
				}
			}
		}
	}
	path := c.desc.Path
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	if !c.desc.Paginated {
		var items []models.Record
		if err := c.gw.Do(ctx, http.MethodGet, path, nil, &items); err != nil {
			return models.Page{}, err
		}
		return models.Page{Items: items, TotalPages: 1, CurrentPage: 0}, nil
	}

	var result models.Page
	if err := c.gw.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return models.Page{}, err
	}
	if result.Items == nil {
		result.Items = []models.Record{}
	}
	return result, nil
}

// Get fetches one record by id.
func (c *Client) Get(ctx context.Context, id string) (models.Record, error) {
	var record models.Record
	if err := c.gw.Do(ctx, http.MethodGet, c.itemPath(id), nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create posts a JSON payload.
func (c *Client) Create(ctx context.Context, payload models.Record) (models.Record, error) {
	var record models.Record
	if err := c.gw.Do(ctx, http.MethodPost, c.desc.Path, payload, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update puts a JSON payload for an existing record.
func (c *Client) Update(ctx context.Context, id string, payload models.Record) (models.Record, error) {
	var record models.Record
	if err := c.gw.Do(ctx, http.MethodPut, c.itemPath(id), payload, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.gw.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
}

// CreateWithFile posts a multipart payload carrying the attachment.
func (c *Client) CreateWithFile(ctx context.Context, payload models.Record, file File) (models.Record, error) {
	body, contentType, err := c.encodeMultipart(payload, file)
	if err != nil {
		return nil, err
	}
	var record models.Record
	if err := c.gw.DoMultipart(ctx, http.MethodPost, c.desc.Path, body, contentType, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateWithFile puts a multipart payload with a replacement attachment.
// Registries that ignore replacement files upstream reject the call here so
// the caller can warn instead of silently dropping the file.
func (c *Client) UpdateWithFile(ctx context.Context, id string, payload models.Record, file File) (models.Record, error) {
	if !c.desc.UpdateWithFile {
		return nil, appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			fmt.Sprintf("%s does not accept a replacement file on update", c.desc.Name))
	}
	body, contentType, err := c.encodeMultipart(payload, file)
	if err != nil {
		return nil, err
	}
	var record models.Record
	if err := c.gw.DoMultipart(ctx, http.MethodPut, c.itemPath(id), body, contentType, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (c *Client) itemPath(id string) string {
	return c.desc.Path + "/" + url.PathEscape(id)
}

// encodeMultipart renders the payload according to the registry's multipart
// shape. The binary always travels under the "file" field.
func (c *Client) encodeMultipart(payload models.Record, file File) (io.Reader, string, error) {
	if c.desc.Shape == MultipartNone {
		return nil, "", appErrors.New(appErrors.ErrValidation.Code, http.StatusBadRequest,
			fmt.Sprintf("%s does not accept file attachments", c.desc.Name))
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile("file", file.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("encode attachment: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("encode attachment: %w", err)
	}

	switch c.desc.Shape {
	case MultipartFlattened:
		for key, value := range payload {
			if value == nil {
				continue
			}
			if err := writer.WriteField(key, fieldString(value)); err != nil {
				return nil, "", fmt.Errorf("encode field %s: %w", key, err)
			}
		}
	case MultipartJSONField:
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("encode metadata: %w", err)
		}
		field := c.desc.JSONField
		if field == "" {
			field = c.desc.Name
		}
		if err := writer.WriteField(field, string(blob)); err != nil {
			return nil, "", fmt.Errorf("encode metadata: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalise multipart: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func fieldString(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", typed)
	}
}
