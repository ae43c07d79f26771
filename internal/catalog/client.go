// File: internal/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Upstream fetches reference data from the source of truth.
type Upstream interface {
	FetchMakes(ctx context.Context) ([]Make, error)
	FetchModels(ctx context.Context, makeName string) ([]Model, error)
}

// VPICClient reads makes and models from the NHTSA vPIC API.
type VPICClient struct {
	baseURL string
	http    *http.Client
}

// NewVPICClient creates a client rooted at baseURL, e.g. https://vpic.nhtsa.dot.gov/api/vehicles.
func NewVPICClient(baseURL string, timeout time.Duration) *VPICClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VPICClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *VPICClient) FetchMakes(ctx context.Context) ([]Make, error) {
	var body vpicResponse[vpicMake]
	if err := c.get(ctx, "/GetMakesForVehicleType/car", &body); err != nil {
		return nil, err
	}
	makes := make([]Make, 0, len(body.Results))
	seen := make(map[string]struct{}, len(body.Results))
	for _, r := range body.Results {
		name := strings.TrimSpace(r.MakeName)
		key := slug.Make(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		makes = append(makes, Make{ID: r.MakeID, Name: name, Slug: key})
	}
	sort.Slice(makes, func(i, j int) bool { return makes[i].Slug < makes[j].Slug })
	return makes, nil
}

func (c *VPICClient) FetchModels(ctx context.Context, makeName string) ([]Model, error) {
	var body vpicResponse[vpicModel]
	path := "/GetModelsForMake/" + url.PathEscape(strings.ToLower(strings.TrimSpace(makeName)))
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	models := make([]Model, 0, len(body.Results))
	for _, r := range body.Results {
		if name := strings.TrimSpace(r.ModelName); name != "" {
			models = append(models, Model{ID: r.ModelID, Name: name})
		}
	}
	sort.Slice(models, func(i, j int) bool { return strings.ToLower(models[i].Name) < strings.ToLower(models[j].Name) })
	return models, nil
}

func (c *VPICClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?format=json", nil)
	if err != nil {
		return fmt.Errorf("build vpic request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("vpic request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("vpic %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode vpic %s: %w", path, err)
	}
	return nil
}
