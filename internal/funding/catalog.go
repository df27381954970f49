package funding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

const catalogFetchTimeout = 10 * time.Second

// LoadCatalog reads a JSON array of instruments from a local path or an
// http(s) URL. The catalog is fetched once and treated as immutable afterwards;
// swapping sources means loading a new catalog and replacing the reference.
func LoadCatalog(ctx context.Context, source string) (*Catalog, error) {
	var raw []map[string]any
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = fetchCatalog(ctx, source)
	} else {
		raw, err = readCatalogFile(source)
	}
	if err != nil {
		return nil, err
	}

	items, err := decodeInstruments(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", source, err)
	}

	return &Catalog{Source: source, Items: items}, nil
}

func readCatalogFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	return raw, nil
}

func fetchCatalog(ctx context.Context, url string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, catalogFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching catalog from %s: bad status %s", url, resp.Status)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing catalog response: %w", err)
	}

	return raw, nil
}

func decodeInstruments(raw []map[string]any) ([]*Instrument, error) {
	var items []*Instrument

	cfg := &mapstructure.DecoderConfig{
		Result:  &items,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	return items, nil
}
