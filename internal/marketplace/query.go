package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sharext-labs/sharext/internal/extension"
)

const (
	// filterTypeExtensionName matches on the publisher-qualified id.
	filterTypeExtensionName = 7

	// queryFlags asks for versions, files, statistics and the latest
	// version only.
	queryFlags = 2151

	smallIconAsset = "Microsoft.VisualStudio.Services.Icons.Small"
	installStat    = "install"
)

// ErrNotFound is returned when the marketplace has no extension with the id.
var ErrNotFound = errors.New("extension not found in marketplace")

type queryRequest struct {
	Filters []queryFilter `json:"filters"`
	Flags   int           `json:"flags"`
}

type queryFilter struct {
	Criteria   []queryCriterion `json:"criteria"`
	PageSize   int              `json:"pageSize"`
	PageNumber int              `json:"pageNumber"`
	SortBy     int              `json:"sortBy"`
	SortOrder  int              `json:"sortOrder"`
}

type queryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

type queryResponse struct {
	Results []struct {
		Extensions []galleryExtension `json:"extensions"`
	} `json:"results"`
}

type galleryExtension struct {
	ExtensionName    string `json:"extensionName"`
	DisplayName      string `json:"displayName"`
	ShortDescription string `json:"shortDescription"`
	Publisher        struct {
		PublisherName string `json:"publisherName"`
		DisplayName   string `json:"displayName"`
	} `json:"publisher"`
	Versions []struct {
		Version string `json:"version"`
		Files   []struct {
			AssetType string `json:"assetType"`
			Source    string `json:"source"`
		} `json:"files"`
	} `json:"versions"`
	Statistics []struct {
		StatisticName string  `json:"statisticName"`
		Value         float64 `json:"value"`
	} `json:"statistics"`
}

// Lookup fetches marketplace metadata for the extension id. It makes exactly
// one request.
func (c *Client) Lookup(ctx context.Context, id string) (extension.Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(queryRequest{
		Filters: []queryFilter{{
			Criteria:   []queryCriterion{{FilterType: filterTypeExtensionName, Value: id}},
			PageSize:   100,
			PageNumber: 1,
		}},
		Flags: queryFlags,
	})
	if err != nil {
		return extension.Record{}, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return extension.Record{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json;api-version="+c.apiVersion+";excludeUrls=true")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return extension.Record{}, fmt.Errorf("querying marketplace for %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return extension.Record{}, fmt.Errorf("marketplace returned status %d for %s", resp.StatusCode, id)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return extension.Record{}, fmt.Errorf("reading response body: %w", err)
	}

	var qr queryResponse
	if err := json.Unmarshal(data, &qr); err != nil {
		return extension.Record{}, fmt.Errorf("parsing marketplace response: %w", err)
	}
	if len(qr.Results) == 0 || len(qr.Results[0].Extensions) == 0 {
		return extension.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return toRecord(id, qr.Results[0].Extensions[0]), nil
}

func toRecord(id string, ext galleryExtension) extension.Record {
	name := ext.DisplayName
	if name == "" {
		name = ext.ExtensionName
	}
	author := ext.Publisher.DisplayName
	if author == "" {
		author = ext.Publisher.PublisherName
	}

	r := extension.Record{
		ID:          id,
		Name:        name,
		Author:      author,
		Description: ext.ShortDescription,
	}

	if len(ext.Versions) > 0 {
		for _, f := range ext.Versions[0].Files {
			if f.AssetType == smallIconAsset {
				r.IconSource = f.Source
				break
			}
		}
	}
	for _, s := range ext.Statistics {
		if s.StatisticName == installStat {
			r.Downloads = int64(s.Value)
			break
		}
	}
	return r
}
