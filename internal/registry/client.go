// Package registry looks up companies from the PRH open data API (YTJ).
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://avoindata.prh.fi/opendata-ytj-api/v3"
	userAgent = "velmala/funding-advisor"
)

// Lookup failure modes. Callers map these to distinct user-facing outcomes,
// so they must stay distinguishable with errors.Is.
var (
	// ErrMalformedID means the business id does not look like a Finnish
	// Y-tunnus and the API was never called.
	ErrMalformedID = errors.New("malformed business id")
	// ErrRateLimited means the registry rejected the request with HTTP 429.
	ErrRateLimited = errors.New("rate limited by registry")
	// ErrUnavailable covers network failures and other upstream errors.
	ErrUnavailable = errors.New("registry unavailable")
)

// businessIDPattern matches a Y-tunnus: seven digits, a dash and a check digit.
var businessIDPattern = regexp.MustCompile(`^\d{7}-\d$`)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger) *Client {
	return &Client{
		ctx:    ctx,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}
}

// Company is the registry's view of a company: the registered name, the
// primary industry classification and the registered country.
type Company struct {
	BusinessID string
	Name       string
	Industry   string
	Country    string
}

type lookupResponse struct {
	TotalResults int          `json:"totalResults"`
	Companies    []rawCompany `json:"companies"`
}

type rawCompany struct {
	Names []struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	} `json:"names"`
	MainBusinessLine struct {
		Type         string `json:"type"`
		Descriptions []struct {
			Description string `json:"description"`
		} `json:"descriptions"`
	} `json:"mainBusinessLine"`
	Addresses []struct {
		Country string `json:"country"`
	} `json:"addresses"`
}

// Lookup fetches the first company matching the business id. A missing match
// is not an error: the result is (nil, nil).
func (c *Client) Lookup(businessID string) (*Company, error) {
	if !businessIDPattern.MatchString(businessID) {
		return nil, fmt.Errorf("%w: %q (expected format 1234567-8)", ErrMalformedID, businessID)
	}

	q := url.Values{}
	q.Set("businessId", businessID)

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, c.APIURL+"/companies", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("registry lookup", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: try again later", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %s: %s", ErrUnavailable, resp.Status, body)
	}

	var response lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}

	if response.TotalResults == 0 || len(response.Companies) == 0 {
		return nil, nil
	}

	return buildCompany(businessID, response.Companies[0]), nil
}

func buildCompany(businessID string, raw rawCompany) *Company {
	// The current registered name carries version 1; older names keep
	// higher versions.
	name := ""
	for _, n := range raw.Names {
		if n.Version == 1 {
			name = n.Name
			break
		}
	}
	if name == "" && len(raw.Names) > 0 {
		name = raw.Names[0].Name
	}
	if name == "" {
		name = businessID
	}

	industry := ""
	if len(raw.MainBusinessLine.Descriptions) > 0 {
		industry = raw.MainBusinessLine.Descriptions[0].Description
	}
	if industry == "" {
		industry = raw.MainBusinessLine.Type
	}
	if industry == "" {
		industry = "Unknown"
	}

	country := "Finland"
	for _, addr := range raw.Addresses {
		if addr.Country == "" {
			continue
		}
		if addr.Country == "FI" {
			country = "Finland"
		} else {
			country = addr.Country
		}
		break
	}

	return &Company{
		BusinessID: businessID,
		Name:       name,
		Industry:   industry,
		Country:    country,
	}
}
